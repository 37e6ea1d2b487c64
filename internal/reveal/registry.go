package reveal

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/metrics"
)

// Factory creates the sequencer of a new view.
type Factory func(viewID string) *Sequencer

// Registry keeps one Sequencer per view. Every lookup renews the view's TTL, so
// only views left unused for longer than the TTL, or that fall off the end of
// the LRU, are forgotten along with their spin.
type Registry struct {
	mu      sync.Mutex
	views   *lru.LRU[string, *Sequencer]
	spins   *lru.LRU[string, string]
	factory Factory
}

// NewRegistry creates a registry holding at most size views.
func NewRegistry(size int, ttl time.Duration, factory Factory) *Registry {
	if size <= 0 {
		size = 1
	}
	onEvict := func(viewID string, _ *Sequencer) {
		metrics.ActiveViews.Dec()
		logger := config.GetLogger()
		logger.Debug().Str("view_id", viewID).Msg("View evicted")
	}
	return &Registry{
		views:   lru.NewLRU[string, *Sequencer](size, onEvict, ttl),
		spins:   lru.NewLRU[string, string](size*4, nil, ttl),
		factory: factory,
	}
}

// Get returns the sequencer of viewID, creating it on first use.
func (r *Registry) Get(viewID string) *Sequencer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seq, ok := r.views.Get(viewID); ok {
		// expirable.LRU.Get keeps the original deadline; re-adding renews it.
		r.views.Add(viewID, seq)
		return seq
	}
	// An expired entry may linger until the LRU's cleanup; drop it so the
	// eviction callback keeps the view gauge balanced.
	r.views.Remove(viewID)
	seq := r.factory(viewID)
	r.views.Add(viewID, seq)
	metrics.ActiveViews.Inc()
	return seq
}

// Bind records that spinID runs on viewID so later calls can find it by spin.
func (r *Registry) Bind(spinID, viewID string) {
	r.spins.Add(spinID, viewID)
}

// BySpin returns the sequencer spinID was bound to. It reports false when the
// spin is unknown or its view has expired.
func (r *Registry) BySpin(spinID string) (*Sequencer, bool) {
	viewID, ok := r.spins.Get(spinID)
	if !ok {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	seq, ok := r.views.Get(viewID)
	if !ok {
		r.spins.Remove(spinID)
		return nil, false
	}
	r.views.Add(viewID, seq)
	r.spins.Add(spinID, viewID)
	return seq, true
}

// Len is the number of live views.
func (r *Registry) Len() int {
	return r.views.Len()
}

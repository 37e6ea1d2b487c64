package services

import (
	"fmt"
	"math/rand/v2"

	"github.com/Belphemur/ReelRoulette/internal/apperrors"
	"github.com/Belphemur/ReelRoulette/internal/config"
	"github.com/Belphemur/ReelRoulette/internal/links"
	"github.com/Belphemur/ReelRoulette/internal/metrics"
	"github.com/Belphemur/ReelRoulette/internal/models"
)

// Rand is the source of uniform integers used for draws. *rand.Rand satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n)
}

// DefaultSelector implements Selector with a uniform draw
type DefaultSelector struct {
	rng Rand
}

// NewSelector creates a selector backed by the process-wide random source
func NewSelector() Selector {
	return &DefaultSelector{rng: globalRand{}}
}

// NewSelectorWithRand creates a selector backed by rng, for reproducible draws
func NewSelectorWithRand(rng Rand) Selector {
	return &DefaultSelector{rng: rng}
}

// Draw performs one uniform draw over [0, pool.Len()). There is no weighting and
// no exclusion of recent picks; repeats across draws are expected.
func (s *DefaultSelector) Draw(pool models.SelectionPool, deriver LinkDeriver, poster links.Size) (*models.Pick, error) {
	logger := config.GetLogger()

	if pool.Empty() {
		metrics.DrawsTotal.WithLabelValues("empty").Inc()
		return nil, apperrors.ErrEmptyPool
	}

	index := s.rng.IntN(pool.Len())
	if index < 0 || index >= pool.Len() {
		metrics.DrawsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("random source returned %d for a pool of %d", index, pool.Len())
	}
	item := pool.At(index)

	var pick *models.Pick
	if deriver != nil {
		pick = deriver.Pick(item, index, poster)
	} else {
		pick = &models.Pick{Item: item, PoolIndex: index}
	}

	metrics.DrawsTotal.WithLabelValues("success").Inc()
	logger.Debug().Int("pool_index", index).Int("pool_size", pool.Len()).Str("item_id", item.ID).Str("title", item.Title).Msg("Drew item")
	return pick, nil
}

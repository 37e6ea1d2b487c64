package cache

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Options configures a cache instance.
type Options struct {
	// Size is the maximum number of documents kept.
	Size int

	// TTL bounds how long a document is served after it was fetched.
	TTL time.Duration

	// Clock stamps FetchedAt. Defaults to the real clock.
	Clock clockwork.Clock

	// Redis is only read by the redis provider.
	Redis RedisOptions

	// Instrument wraps the cache with Prometheus lookup, eviction and entry metrics.
	Instrument bool
}

// RedisOptions locates the Redis/Valkey server of the redis provider.
type RedisOptions struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string // defaults to "rrcache:"
}

// EvictFunc is told about documents leaving the cache. Providers report what
// they can observe: the memory provider reports capacity, expiry and Forget
// removals, the redis provider only capacity removals.
type EvictFunc func(key Key)

// Provider constructs a Cache. onEvict may be nil.
type Provider func(opts Options, onEvict EvictFunc) (Cache, error)

var (
	mu        sync.RWMutex
	providers = make(map[string]Provider)
)

// Register makes a provider available to New under name. It panics on a nil
// provider or a duplicate name.
func Register(name string, p Provider) {
	mu.Lock()
	defer mu.Unlock()

	if p == nil {
		panic("cache: Register provider is nil")
	}
	if _, exists := providers[name]; exists {
		panic(fmt.Sprintf("cache: provider %q already registered", name))
	}
	providers[name] = p
}

// New creates a cache with the named provider.
func New(name string, opts Options) (Cache, error) {
	mu.RLock()
	p, ok := providers[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown provider %q (registered: %v)", name, RegisteredProviders())
	}
	if opts.Size <= 0 {
		return nil, errors.New("cache: size must be positive")
	}
	if opts.TTL <= 0 {
		return nil, errors.New("cache: ttl must be positive")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}

	if !opts.Instrument {
		return p(opts, nil)
	}

	inner, err := p(opts, func(key Key) {
		EvictionsTotal.WithLabelValues(string(key.Kind())).Inc()
	})
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, name, opts.Clock), nil
}

// RegisteredProviders returns the provider names in sorted order.
func RegisteredProviders() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

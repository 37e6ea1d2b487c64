package cache

import (
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/jonboulle/clockwork"
)

func init() {
	Register("memory", newMemoryCache)
}

type memoryCache struct {
	docs  *expirable.LRU[Key, Document]
	clock clockwork.Clock
}

func newMemoryCache(opts Options, onEvict EvictFunc) (Cache, error) {
	var evicted expirable.EvictCallback[Key, Document]
	if onEvict != nil {
		evicted = func(key Key, _ Document) { onEvict(key) }
	}
	return &memoryCache{
		docs:  expirable.NewLRU(opts.Size, evicted, opts.TTL),
		clock: opts.Clock,
	}, nil
}

func (m *memoryCache) Get(key Key) (Document, bool) {
	return m.docs.Get(key)
}

func (m *memoryCache) Put(key Key, body []byte) {
	m.docs.Add(key, Document{Body: body, FetchedAt: m.clock.Now()})
}

func (m *memoryCache) Forget(key Key) {
	m.docs.Remove(key)
}

func (m *memoryCache) Len() int {
	return m.docs.Len()
}

func (m *memoryCache) Close() error {
	return nil
}

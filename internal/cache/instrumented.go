package cache

import "github.com/jonboulle/clockwork"

// instrumentedCache records lookups per document kind and the age of every
// document served. The entry gauge is read lazily at scrape time because Redis
// expires documents on its own.
type instrumentedCache struct {
	inner    Cache
	provider string
	clock    clockwork.Clock
}

func newInstrumentedCache(inner Cache, provider string, clock clockwork.Clock) *instrumentedCache {
	registerEntriesCollector(provider, inner.Len)
	return &instrumentedCache{inner: inner, provider: provider, clock: clock}
}

func (c *instrumentedCache) Get(key Key) (Document, bool) {
	kind := string(key.Kind())
	doc, ok := c.inner.Get(key)
	if !ok {
		LookupsTotal.WithLabelValues(kind, "miss").Inc()
		return doc, false
	}
	LookupsTotal.WithLabelValues(kind, "hit").Inc()
	HitAgeSeconds.WithLabelValues(kind).Observe(doc.Age(c.clock.Now()).Seconds())
	return doc, true
}

func (c *instrumentedCache) Put(key Key, body []byte) {
	c.inner.Put(key, body)
}

func (c *instrumentedCache) Forget(key Key) {
	c.inner.Forget(key)
}

func (c *instrumentedCache) Len() int {
	return c.inner.Len()
}

// Close unregisters the entry gauge before closing the backend.
func (c *instrumentedCache) Close() error {
	unregisterEntriesCollector(c.provider)
	return c.inner.Close()
}

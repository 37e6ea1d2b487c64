package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"github.com/Belphemur/ReelRoulette/internal/config"
)

const defaultKeyPrefix = "rrcache:"

// redisOpTimeout bounds every round trip so a slow Redis degrades to misses.
const redisOpTimeout = 2 * time.Second

func init() {
	Register("redis", newRedisCache)
}

// redisCache stores each document under its own string key with a PX expiry and
// tracks recency in one sorted set:
//
//   - {prefix}doc:{key}  8-byte big-endian fetch time in unix ms, then the body
//   - {prefix}lru        member = key, score = last access in unix µs
//
// Expired documents leave stale members in the sorted set; they are dropped
// lazily by fetch, by evictions and by Len.
type redisCache struct {
	client    *redis.Client
	clock     clockwork.Clock
	ttl       time.Duration
	maxSize   int
	onEvict   EvictFunc
	docPrefix string
	lruKey    string
}

// fetchDoc reads a document and refreshes its recency, or drops the stale
// member when the document already expired.
//
// KEYS[1] = document key, KEYS[2] = LRU set
// ARGV[1] = access time, ARGV[2] = member
var fetchDoc = redis.NewScript(`
local doc = redis.call('GET', KEYS[1])
if doc then
    redis.call('ZADD', KEYS[2], ARGV[1], ARGV[2])
else
    redis.call('ZREM', KEYS[2], ARGV[2])
end
return doc
`)

// storeDoc writes a document, records its recency and trims the set to the
// size limit. Only members whose document still existed count as evicted.
//
// KEYS[1] = document key, KEYS[2] = LRU set
// ARGV[1] = encoded document, ARGV[2] = ttl ms, ARGV[3] = access time,
// ARGV[4] = member, ARGV[5] = size limit, ARGV[6] = document key prefix
var storeDoc = redis.NewScript(`
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
redis.call('ZADD', KEYS[2], ARGV[3], ARGV[4])

local limit = tonumber(ARGV[5])
local evicted = {}
while redis.call('ZCARD', KEYS[2]) > limit do
    local oldest = redis.call('ZPOPMIN', KEYS[2], 1)
    if #oldest == 0 then break end
    if redis.call('DEL', ARGV[6] .. oldest[1]) == 1 then
        table.insert(evicted, oldest[1])
    end
end
return evicted
`)

// countDocs prunes members whose document expired and returns the live count.
//
// KEYS[1] = LRU set, ARGV[1] = document key prefix
var countDocs = redis.NewScript(`
local live = 0
for _, member in ipairs(redis.call('ZRANGE', KEYS[1], 0, -1)) do
    if redis.call('EXISTS', ARGV[1] .. member) == 1 then
        live = live + 1
    else
        redis.call('ZREM', KEYS[1], member)
    end
end
return live
`)

func newRedisCache(opts Options, onEvict EvictFunc) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Redis.Address,
		Password: opts.Redis.Password,
		DB:       opts.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := opts.Redis.KeyPrefix
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &redisCache{
		client:    client,
		clock:     opts.Clock,
		ttl:       opts.TTL,
		maxSize:   opts.Size,
		onEvict:   onEvict,
		docPrefix: prefix + "doc:",
		lruKey:    prefix + "lru",
	}, nil
}

func encodeDocument(doc Document) []byte {
	out := make([]byte, 8, 8+len(doc.Body))
	binary.BigEndian.PutUint64(out, uint64(doc.FetchedAt.UnixMilli()))
	return append(out, doc.Body...)
}

func decodeDocument(raw []byte) (Document, error) {
	if len(raw) < 8 {
		return Document{}, errors.New("document shorter than its header")
	}
	fetched := time.UnixMilli(int64(binary.BigEndian.Uint64(raw[:8])))
	return Document{Body: raw[8:], FetchedAt: fetched}, nil
}

func (r *redisCache) logError(msg string, key Key, err error) {
	logger := config.GetLogger()
	logger.Error().Err(err).
		Str("component", "payload_cache").
		Str("kind", string(key.Kind())).
		Msg(msg)
}

func (r *redisCache) Get(key Key) (Document, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	member := key.String()
	now := strconv.FormatInt(r.clock.Now().UnixMicro(), 10)
	raw, err := fetchDoc.Run(ctx, r.client, []string{r.docPrefix + member, r.lruKey}, now, member).Text()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logError("redis cache Get failed", key, err)
		}
		return Document{}, false
	}

	doc, err := decodeDocument([]byte(raw))
	if err != nil {
		r.logError("redis cache holds an unreadable document", key, err)
		r.Forget(key)
		return Document{}, false
	}
	return doc, true
}

func (r *redisCache) Put(key Key, body []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	now := r.clock.Now()
	member := key.String()
	evicted, err := storeDoc.Run(ctx, r.client, []string{r.docPrefix + member, r.lruKey},
		encodeDocument(Document{Body: body, FetchedAt: now}),
		r.ttl.Milliseconds(),
		now.UnixMicro(),
		member,
		r.maxSize,
		r.docPrefix,
	).StringSlice()
	if err != nil {
		r.logError("redis cache Put failed", key, err)
		return
	}

	if r.onEvict == nil {
		return
	}
	for _, m := range evicted {
		if k, ok := parseKey(m); ok {
			r.onEvict(k)
		}
	}
}

func (r *redisCache) Forget(key Key) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	member := key.String()
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.docPrefix+member)
	pipe.ZRem(ctx, r.lruKey, member)
	if _, err := pipe.Exec(ctx); err != nil {
		r.logError("redis cache Forget failed", key, err)
	}
}

func (r *redisCache) Len() int {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	n, err := countDocs.Run(ctx, r.client, []string{r.lruKey}, r.docPrefix).Int()
	if err != nil {
		logger := config.GetLogger()
		logger.Error().Err(err).Str("component", "payload_cache").Msg("redis cache Len failed")
		return 0
	}
	return n
}

func (r *redisCache) Close() error {
	return r.client.Close()
}

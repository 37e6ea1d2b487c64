package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Belphemur/ReelRoulette/internal/config"
)

const defaultRedisKeyPrefix = "rrsettings:"

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string // Defaults to "rrsettings:"
}

// redisStore keeps one JSON document per profile, without expiry.
type redisStore struct {
	catalog SectionCatalog
	client  *redis.Client
	prefix  string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(catalog SectionCatalog, opts RedisOptions) (Store, error) {
	if opts.Address == "" {
		return nil, errors.New("redis settings store requires an address")
	}
	prefix := opts.KeyPrefix
	if prefix == "" {
		prefix = defaultRedisKeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Address, err)
	}

	return &redisStore{catalog: catalog, client: client, prefix: prefix}, nil
}

func (r *redisStore) key(profile string) string {
	return r.prefix + profile
}

func (r *redisStore) Load(ctx context.Context, profile string) (Settings, error) {
	raw, err := r.client.Get(ctx, r.key(profile)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Defaults(r.catalog), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("load settings %s: %w", profile, err)
	}

	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		logger := config.GetLogger()
		logger.Warn().Err(err).Str("profile", profile).Msg("Stored settings unreadable, using defaults")
		return Defaults(r.catalog), nil
	}
	return s, nil
}

func (r *redisStore) Save(ctx context.Context, profile string, s Settings) (Settings, error) {
	normalized, err := Normalize(s, r.catalog)
	if err != nil {
		return Settings{}, err
	}
	raw, err := json.Marshal(normalized)
	if err != nil {
		return Settings{}, fmt.Errorf("encode settings: %w", err)
	}
	if err := r.client.Set(ctx, r.key(profile), raw, 0).Err(); err != nil {
		return Settings{}, fmt.Errorf("save settings %s: %w", profile, err)
	}
	return normalized, nil
}

func (r *redisStore) Close() error {
	return r.client.Close()
}

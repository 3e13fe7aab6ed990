package cachestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisConfig holds the configuration for the Redis client.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// RecordTTL bounds how long a cached record survives without being
	// rewritten. Zero means records never expire.
	RecordTTL time.Duration
}

// LoadRedisConfigFromEnv loads Redis configuration from environment
// variables. REDIS_ADDR is required; REDIS_PASSWORD and REDIS_DB are
// optional.
func LoadRedisConfigFromEnv() (*RedisConfig, error) {
	cfg := &RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("REDIS_ADDR environment variable not set")
	}
	if rawDB := os.Getenv("REDIS_DB"); rawDB != "" {
		db, err := strconv.Atoi(rawDB)
		if err != nil {
			return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
		}
		cfg.DB = db
	}
	return cfg, nil
}

// RedisStore is a Store backed by Redis, durable across process restarts
// when the server is configured with persistence.
type RedisStore struct {
	redisClient *redis.Client
	logger      zerolog.Logger
	ttl         time.Duration
}

// NewRedisStore creates and connects a new RedisStore.
// It pings the Redis server to ensure connectivity before returning.
func NewRedisStore(ctx context.Context, cfg *RedisConfig, logger zerolog.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info().Str("redis_address", cfg.Addr).Msg("Successfully connected to Redis.")

	return &RedisStore{
		redisClient: rdb,
		logger:      logger.With().Str("component", "RedisStore").Logger(),
		ttl:         cfg.RecordTTL,
	}, nil
}

// Get retrieves the record stored under key. A redis.Nil reply is a normal
// miss and maps to ErrNotFound; any other error is a genuine problem.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		s.logger.Error().Err(err).Str("key", key).Msg("Unexpected Redis error during get.")
		return nil, fmt.Errorf("redis get for %s: %w", key, err)
	}

	s.logger.Debug().Str("key", key).Msg("Redis store hit.")
	return data, nil
}

// Set stores the record under key with the configured TTL.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.redisClient.Set(ctx, key, value, s.ttl).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to set record in Redis.")
		return fmt.Errorf("redis set for %s: %w", key, err)
	}

	s.logger.Debug().Str("key", key).Msg("Successfully stored record in Redis.")
	return nil
}

// Delete removes the record stored under key. Deleting an absent key is not
// an error.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.redisClient.Del(ctx, key).Err(); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("Failed to delete record from Redis.")
		return fmt.Errorf("redis del for %s: %w", key, err)
	}
	return nil
}

// Close closes the Redis client connection.
func (s *RedisStore) Close() error {
	if s.redisClient != nil {
		s.logger.Info().Msg("Closing Redis client connection...")
		return s.redisClient.Close()
	}
	return nil
}

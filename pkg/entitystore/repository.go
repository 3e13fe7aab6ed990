// Package entitystore provides the single read path for entities: prefer
// the live remote when connectivity is available, fall back to the local
// cache when it is not, and keep the cache warm on every successful remote
// fetch.
package entitystore

import (
	"context"
	"fmt"
	"time"

	"github.com/illmade-knight/go-entitystore/pkg/cachestore"
	"github.com/illmade-knight/go-entitystore/pkg/connectivity"
	"github.com/illmade-knight/go-entitystore/pkg/entity"
	"github.com/illmade-knight/go-entitystore/pkg/remote"
	"github.com/rs/zerolog"
)

// Config holds configuration for the Repository.
type Config struct {
	// KeyPrefix namespaces cache keys; records are stored under
	// "<prefix>:<id>". Empty defaults to "entity".
	KeyPrefix string
	// CacheWriteTimeout bounds the write-through after a successful remote
	// fetch. Zero defaults to 5 seconds.
	CacheWriteTimeout time.Duration
}

// Repository hides online/offline branching behind a single GetEntity
// operation. It holds no state of its own across calls; everything durable
// lives in the Store.
type Repository struct {
	probe        connectivity.Probe
	source       remote.Source
	store        cachestore.Store
	codec        entity.JSONCodec
	keyPrefix    string
	writeTimeout time.Duration
	logger       zerolog.Logger
}

// NewRepository creates a Repository from its three collaborators. All three
// are required; there is no ambient registry to fall back on.
func NewRepository(
	cfg *Config,
	probe connectivity.Probe,
	source remote.Source,
	store cachestore.Store,
	logger zerolog.Logger,
) (*Repository, error) {
	if probe == nil {
		return nil, fmt.Errorf("connectivity probe cannot be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("remote source cannot be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("cache store cannot be nil")
	}

	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "entity"
	}
	writeTimeout := cfg.CacheWriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}

	return &Repository{
		probe:        probe,
		source:       source,
		store:        store,
		keyPrefix:    keyPrefix,
		writeTimeout: writeTimeout,
		logger:       logger.With().Str("component", "Repository").Logger(),
	}, nil
}

// GetEntity returns the entity for id, either freshly fetched from the
// remote or read back from the local cache; callers cannot tell which from
// the value alone.
//
// Connected: the remote is fetched and the result written through to the
// cache. A remote failure surfaces as ErrRemoteUnavailable and is never
// masked by a stale cached record. A cache-write failure is logged and does
// not fail the call.
//
// Not connected (including an inconclusive probe): the cache is read; a
// miss or an undecodable record surfaces as ErrCacheMiss. The remote is not
// invoked on this path.
func (r *Repository) GetEntity(ctx context.Context, id entity.ID) (entity.Entity, error) {
	var zero entity.Entity

	if err := id.Validate(); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}

	if r.probe.IsConnected(ctx) {
		return r.fetchAndCache(ctx, id)
	}

	r.logger.Debug().Int64("entity_id", int64(id)).Msg("Offline. Reading entity from cache.")
	return r.readFromCache(ctx, id)
}

func (r *Repository) fetchAndCache(ctx context.Context, id entity.ID) (entity.Entity, error) {
	var zero entity.Entity

	e, err := r.source.Fetch(ctx, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("entity_id", int64(id)).Msg("Remote fetch failed while connected.")
		return zero, fmt.Errorf("%w: %w", ErrRemoteUnavailable, err)
	}

	// An abandoned fetch must not leave a partial cache write behind.
	if ctx.Err() != nil {
		return zero, fmt.Errorf("%w: %w", ErrRemoteUnavailable, ctx.Err())
	}

	r.writeThrough(ctx, id, e)
	return e, nil
}

// writeThrough stores the freshly fetched entity under its cache key.
// Best-effort: failures are surfaced as warnings only, the remote value is
// still returned to the caller.
func (r *Repository) writeThrough(ctx context.Context, id entity.ID, e entity.Entity) {
	record, err := r.codec.Encode(e)
	if err != nil {
		r.logger.Warn().Err(err).Int64("entity_id", int64(id)).Msg("Failed to encode entity for caching.")
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, r.writeTimeout)
	defer cancel()

	if err := r.store.Set(writeCtx, r.cacheKey(id), record); err != nil {
		r.logger.Warn().Err(err).Int64("entity_id", int64(id)).Msg("Failed to write entity to cache.")
		return
	}

	r.logger.Debug().Int64("entity_id", int64(id)).Msg("Entity written through to cache.")
}

func (r *Repository) readFromCache(ctx context.Context, id entity.ID) (entity.Entity, error) {
	var zero entity.Entity

	record, err := r.store.Get(ctx, r.cacheKey(id))
	if err != nil {
		return zero, fmt.Errorf("%w: %w", ErrCacheMiss, err)
	}

	e, err := r.codec.Decode(record)
	if err != nil {
		r.logger.Warn().Err(err).Int64("entity_id", int64(id)).Msg("Cached entity record is undecodable.")
		return zero, fmt.Errorf("%w: %w", ErrCacheMiss, err)
	}

	return e, nil
}

func (r *Repository) cacheKey(id entity.ID) string {
	return fmt.Sprintf("%s:%d", r.keyPrefix, id)
}

// Close closes the remote source and the cache store.
func (r *Repository) Close() error {
	if err := r.source.Close(); err != nil {
		r.logger.Error().Err(err).Msg("Error closing remote source.")
		return fmt.Errorf("error closing source: %w", err)
	}
	if err := r.store.Close(); err != nil {
		r.logger.Error().Err(err).Msg("Error closing cache store.")
		return fmt.Errorf("error closing store: %w", err)
	}
	return nil
}

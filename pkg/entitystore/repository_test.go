package entitystore_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/illmade-knight/go-entitystore/pkg/cachestore"
	"github.com/illmade-knight/go-entitystore/pkg/connectivity"
	"github.com/illmade-knight/go-entitystore/pkg/entity"
	"github.com/illmade-knight/go-entitystore/pkg/entitystore"
	"github.com/illmade-knight/go-entitystore/pkg/remote"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSource is a test double for the authoritative remote.
type mockSource struct {
	callCount atomic.Int32
	data      map[entity.ID]entity.Entity
	failWith  error
	// blockUntilCancelled makes Fetch wait for the context to be cancelled,
	// simulating an abandoned in-flight call.
	blockUntilCancelled bool
}

func newMockSource() *mockSource {
	return &mockSource{
		data: map[entity.ID]entity.Entity{
			7: {ID: 7, Name: "Ada", Email: "ada@example.com"},
		},
	}
}

func (m *mockSource) Fetch(ctx context.Context, id entity.ID) (entity.Entity, error) {
	m.callCount.Add(1)
	if m.blockUntilCancelled {
		<-ctx.Done()
		return entity.Entity{}, ctx.Err()
	}
	if m.failWith != nil {
		return entity.Entity{}, m.failWith
	}
	if e, ok := m.data[id]; ok {
		return e, nil
	}
	return entity.Entity{}, remote.ErrNotFound
}

func (m *mockSource) Close() error { return nil }

// brokenStore fails every write but otherwise behaves like the wrapped store.
type brokenStore struct {
	*cachestore.InMemoryStore
}

func (b *brokenStore) Set(_ context.Context, _ string, _ []byte) error {
	return errors.New("disk full")
}

func newRepository(t *testing.T, probe connectivity.Probe, source remote.Source, store cachestore.Store) *entitystore.Repository {
	t.Helper()
	repo, err := entitystore.NewRepository(&entitystore.Config{}, probe, source, store, zerolog.Nop())
	require.NoError(t, err)
	return repo
}

func TestRepository_GetEntity_Connected(t *testing.T) {
	ctx := context.Background()
	codec := entity.JSONCodec{}

	t.Run("Successful fetch returns the entity and writes through to the cache", func(t *testing.T) {
		source := newMockSource()
		store := cachestore.NewInMemoryStore()
		repo := newRepository(t, connectivity.StaticProbe(true), source, store)

		got, err := repo.GetEntity(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, entity.Entity{ID: 7, Name: "Ada", Email: "ada@example.com"}, got)

		record, err := store.Get(ctx, "entity:7")
		require.NoError(t, err, "cache must hold the fetched entity")
		cached, err := codec.Decode(record)
		require.NoError(t, err)
		assert.Equal(t, got, cached)
	})

	t.Run("Repeated fetches are idempotent and do not drift the cache", func(t *testing.T) {
		source := newMockSource()
		store := cachestore.NewInMemoryStore()
		repo := newRepository(t, connectivity.StaticProbe(true), source, store)

		first, err := repo.GetEntity(ctx, 7)
		require.NoError(t, err)
		firstRecord, err := store.Get(ctx, "entity:7")
		require.NoError(t, err)

		second, err := repo.GetEntity(ctx, 7)
		require.NoError(t, err)
		secondRecord, err := store.Get(ctx, "entity:7")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, firstRecord, secondRecord)
		assert.Equal(t, int32(2), source.callCount.Load(), "no single-flight coalescing is promised, each call hits the remote")
	})

	t.Run("Remote failures surface as RemoteUnavailable and leave the cache unmodified", func(t *testing.T) {
		for _, kind := range []error{remote.ErrNotFound, remote.ErrServerError, remote.ErrTimeout} {
			source := newMockSource()
			source.failWith = kind
			store := cachestore.NewInMemoryStore()
			repo := newRepository(t, connectivity.StaticProbe(true), source, store)

			_, err := repo.GetEntity(ctx, 7)

			assert.ErrorIs(t, err, entitystore.ErrRemoteUnavailable)
			assert.ErrorIs(t, err, kind, "the classified remote kind must stay inspectable")

			_, err = store.Get(ctx, "entity:7")
			assert.ErrorIs(t, err, cachestore.ErrNotFound, "a failed fetch must not touch the cache")
		}
	})

	t.Run("Connected failure is not masked by a stale cached record", func(t *testing.T) {
		source := newMockSource()
		store := cachestore.NewInMemoryStore()
		repo := newRepository(t, connectivity.StaticProbe(true), source, store)

		// Warm the cache, then break the remote.
		_, err := repo.GetEntity(ctx, 7)
		require.NoError(t, err)
		source.failWith = remote.ErrServerError

		_, err = repo.GetEntity(ctx, 7)
		assert.ErrorIs(t, err, entitystore.ErrRemoteUnavailable)
	})

	t.Run("Cache write failure is non-fatal, the remote value is still returned", func(t *testing.T) {
		source := newMockSource()
		store := &brokenStore{cachestore.NewInMemoryStore()}
		repo := newRepository(t, connectivity.StaticProbe(true), source, store)

		got, err := repo.GetEntity(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, entity.Entity{ID: 7, Name: "Ada", Email: "ada@example.com"}, got)
	})

	t.Run("Cancellation mid-fetch aborts without a cache write", func(t *testing.T) {
		source := newMockSource()
		source.blockUntilCancelled = true
		store := cachestore.NewInMemoryStore()
		repo := newRepository(t, connectivity.StaticProbe(true), source, store)

		cancelCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		_, err := repo.GetEntity(cancelCtx, 7)

		assert.ErrorIs(t, err, entitystore.ErrRemoteUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)

		_, err = store.Get(ctx, "entity:7")
		assert.ErrorIs(t, err, cachestore.ErrNotFound, "an abandoned fetch must leave the cache untouched")
	})
}

func TestRepository_GetEntity_Offline(t *testing.T) {
	ctx := context.Background()
	codec := entity.JSONCodec{}

	t.Run("Cached entity is returned without invoking the remote", func(t *testing.T) {
		source := newMockSource()
		store := cachestore.NewInMemoryStore()
		prior := entity.Entity{ID: 7, Name: "Ada", Email: "ada@example.com"}
		record, err := codec.Encode(prior)
		require.NoError(t, err)
		require.NoError(t, store.Set(ctx, "entity:7", record))

		repo := newRepository(t, connectivity.StaticProbe(false), source, store)

		got, err := repo.GetEntity(ctx, 7)

		require.NoError(t, err)
		assert.Equal(t, prior, got)
		assert.Equal(t, int32(0), source.callCount.Load(), "the remote must not be invoked while offline")
	})

	t.Run("Empty cache surfaces CacheMiss without invoking the remote", func(t *testing.T) {
		source := newMockSource()
		store := cachestore.NewInMemoryStore()
		repo := newRepository(t, connectivity.StaticProbe(false), source, store)

		_, err := repo.GetEntity(ctx, 9)

		assert.ErrorIs(t, err, entitystore.ErrCacheMiss)
		assert.Equal(t, int32(0), source.callCount.Load())
	})

	t.Run("Undecodable cached record surfaces CacheMiss", func(t *testing.T) {
		source := newMockSource()
		store := cachestore.NewInMemoryStore()
		require.NoError(t, store.Set(ctx, "entity:7", []byte("corrupted")))

		repo := newRepository(t, connectivity.StaticProbe(false), source, store)

		_, err := repo.GetEntity(ctx, 7)
		assert.ErrorIs(t, err, entitystore.ErrCacheMiss)
	})
}

func TestRepository_GetEntity_InvalidID(t *testing.T) {
	ctx := context.Background()

	source := newMockSource()
	store := cachestore.NewInMemoryStore()
	repo := newRepository(t, connectivity.StaticProbe(true), source, store)

	for _, id := range []entity.ID{0, -1} {
		_, err := repo.GetEntity(ctx, id)
		assert.ErrorIs(t, err, entitystore.ErrInvalidID)
	}
	assert.Equal(t, int32(0), source.callCount.Load(), "validation must fail fast, before any I/O")
}

func TestRepository_KeyPrefix(t *testing.T) {
	ctx := context.Background()

	source := newMockSource()
	store := cachestore.NewInMemoryStore()
	repo, err := entitystore.NewRepository(&entitystore.Config{KeyPrefix: "user"}, connectivity.StaticProbe(true), source, store, zerolog.Nop())
	require.NoError(t, err)

	_, err = repo.GetEntity(ctx, 7)
	require.NoError(t, err)

	_, err = store.Get(ctx, "user:7")
	assert.NoError(t, err, "records must be stored under the configured prefix")
}

func TestNewRepository_RequiresCollaborators(t *testing.T) {
	source := newMockSource()
	store := cachestore.NewInMemoryStore()
	probe := connectivity.StaticProbe(true)

	_, err := entitystore.NewRepository(&entitystore.Config{}, nil, source, store, zerolog.Nop())
	assert.Error(t, err)

	_, err = entitystore.NewRepository(&entitystore.Config{}, probe, nil, store, zerolog.Nop())
	assert.Error(t, err)

	_, err = entitystore.NewRepository(&entitystore.Config{}, probe, source, nil, zerolog.Nop())
	assert.Error(t, err)
}

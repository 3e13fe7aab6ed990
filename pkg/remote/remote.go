package remote

import (
	"context"
	"errors"
	"io"

	"github.com/illmade-knight/go-entitystore/pkg/entity"
)

// Classified fetch failures. Every Source implementation maps its transport
// and status failures onto exactly these three kinds; callers never need
// finer granularity.
var (
	// ErrNotFound means the remote answered but holds no entity for the id.
	ErrNotFound = errors.New("remote: entity not found")
	// ErrServerError covers any non-success response or transport failure
	// that is not a timeout.
	ErrServerError = errors.New("remote: server error")
	// ErrTimeout means the call exceeded its deadline or was cancelled.
	ErrTimeout = errors.New("remote: request timed out")
)

// Source fetches an entity by id from an authoritative remote system. Fetch
// must be idempotent and must not mutate server state beyond the read.
type Source interface {
	Fetch(ctx context.Context, id entity.ID) (entity.Entity, error)
	io.Closer
}

package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/illmade-knight/go-entitystore/pkg/entity"
	"github.com/rs/zerolog"
)

// HTTPConfig holds configuration for the HTTP source.
type HTTPConfig struct {
	// BaseURL is the root of the entity API, without a trailing slash.
	BaseURL string
	// RequestTimeout bounds each fetch. Zero defaults to 10 seconds.
	RequestTimeout time.Duration
}

// HTTPSource fetches entities from a JSON API at GET {BaseURL}/entities/{id}.
type HTTPSource struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewHTTPSource creates a new HTTPSource. A nil client defaults to a plain
// http.Client; the per-request timeout is applied through the context, so
// the injected client does not need its own.
func NewHTTPSource(cfg *HTTPConfig, client *http.Client, logger zerolog.Logger) (*HTTPSource, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL cannot be empty")
	}
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPSource{
		baseURL:    cfg.BaseURL,
		httpClient: client,
		timeout:    timeout,
		logger:     logger.With().Str("component", "HTTPSource").Logger(),
	}, nil
}

// Fetch retrieves a single entity by its id.
func (s *HTTPSource) Fetch(ctx context.Context, id entity.ID) (entity.Entity, error) {
	var zero entity.Entity

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	url := fmt.Sprintf("%s/entities/%d", s.baseURL, id)
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return zero, fmt.Errorf("%w: building request: %v", ErrServerError, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Int64("entity_id", int64(id)).Msg("Entity fetch transport failure.")
		return zero, classifyTransportError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		s.logger.Warn().Int64("entity_id", int64(id)).Msg("Entity not found on remote.")
		return zero, fmt.Errorf("%w: id %d", ErrNotFound, id)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		s.logger.Error().Int("status", resp.StatusCode).Int64("entity_id", int64(id)).Msg("Entity fetch returned non-success status.")
		return zero, fmt.Errorf("%w: status %d", ErrServerError, resp.StatusCode)
	}

	var e entity.Entity
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		s.logger.Error().Err(err).Int64("entity_id", int64(id)).Msg("Failed to decode entity response body.")
		return zero, fmt.Errorf("%w: decoding response: %v", ErrServerError, err)
	}

	s.logger.Debug().Int64("entity_id", int64(id)).Msg("Successfully fetched entity from remote.")
	return e, nil
}

// Close is a no-op as the HTTP client's lifecycle is managed externally.
func (s *HTTPSource) Close() error {
	return nil
}

// classifyTransportError maps a transport failure onto the source error
// kinds. Deadline and cancellation failures become ErrTimeout; everything
// else is a server error.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrServerError, err)
}

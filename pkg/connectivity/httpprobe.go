package connectivity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPProbeConfig holds configuration for the HTTP health probe.
type HTTPProbeConfig struct {
	// TargetURL is the health endpoint to check, e.g. the remote's /healthz.
	TargetURL string
	// Timeout bounds the whole check. Zero defaults to 2 seconds.
	Timeout time.Duration
}

// HTTPProbe determines connectivity by issuing a lightweight GET against a
// health endpoint. Any transport failure, timeout, or 5xx response resolves
// to "not connected".
type HTTPProbe struct {
	targetURL  string
	timeout    time.Duration
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewHTTPProbe creates a new HTTPProbe. A nil client defaults to a plain
// http.Client.
func NewHTTPProbe(cfg *HTTPProbeConfig, client *http.Client, logger zerolog.Logger) (*HTTPProbe, error) {
	if cfg.TargetURL == "" {
		return nil, fmt.Errorf("target URL cannot be empty")
	}
	if client == nil {
		client = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	return &HTTPProbe{
		targetURL:  cfg.TargetURL,
		timeout:    timeout,
		httpClient: client,
		logger:     logger.With().Str("component", "HTTPProbe").Logger(),
	}, nil
}

// IsConnected checks the health endpoint within the configured timeout.
func (p *HTTPProbe) IsConnected(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, p.targetURL, nil)
	if err != nil {
		p.logger.Error().Err(err).Msg("Failed to build connectivity probe request.")
		return false
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Connectivity probe failed. Treating as offline.")
		return false
	}
	_ = resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		p.logger.Debug().Int("status", resp.StatusCode).Msg("Connectivity probe got server error. Treating as offline.")
		return false
	}

	return true
}

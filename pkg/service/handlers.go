package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/illmade-knight/go-entitystore/pkg/entity"
	"github.com/illmade-knight/go-entitystore/pkg/entitystore"
	"github.com/rs/zerolog"
)

// errorResponse is the JSON body returned for failed reads.
type errorResponse struct {
	Error string `json:"error"`
}

// NewGetEntityHandler returns the handler for GET /entities/{id}. The
// repository's failure kinds map onto distinct statuses so clients can
// render distinct states:
//
//	invalid id         -> 400
//	offline, no data   -> 404
//	remote unavailable -> 502
func NewGetEntityHandler(repo *entitystore.Repository, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		requestLogger := logger.With().Str("request_id", requestID).Logger()

		rawID := r.PathValue("id")
		id, err := strconv.ParseInt(rawID, 10, 64)
		if err != nil {
			requestLogger.Warn().Str("raw_id", rawID).Msg("Rejecting non-numeric entity id.")
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "entity id must be an integer"}, requestLogger)
			return
		}

		e, err := repo.GetEntity(r.Context(), entity.ID(id))
		if err != nil {
			requestLogger.Warn().Err(err).Int64("entity_id", id).Msg("Entity read failed.")
			writeJSON(w, statusFor(err), errorResponse{Error: err.Error()}, requestLogger)
			return
		}

		writeJSON(w, http.StatusOK, e, requestLogger)
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, entitystore.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, entitystore.ErrCacheMiss):
		return http.StatusNotFound
	case errors.Is(err, entitystore.ErrRemoteUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("Failed to encode response body.")
	}
}

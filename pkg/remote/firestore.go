package remote

import (
	"context"
	"fmt"
	"strconv"

	"cloud.google.com/go/firestore"
	"github.com/illmade-knight/go-entitystore/pkg/entity"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfig holds configuration for the Firestore-backed source.
type FirestoreConfig struct {
	ProjectID      string
	CollectionName string
}

// FirestoreSource fetches entities from a Firestore collection, one document
// per entity keyed by the decimal id. It acts as the authoritative source of
// truth for the repository.
type FirestoreSource struct {
	client         *firestore.Client
	collectionName string
	logger         zerolog.Logger
}

// NewFirestoreSource creates a new FirestoreSource over an injected client.
func NewFirestoreSource(cfg *FirestoreConfig, client *firestore.Client, logger zerolog.Logger) (*FirestoreSource, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}

	logger.Info().Str("project_id", cfg.ProjectID).Str("collection", cfg.CollectionName).Msg("FirestoreSource initialized.")

	return &FirestoreSource{
		client:         client,
		collectionName: cfg.CollectionName,
		logger:         logger.With().Str("component", "FirestoreSource").Logger(),
	}, nil
}

// NewProductionFirestoreClient creates a Firestore client suitable for
// production environments. It will use Application Default Credentials
// unless a specific credentials file is provided.
func NewProductionFirestoreClient(ctx context.Context, projectID string, credentialsFile string, logger zerolog.Logger) (*firestore.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
		logger.Info().Str("credentials_file", credentialsFile).Msg("Using specified credentials file for Firestore client.")
	} else {
		logger.Info().Msg("Using Application Default Credentials (ADC) for Firestore client.")
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		logger.Error().Err(err).Str("project_id", projectID).Msg("Failed to create Firestore client.")
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	logger.Info().Str("project_id", projectID).Msg("Firestore client created successfully.")
	return client, nil
}

// Fetch retrieves a single entity document by its id.
func (s *FirestoreSource) Fetch(ctx context.Context, id entity.ID) (entity.Entity, error) {
	var zero entity.Entity
	docID := strconv.FormatInt(int64(id), 10)

	docSnap, err := s.client.Collection(s.collectionName).Doc(docID).Get(ctx)
	if err != nil {
		return zero, s.classify(err, docID)
	}

	var e entity.Entity
	if err := docSnap.DataTo(&e); err != nil {
		s.logger.Error().Err(err).Str("doc_id", docID).Msg("Failed to map Firestore document data.")
		return zero, fmt.Errorf("%w: firestore DataTo for %s: %v", ErrServerError, docID, err)
	}

	s.logger.Debug().Str("doc_id", docID).Msg("Successfully fetched entity from Firestore.")
	return e, nil
}

// classify maps a Firestore call failure onto the source error kinds using
// its grpc status code.
func (s *FirestoreSource) classify(err error, docID string) error {
	switch status.Code(err) {
	case codes.NotFound:
		s.logger.Warn().Str("doc_id", docID).Msg("Entity document not found in Firestore.")
		return fmt.Errorf("%w: document %s", ErrNotFound, docID)
	case codes.DeadlineExceeded, codes.Canceled:
		s.logger.Error().Err(err).Str("doc_id", docID).Msg("Firestore get timed out.")
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		s.logger.Error().Err(err).Str("doc_id", docID).Msg("Failed to get document from Firestore.")
		return fmt.Errorf("%w: firestore get for %s: %v", ErrServerError, docID, err)
	}
}

// Close is a no-op as the Firestore client's lifecycle is managed externally.
func (s *FirestoreSource) Close() error {
	s.logger.Info().Msg("FirestoreSource does not close the injected Firestore client.")
	return nil
}

package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/log"
)

// Sentinel errors returned by Store operations.
var (
	ErrEmptyContent = errors.New("document content is empty")
	ErrEmptyQuery   = errors.New("search query is empty")
	ErrInvalidID    = errors.New("invalid document ID")
	ErrNotFound     = errors.New("document not found")
)

// Store persists document chunks and retrieves them by semantic similarity.
// Safe for concurrent use; all state lives in the database.
type Store struct {
	querier    Querier
	embedder   ai.Embedder
	collection string
	logger     log.Logger
}

// NewStore creates a store scoped to one collection.
func NewStore(querier Querier, embedder ai.Embedder, collection string, logger log.Logger) *Store {
	return &Store{
		querier:    querier,
		embedder:   embedder,
		collection: collection,
		logger:     logger,
	}
}

// Add embeds the document content and persists it, returning the new ID.
// Identical content added twice produces two rows with distinct IDs.
func (s *Store) Add(ctx context.Context, content string, metadata map[string]string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", ErrEmptyContent
	}

	embedding, err := s.embed(ctx, content)
	if err != nil {
		return "", fmt.Errorf("embedding document: %w", err)
	}

	id, err := s.querier.InsertDocument(ctx, InsertDocumentParams{
		Collection: s.collection,
		Content:    content,
		Embedding:  embedding,
		Metadata:   metadata,
	})
	if err != nil {
		return "", err
	}

	s.logger.Debug("document added",
		"id", id,
		"collection", s.collection,
		"content_length", len(content))
	return id.String(), nil
}

// Search embeds the query and returns the most similar documents, ordered by
// descending similarity. Results below the threshold are filtered in SQL, so
// raising the threshold never adds results.
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	cfg := buildSearchConfig(opts)

	embedding, err := s.embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	rows, err := s.querier.SearchDocuments(ctx, SearchDocumentsParams{
		Collection: s.collection,
		Embedding:  embedding,
		Threshold:  cfg.threshold,
		Limit:      cfg.topK,
	})
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, Result{
			Document: Document{
				ID:        row.ID.String(),
				Content:   row.Content,
				Metadata:  row.Metadata,
				CreatedAt: row.CreatedAt,
			},
			Similarity: row.Similarity,
		})
	}

	s.logger.Debug("search completed",
		"collection", s.collection,
		"top_k", cfg.topK,
		"threshold", cfg.threshold,
		"results", len(results))
	return results, nil
}

// Count returns the number of documents in the collection.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.querier.CountDocuments(ctx, s.collection)
}

// Delete removes a document by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	affected, err := s.querier.DeleteDocument(ctx, parsed)
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Healthy reports whether the backing database answers a ping.
// Single attempt, no retries.
func (s *Store) Healthy(ctx context.Context) bool {
	if err := s.querier.Ping(ctx); err != nil {
		s.logger.Warn("store health check failed", "error", err)
		return false
	}
	return true
}

// Collection returns the collection name this store is scoped to.
func (s *Store) Collection() string {
	return s.collection
}

func (s *Store) embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, errors.New("embedder returned no embeddings")
	}
	return resp.Embeddings[0].Embedding, nil
}

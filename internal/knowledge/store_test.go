package knowledge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/log"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) Name() string { return "fake/embedder" }

func (e *fakeEmbedder) Register(api.Registry) {}

func (e *fakeEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	if e.err != nil {
		return nil, e.err
	}
	resp := &ai.EmbedResponse{}
	for range req.Input {
		resp.Embeddings = append(resp.Embeddings, &ai.Embedding{Embedding: e.vector})
	}
	return resp, nil
}

type fakeQuerier struct {
	inserted   []InsertDocumentParams
	searchArgs SearchDocumentsParams
	searchRows []SearchDocumentsRow
	count      int64
	deleted    int64
	pingErr    error
	err        error
}

func (q *fakeQuerier) InsertDocument(_ context.Context, arg InsertDocumentParams) (uuid.UUID, error) {
	if q.err != nil {
		return uuid.Nil, q.err
	}
	q.inserted = append(q.inserted, arg)
	return uuid.New(), nil
}

func (q *fakeQuerier) SearchDocuments(_ context.Context, arg SearchDocumentsParams) ([]SearchDocumentsRow, error) {
	if q.err != nil {
		return nil, q.err
	}
	q.searchArgs = arg
	return q.searchRows, nil
}

func (q *fakeQuerier) CountDocuments(_ context.Context, _ string) (int64, error) {
	return q.count, q.err
}

func (q *fakeQuerier) DeleteDocument(_ context.Context, _ uuid.UUID) (int64, error) {
	return q.deleted, q.err
}

func (q *fakeQuerier) Ping(_ context.Context) error { return q.pingErr }

func newTestStore(q Querier) *Store {
	return NewStore(q, &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}, "test_docs", log.NewNop())
}

func TestStoreAdd(t *testing.T) {
	q := &fakeQuerier{}
	store := newTestStore(q)

	id, err := store.Add(context.Background(), "hello world", map[string]string{"source": "test.txt"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("Add() returned non-uuid ID %q", id)
	}

	if len(q.inserted) != 1 {
		t.Fatalf("inserted %d rows, want 1", len(q.inserted))
	}
	got := q.inserted[0]
	if got.Collection != "test_docs" {
		t.Errorf("collection = %q, want test_docs", got.Collection)
	}
	if got.Content != "hello world" {
		t.Errorf("content = %q", got.Content)
	}
	if len(got.Embedding) != 3 {
		t.Errorf("embedding length = %d, want 3", len(got.Embedding))
	}
	if got.Metadata["source"] != "test.txt" {
		t.Errorf("metadata = %v", got.Metadata)
	}
}

func TestStoreAddEmptyContent(t *testing.T) {
	store := newTestStore(&fakeQuerier{})

	for _, content := range []string{"", "   ", "\n\t"} {
		if _, err := store.Add(context.Background(), content, nil); !errors.Is(err, ErrEmptyContent) {
			t.Errorf("Add(%q) error = %v, want ErrEmptyContent", content, err)
		}
	}
}

func TestStoreAddEmbedderFailure(t *testing.T) {
	embErr := errors.New("quota exceeded")
	store := NewStore(&fakeQuerier{}, &fakeEmbedder{err: embErr}, "test_docs", log.NewNop())

	if _, err := store.Add(context.Background(), "content", nil); !errors.Is(err, embErr) {
		t.Errorf("Add() error = %v, want wrapped %v", err, embErr)
	}
}

func TestStoreSearch(t *testing.T) {
	id := uuid.New()
	q := &fakeQuerier{
		searchRows: []SearchDocumentsRow{
			{ID: id, Content: "most similar", Similarity: 0.92, CreatedAt: time.Now()},
			{ID: uuid.New(), Content: "less similar", Similarity: 0.71},
		},
	}
	store := newTestStore(q)

	results, err := store.Search(context.Background(), "query", WithTopK(2), WithThreshold(0.6))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if results[0].Document.ID != id.String() {
		t.Errorf("first result ID = %q, want %q", results[0].Document.ID, id)
	}
	if results[0].Similarity != 0.92 {
		t.Errorf("first similarity = %v", results[0].Similarity)
	}

	if q.searchArgs.Limit != 2 {
		t.Errorf("limit = %d, want 2", q.searchArgs.Limit)
	}
	if q.searchArgs.Threshold != 0.6 {
		t.Errorf("threshold = %v, want 0.6", q.searchArgs.Threshold)
	}
	if q.searchArgs.Collection != "test_docs" {
		t.Errorf("collection = %q", q.searchArgs.Collection)
	}
}

func TestStoreSearchDefaults(t *testing.T) {
	q := &fakeQuerier{}
	store := newTestStore(q)

	if _, err := store.Search(context.Background(), "query"); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if q.searchArgs.Limit != DefaultTopK {
		t.Errorf("default limit = %d, want %d", q.searchArgs.Limit, DefaultTopK)
	}
	if q.searchArgs.Threshold != DefaultThreshold {
		t.Errorf("default threshold = %v, want %v", q.searchArgs.Threshold, DefaultThreshold)
	}
}

func TestStoreSearchEmptyQuery(t *testing.T) {
	store := newTestStore(&fakeQuerier{})

	if _, err := store.Search(context.Background(), "  "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Search() error = %v, want ErrEmptyQuery", err)
	}
}

func TestSearchOptionClamping(t *testing.T) {
	cfg := buildSearchConfig([]SearchOption{WithTopK(0), WithThreshold(1.7)})
	if cfg.topK != DefaultTopK {
		t.Errorf("topK = %d, want default %d for out-of-range value", cfg.topK, DefaultTopK)
	}
	if cfg.threshold != 1 {
		t.Errorf("threshold = %v, want clamped to 1", cfg.threshold)
	}

	cfg = buildSearchConfig([]SearchOption{WithThreshold(-0.5)})
	if cfg.threshold != 0 {
		t.Errorf("threshold = %v, want clamped to 0", cfg.threshold)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(&fakeQuerier{deleted: 1})

	if err := store.Delete(context.Background(), uuid.NewString()); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestStoreDeleteInvalidID(t *testing.T) {
	store := newTestStore(&fakeQuerier{})

	if err := store.Delete(context.Background(), "not-a-uuid"); !errors.Is(err, ErrInvalidID) {
		t.Errorf("Delete() error = %v, want ErrInvalidID", err)
	}
}

func TestStoreDeleteNotFound(t *testing.T) {
	store := newTestStore(&fakeQuerier{deleted: 0})

	if err := store.Delete(context.Background(), uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStoreHealthy(t *testing.T) {
	store := newTestStore(&fakeQuerier{})
	if !store.Healthy(context.Background()) {
		t.Error("Healthy() = false for reachable store")
	}

	store = newTestStore(&fakeQuerier{pingErr: errors.New("connection refused")})
	if store.Healthy(context.Background()) {
		t.Error("Healthy() = true for unreachable store")
	}
}

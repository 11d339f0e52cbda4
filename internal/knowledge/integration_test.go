package knowledge

import (
	"context"
	"errors"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"

	"github.com/siftlabs/sift/internal/log"
	"github.com/siftlabs/sift/internal/testutil"
)

// mapEmbedder returns pinned 768-dim unit vectors per content string, so
// cosine similarities in the database are exact.
type mapEmbedder struct {
	vectors map[string][]float32
}

func unitVector(axis int) []float32 {
	v := make([]float32, 768)
	v[axis] = 1
	return v
}

func (e *mapEmbedder) Name() string { return "map/embedder" }

func (e *mapEmbedder) Register(api.Registry) {}

func (e *mapEmbedder) Embed(_ context.Context, req *ai.EmbedRequest) (*ai.EmbedResponse, error) {
	resp := &ai.EmbedResponse{}
	for _, doc := range req.Input {
		var text string
		for _, p := range doc.Content {
			if p.Kind == ai.PartText {
				text += p.Text
			}
		}
		vec, ok := e.vectors[text]
		if !ok {
			return nil, errors.New("no vector pinned for content")
		}
		resp.Embeddings = append(resp.Embeddings, &ai.Embedding{Embedding: vec})
	}
	return resp, nil
}

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	db, cleanup := testutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	embedder := &mapEmbedder{vectors: map[string][]float32{
		"alpha document": unitVector(0),
		"beta document":  unitVector(1),
		"alpha query":    unitVector(0),
	}}
	querier := NewPgxQuerier(db.Pool)
	store := NewStore(querier, embedder, "it_docs", log.NewNop())

	t.Run("add and count", func(t *testing.T) {
		id, err := store.Add(ctx, "alpha document", map[string]string{"source": "a.txt"})
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if id == "" {
			t.Fatal("Add() returned empty id")
		}
		if _, err := store.Add(ctx, "beta document", nil); err != nil {
			t.Fatalf("Add() error = %v", err)
		}

		count, err := store.Count(ctx)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if count != 2 {
			t.Errorf("Count() = %d, want 2", count)
		}
	})

	t.Run("search orders by similarity", func(t *testing.T) {
		results, err := store.Search(ctx, "alpha query", WithTopK(2))
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("got %d results, want 2", len(results))
		}
		if results[0].Document.Content != "alpha document" {
			t.Errorf("top result = %q, want alpha document", results[0].Document.Content)
		}
		if results[0].Similarity < 0.99 {
			t.Errorf("identical-direction similarity = %v, want ~1", results[0].Similarity)
		}
		if results[0].Document.Metadata["source"] != "a.txt" {
			t.Errorf("metadata round-trip failed: %v", results[0].Document.Metadata)
		}
	})

	t.Run("threshold filters in sql", func(t *testing.T) {
		results, err := store.Search(ctx, "alpha query", WithTopK(10), WithThreshold(0.9))
		if err != nil {
			t.Fatalf("Search() error = %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("got %d results above 0.9, want 1", len(results))
		}
		for _, r := range results {
			if r.Similarity < 0.9 {
				t.Errorf("result below threshold: %v", r.Similarity)
			}
		}
	})

	t.Run("collection isolation", func(t *testing.T) {
		other := NewStore(querier, embedder, "other_docs", log.NewNop())
		count, err := other.Count(ctx)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if count != 0 {
			t.Errorf("other collection sees %d documents, want 0", count)
		}
	})

	t.Run("duplicate content gets new row", func(t *testing.T) {
		before, _ := store.Count(ctx)
		if _, err := store.Add(ctx, "alpha document", nil); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		after, _ := store.Count(ctx)
		if after != before+1 {
			t.Errorf("count went %d -> %d, want +1", before, after)
		}
	})

	t.Run("delete", func(t *testing.T) {
		id, err := store.Add(ctx, "beta document", nil)
		if err != nil {
			t.Fatalf("Add() error = %v", err)
		}
		if err := store.Delete(ctx, id); err != nil {
			t.Errorf("Delete() error = %v", err)
		}
		if err := store.Delete(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("healthy", func(t *testing.T) {
		if !store.Healthy(ctx) {
			t.Error("Healthy() = false against live database")
		}
	})
}

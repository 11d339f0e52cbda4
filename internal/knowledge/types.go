// Package knowledge implements the vector document store backing retrieval.
//
// Documents are chunks of text with metadata. Add embeds the content and
// persists it; Search embeds the query and returns the most similar chunks
// by cosine similarity. Storage is PostgreSQL with the pgvector extension,
// one row per chunk, scoped by a logical collection name.
package knowledge

import (
	"time"
)

// Document is a stored text chunk with its metadata.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	CreatedAt time.Time
}

// Result is a search hit: the document plus its cosine similarity to the
// query, in [0, 1] where 1 means identical direction.
type Result struct {
	Document   Document
	Similarity float64
}

// Search defaults when no options are given.
const (
	DefaultTopK      = 4
	DefaultThreshold = 0.0
)

type searchConfig struct {
	topK      int
	threshold float64
}

// SearchOption customizes a Search call.
type SearchOption func(*searchConfig)

// WithTopK limits the number of results. Values below 1 are ignored.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k >= 1 {
			c.topK = k
		}
	}
}

// WithThreshold drops results whose similarity is below t.
// Values outside [0, 1] are clamped.
func WithThreshold(t float64) SearchOption {
	return func(c *searchConfig) {
		c.threshold = min(max(t, 0), 1)
	}
}

func buildSearchConfig(opts []SearchOption) searchConfig {
	cfg := searchConfig{
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"
)

// Querier is the database access surface the store depends on.
// *PgxQuerier is the production implementation; tests supply fakes.
type Querier interface {
	InsertDocument(ctx context.Context, arg InsertDocumentParams) (uuid.UUID, error)
	SearchDocuments(ctx context.Context, arg SearchDocumentsParams) ([]SearchDocumentsRow, error)
	CountDocuments(ctx context.Context, collection string) (int64, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) (int64, error)
	Ping(ctx context.Context) error
}

// InsertDocumentParams holds one chunk ready for persistence.
type InsertDocumentParams struct {
	Collection string
	Content    string
	Embedding  []float32
	Metadata   map[string]string
}

// SearchDocumentsParams holds a similarity query.
type SearchDocumentsParams struct {
	Collection string
	Embedding  []float32
	Threshold  float64
	Limit      int
}

// SearchDocumentsRow is one similarity search hit.
type SearchDocumentsRow struct {
	ID         uuid.UUID
	Content    string
	Metadata   map[string]string
	CreatedAt  time.Time
	Similarity float64
}

const insertDocumentSQL = `
INSERT INTO documents (collection, content, embedding, metadata)
VALUES ($1, $2, $3, $4)
RETURNING id`

const searchDocumentsSQL = `
SELECT id, content, metadata, created_at, 1 - (embedding <=> $2) AS similarity
FROM documents
WHERE collection = $1 AND 1 - (embedding <=> $2) >= $3
ORDER BY embedding <=> $2
LIMIT $4`

const countDocumentsSQL = `SELECT count(*) FROM documents WHERE collection = $1`

const deleteDocumentSQL = `DELETE FROM documents WHERE id = $1`

// PgxQuerier implements Querier on a pgx connection pool.
type PgxQuerier struct {
	pool *pgxpool.Pool
}

// NewPgxQuerier wraps a connection pool.
func NewPgxQuerier(pool *pgxpool.Pool) *PgxQuerier {
	return &PgxQuerier{pool: pool}
}

func (q *PgxQuerier) InsertDocument(ctx context.Context, arg InsertDocumentParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.pool.QueryRow(ctx, insertDocumentSQL,
		arg.Collection, arg.Content, pgvector.NewVector(arg.Embedding), arg.Metadata,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting document: %w", err)
	}
	return id, nil
}

func (q *PgxQuerier) SearchDocuments(ctx context.Context, arg SearchDocumentsParams) ([]SearchDocumentsRow, error) {
	rows, err := q.pool.Query(ctx, searchDocumentsSQL,
		arg.Collection, pgvector.NewVector(arg.Embedding), arg.Threshold, arg.Limit)
	if err != nil {
		return nil, fmt.Errorf("searching documents: %w", err)
	}
	defer rows.Close()

	var results []SearchDocumentsRow
	for rows.Next() {
		var row SearchDocumentsRow
		if err := rows.Scan(&row.ID, &row.Content, &row.Metadata, &row.CreatedAt, &row.Similarity); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading search rows: %w", err)
	}
	return results, nil
}

func (q *PgxQuerier) CountDocuments(ctx context.Context, collection string) (int64, error) {
	var count int64
	if err := q.pool.QueryRow(ctx, countDocumentsSQL, collection).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

func (q *PgxQuerier) DeleteDocument(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.pool.Exec(ctx, deleteDocumentSQL, id)
	if err != nil {
		return 0, fmt.Errorf("deleting document: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (q *PgxQuerier) Ping(ctx context.Context) error {
	return q.pool.Ping(ctx)
}

// Package app wires configuration, database, AI provider, and the engine
// into one container shared by the CLI and the HTTP server.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/siftlabs/sift/internal/config"
	"github.com/siftlabs/sift/internal/ingest"
	"github.com/siftlabs/sift/internal/knowledge"
	"github.com/siftlabs/sift/internal/log"
	"github.com/siftlabs/sift/internal/rag"
	"github.com/siftlabs/sift/internal/session"
)

// App holds every long-lived component. Built by Setup, torn down by Close.
type App struct {
	Config    *config.Config
	Logger    log.Logger
	DBPool    *pgxpool.Pool
	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	Store     *knowledge.Store
	Sessions  *session.Store
	Engine    *rag.Engine
	Processor *ingest.Processor

	dbCleanup func()
}

// Close releases held resources. Safe to call on a partially built App.
func (a *App) Close() {
	if a.dbCleanup != nil {
		a.dbCleanup()
		a.dbCleanup = nil
	}
}

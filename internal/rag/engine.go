// Package rag orchestrates retrieval-augmented answering: embed the query,
// retrieve similar chunks, assemble a grounded prompt, generate, and
// attribute sources.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"golang.org/x/time/rate"

	"github.com/siftlabs/sift/internal/knowledge"
	"github.com/siftlabs/sift/internal/log"
	"github.com/siftlabs/sift/internal/session"
)

// FallbackAnswer is returned as a successful answer when retrieval finds
// nothing relevant.
const FallbackAnswer = "I couldn't find any relevant information to answer your question."

// emptyStoreMessage is the error for querying before any document was added.
const emptyStoreMessage = "vector store is empty - add documents first"

// historyWindow is how many recent messages are folded into the
// conversational prompt.
const historyWindow = 6

// Config holds the engine's generation and retrieval parameters.
type Config struct {
	ModelName     string
	EmbedderModel string
	Temperature   float32
	MaxTokens     int
	TopK          int
	Threshold     float64

	// RequestsPerSecond throttles LLM calls. Zero means unlimited.
	RequestsPerSecond float64
}

// Engine answers questions grounded in the knowledge store.
type Engine struct {
	g        *genkit.Genkit
	store    *knowledge.Store
	sessions *session.Store
	cfg      Config
	limiter  *rate.Limiter
	qaTmpl   *Template
	convTmpl *Template
	logger   log.Logger
}

// NewEngine builds an engine. Prompt templates are validated here, so a
// malformed template fails construction rather than the first query.
func NewEngine(g *genkit.Genkit, store *knowledge.Store, sessions *session.Store, cfg Config, logger log.Logger) (*Engine, error) {
	qa, conv, err := defaultTemplates()
	if err != nil {
		return nil, err
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	if cfg.TopK < 1 {
		cfg.TopK = knowledge.DefaultTopK
	}

	return &Engine{
		g:        g,
		store:    store,
		sessions: sessions,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, 1),
		qaTmpl:   qa,
		convTmpl: conv,
		logger:   logger,
	}, nil
}

// QueryOption customizes a single Query call.
type QueryOption func(*queryConfig)

type queryConfig struct {
	topK           int
	threshold      float64
	conversationID string
}

// WithSources overrides how many chunks are retrieved.
func WithSources(k int) QueryOption {
	return func(c *queryConfig) {
		if k >= 1 {
			c.topK = k
		}
	}
}

// WithThreshold overrides the minimum similarity for retrieved chunks.
func WithThreshold(t float64) QueryOption {
	return func(c *queryConfig) { c.threshold = t }
}

// WithConversation enables conversational mode: prior turns under this ID
// are folded into the prompt and the new turn is recorded afterwards.
func WithConversation(id string) QueryOption {
	return func(c *queryConfig) { c.conversationID = id }
}

// Query answers a question. It never returns a Go error; every failure is
// converted into an error Result so all callers see one envelope shape.
func (e *Engine) Query(ctx context.Context, query string, opts ...QueryOption) *Result {
	qc := queryConfig{topK: e.cfg.TopK, threshold: e.cfg.Threshold}
	for _, opt := range opts {
		opt(&qc)
	}

	if strings.TrimSpace(query) == "" {
		return errorResult("query is empty")
	}

	count, err := e.store.Count(ctx)
	if err != nil {
		e.logger.Error("document count failed", "error", err)
		return errorResult(fmt.Sprintf("checking store: %v", err))
	}
	if count == 0 {
		return errorResult(emptyStoreMessage)
	}

	results, err := e.store.Search(ctx, query,
		knowledge.WithTopK(qc.topK), knowledge.WithThreshold(qc.threshold))
	if err != nil {
		e.logger.Error("retrieval failed", "error", err)
		return errorResult(fmt.Sprintf("searching documents: %v", err))
	}

	if len(results) == 0 {
		e.logger.Debug("no chunks above threshold",
			"threshold", qc.threshold, "query_length", len(query))
		return &Result{
			Status:         StatusSuccess,
			Answer:         FallbackAnswer,
			Sources:        []Source{},
			ConversationID: qc.conversationID,
		}
	}

	prompt, err := e.buildPrompt(query, qc.conversationID, results)
	if err != nil {
		e.logger.Error("prompt assembly failed", "error", err)
		return errorResult(fmt.Sprintf("building prompt: %v", err))
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return errorResult(fmt.Sprintf("rate limit wait: %v", err))
	}

	resp, err := genkit.Generate(ctx, e.g,
		ai.WithPrompt(prompt),
		ai.WithModelName(e.cfg.ModelName),
		ai.WithConfig(&ai.GenerationCommonConfig{
			Temperature:     float64(e.cfg.Temperature),
			MaxOutputTokens: e.cfg.MaxTokens,
		}),
	)
	if err != nil {
		e.logger.Error("generation failed", "model", e.cfg.ModelName, "error", err)
		return errorResult(fmt.Sprintf("generating answer: %v", err))
	}
	answer := resp.Text()

	// Memory is updated only after a successful generation, so a failed
	// turn never pollutes the history.
	if qc.conversationID != "" {
		e.sessions.Append(qc.conversationID, session.RoleHuman, query)
		e.sessions.Append(qc.conversationID, session.RoleAssistant, answer)
	}

	sources := make([]Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, Source{
			ID:         r.Document.ID,
			Preview:    makePreview(r.Document.Content),
			Metadata:   r.Document.Metadata,
			Similarity: r.Similarity,
		})
	}

	e.logger.Info("query answered",
		"sources", len(sources),
		"conversational", qc.conversationID != "")
	return &Result{
		Status:         StatusSuccess,
		Answer:         answer,
		Sources:        sources,
		NumSources:     len(sources),
		ConversationID: qc.conversationID,
	}
}

// BatchQuery answers queries sequentially. Each query gets its own result
// envelope; one failure does not stop the batch.
func (e *Engine) BatchQuery(ctx context.Context, queries []string, opts ...QueryOption) []*Result {
	results := make([]*Result, 0, len(queries))
	for _, q := range queries {
		results = append(results, e.Query(ctx, q, opts...))
	}
	return results
}

// buildPrompt renders the QA template, or the conversational one when prior
// turns exist for the conversation.
func (e *Engine) buildPrompt(query, conversationID string, results []knowledge.Result) (string, error) {
	contexts := make([]string, 0, len(results))
	for _, r := range results {
		contexts = append(contexts, r.Document.Content)
	}
	tmpl := e.qaTmpl
	values := map[string]string{
		"context":  strings.Join(contexts, "\n\n"),
		"question": query,
	}
	if conversationID != "" {
		if history := e.sessions.History(conversationID, historyWindow); len(history) > 0 {
			tmpl = e.convTmpl
			values["history"] = renderHistory(history)
		}
	}

	prompt, err := tmpl.Render(values)
	if err != nil {
		return "", err
	}
	e.logger.Debug("prompt assembled",
		"template", tmpl.Name(), "context_chunks", len(results))
	return prompt, nil
}

// renderHistory folds messages into "Human:"/"Assistant:" lines.
func renderHistory(msgs []session.Message) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		label := "Human"
		if m.Role == session.RoleAssistant {
			label = "Assistant"
		}
		lines = append(lines, label+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// SystemStatus reports the health of the engine's dependencies.
type SystemStatus struct {
	StoreHealthy  bool   `json:"store_healthy"`
	DocumentCount int64  `json:"document_count"`
	Collection    string `json:"collection"`
	Model         string `json:"model"`
	EmbedderModel string `json:"embedder_model"`
	Conversations int    `json:"active_conversations"`
}

// Status aggregates store health, document count, and model identifiers.
// A count failure is reported as an unhealthy store, not an error.
func (e *Engine) Status(ctx context.Context) SystemStatus {
	status := SystemStatus{
		StoreHealthy:  e.store.Healthy(ctx),
		Collection:    e.store.Collection(),
		Model:         e.cfg.ModelName,
		EmbedderModel: e.cfg.EmbedderModel,
		Conversations: e.sessions.Conversations(),
	}

	if count, err := e.store.Count(ctx); err == nil {
		status.DocumentCount = count
	} else {
		status.StoreHealthy = false
	}
	return status
}

// ClearConversation drops the history for one conversation.
func (e *Engine) ClearConversation(conversationID string) {
	e.sessions.Clear(conversationID)
}

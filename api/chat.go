package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/log"
	"github.com/siftlabs/sift/internal/rag"
)

// HTTP chat retrieves a few more chunks than the CLI and requires a higher
// similarity floor.
const (
	chatTopK      = 5
	chatThreshold = 0.6
)

// maxChatBodyBytes caps the request body at 1 MiB.
const maxChatBodyBytes = 1 << 20

// ChatHandler answers questions over HTTP, with conversation memory keyed by
// conversation_id.
type ChatHandler struct {
	engine *rag.Engine
	logger log.Logger
}

// NewChatHandler creates the chat handler.
func NewChatHandler(engine *rag.Engine, logger log.Logger) *ChatHandler {
	return &ChatHandler{engine: engine, logger: logger}
}

// RegisterRoutes registers the chat endpoint.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /chat", h.handleChat)
}

// ChatRequest is the POST /chat request body.
type ChatRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ChatResponse is the POST /chat response body. ConversationID is always
// set; clients pass it back to continue the conversation.
type ChatResponse struct {
	Response       string       `json:"response"`
	Sources        []rag.Source `json:"sources"`
	ConversationID string       `json:"conversation_id"`
}

func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query must not be empty")
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	result := h.engine.Query(r.Context(), req.Query,
		rag.WithSources(chatTopK),
		rag.WithThreshold(chatThreshold),
		rag.WithConversation(conversationID),
	)
	if result.Status == rag.StatusError {
		h.logger.Warn("chat query failed", "error", result.Error)
		writeError(w, http.StatusInternalServerError, "query_failed", result.Error)
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:       result.Answer,
		Sources:        result.Sources,
		ConversationID: conversationID,
	})
}

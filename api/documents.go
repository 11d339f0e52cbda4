package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/siftlabs/sift/internal/knowledge"
	"github.com/siftlabs/sift/internal/log"
)

// maxDocumentBodyBytes caps document uploads at 10 MiB.
const maxDocumentBodyBytes = 10 << 20

// DocumentsHandler manages the knowledge store over HTTP.
type DocumentsHandler struct {
	store  *knowledge.Store
	logger log.Logger
}

// NewDocumentsHandler creates the documents handler.
func NewDocumentsHandler(store *knowledge.Store, logger log.Logger) *DocumentsHandler {
	return &DocumentsHandler{store: store, logger: logger}
}

// RegisterRoutes registers the document endpoints.
func (h *DocumentsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /documents", h.handleAdd)
	mux.HandleFunc("GET /documents/count", h.handleCount)
}

// AddDocumentRequest is the POST /documents request body.
type AddDocumentRequest struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AddDocumentResponse is the POST /documents response body.
type AddDocumentResponse struct {
	DocumentID string `json:"document_id"`
}

// CountResponse is the GET /documents/count response body.
type CountResponse struct {
	DocumentCount int64 `json:"document_count"`
}

func (h *DocumentsHandler) handleAdd(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentBodyBytes)

	var req AddDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be valid JSON")
		return
	}

	id, err := h.store.Add(r.Context(), req.Content, req.Metadata)
	if err != nil {
		if errors.Is(err, knowledge.ErrEmptyContent) {
			writeError(w, http.StatusBadRequest, "invalid_request", "content must not be empty")
			return
		}
		h.logger.Error("adding document failed", "error", err)
		writeError(w, http.StatusInternalServerError, "add_failed", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, AddDocumentResponse{DocumentID: id})
}

func (h *DocumentsHandler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		h.logger.Error("counting documents failed", "error", err)
		writeError(w, http.StatusInternalServerError, "count_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{DocumentCount: count})
}

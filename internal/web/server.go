// Package web serves a minimal browser UI for asking questions and
// uploading documents.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/siftlabs/sift/internal/ingest"
	"github.com/siftlabs/sift/internal/knowledge"
	"github.com/siftlabs/sift/internal/log"
	"github.com/siftlabs/sift/internal/rag"
)

//go:embed templates/*.html
var templatesFS embed.FS

// maxUploadBytes caps document uploads at 20 MiB.
const maxUploadBytes = 20 << 20

// Server renders the chat page and handles uploads.
type Server struct {
	engine    *rag.Engine
	store     *knowledge.Store
	processor *ingest.Processor
	logger    log.Logger
	tmpl      *template.Template
}

// NewServer parses the embedded templates and creates the UI server.
func NewServer(engine *rag.Engine, store *knowledge.Store, processor *ingest.Processor, logger log.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Server{
		engine:    engine,
		store:     store,
		processor: processor,
		logger:    logger,
		tmpl:      tmpl,
	}, nil
}

// RegisterRoutes registers the UI routes.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /chat-ui", s.handleChat)
	mux.HandleFunc("POST /upload", s.handleUpload)
}

type pageData struct {
	Query         string
	Answer        string
	Error         string
	Notice        string
	Collection    string
	DocumentCount int64
	Sources       []rag.Source
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, data pageData) {
	data.Collection = s.store.Collection()
	if count, err := s.store.Count(r.Context()); err == nil {
		data.DocumentCount = count
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.logger.Error("rendering page", "error", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, pageData{})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, pageData{Error: "invalid form submission"})
		return
	}

	query := strings.TrimSpace(r.FormValue("query"))
	if query == "" {
		s.render(w, r, pageData{Error: "enter a question first"})
		return
	}

	result := s.engine.Query(r.Context(), query)
	if result.Status == rag.StatusError {
		s.render(w, r, pageData{Query: query, Error: result.Error})
		return
	}
	s.render(w, r, pageData{
		Query:   query,
		Answer:  result.Answer,
		Sources: result.Sources,
	})
}

// handleUpload stages the uploaded file to a temp path, ingests it, and
// removes the staging file. Nothing but the chunks is persisted.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.render(w, r, pageData{Error: "invalid upload"})
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		s.render(w, r, pageData{Error: "choose a file to upload"})
		return
	}
	defer file.Close()

	staged, err := stageUpload(file, header.Filename)
	if err != nil {
		s.logger.Error("staging upload", "error", err)
		s.render(w, r, pageData{Error: "could not store the upload"})
		return
	}
	defer os.Remove(staged)

	chunks, err := s.processor.ProcessFile(staged)
	if err != nil {
		s.render(w, r, pageData{Error: fmt.Sprintf("processing %s: %v", header.Filename, err)})
		return
	}

	added := 0
	for _, c := range chunks {
		// The staging path is meaningless to readers; attribute chunks to
		// the original filename.
		c.Metadata["source"] = header.Filename
		c.Metadata["file_name"] = header.Filename
		if _, err := s.store.Add(r.Context(), c.Content, c.Metadata); err != nil {
			s.logger.Warn("skipping chunk", "file", header.Filename, "error", err)
			continue
		}
		added++
	}

	s.render(w, r, pageData{
		Notice: fmt.Sprintf("Added %d chunks from %s", added, header.Filename),
	})
}

// stageUpload copies the upload to a temp file, keeping the extension so
// the processor can dispatch by file type.
func stageUpload(src io.Reader, filename string) (string, error) {
	ext := filepath.Ext(filename)
	tmp, err := os.CreateTemp("", "sift-upload-*"+ext)
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, src); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

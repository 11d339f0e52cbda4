package web

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/genkit"
	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/ingest"
	"github.com/siftlabs/sift/internal/knowledge"
	"github.com/siftlabs/sift/internal/log"
	"github.com/siftlabs/sift/internal/rag"
	"github.com/siftlabs/sift/internal/session"
	"github.com/siftlabs/sift/internal/testutil"
)

type fakeQuerier struct {
	rows  []knowledge.SearchDocumentsRow
	count int64
}

func (q *fakeQuerier) InsertDocument(_ context.Context, _ knowledge.InsertDocumentParams) (uuid.UUID, error) {
	q.count++
	return uuid.New(), nil
}

func (q *fakeQuerier) SearchDocuments(_ context.Context, arg knowledge.SearchDocumentsParams) ([]knowledge.SearchDocumentsRow, error) {
	out := q.rows
	if len(out) > arg.Limit {
		out = out[:arg.Limit]
	}
	return out, nil
}

func (q *fakeQuerier) CountDocuments(_ context.Context, _ string) (int64, error) {
	return q.count, nil
}

func (q *fakeQuerier) DeleteDocument(_ context.Context, _ uuid.UUID) (int64, error) {
	return 1, nil
}

func (q *fakeQuerier) Ping(_ context.Context) error { return nil }

func newTestUI(t *testing.T, q *fakeQuerier) (*Server, *http.ServeMux) {
	t.Helper()

	g := genkit.Init(context.Background())
	if g == nil {
		t.Fatal("genkit.Init() returned nil")
	}

	llm := testutil.NewMockLLM("mock answer")
	llm.Register(g)
	embedder := testutil.NewMockEmbedder(8).Register(g)

	store := knowledge.NewStore(q, embedder, "test_docs", log.NewNop())
	engine, err := rag.NewEngine(g, store, session.NewStore(session.DefaultMaxMessages), rag.Config{
		ModelName: testutil.ModelName,
		MaxTokens: 1000,
		TopK:      4,
	}, log.NewNop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	ui, err := NewServer(engine, store, ingest.NewProcessor(1000, 200, log.NewNop()), log.NewNop())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	mux := http.NewServeMux()
	ui.RegisterRoutes(mux)
	return ui, mux
}

func TestIndexPage(t *testing.T) {
	_, mux := newTestUI(t, &fakeQuerier{count: 5})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "test_docs") {
		t.Errorf("page missing collection name: %s", body)
	}
	if !strings.Contains(body, "5 chunks") {
		t.Errorf("page missing document count: %s", body)
	}
}

func TestChatFormRendersAnswer(t *testing.T) {
	q := &fakeQuerier{
		count: 1,
		rows: []knowledge.SearchDocumentsRow{
			{ID: uuid.New(), Content: "chunk text", Similarity: 0.9,
				Metadata: map[string]string{"source": "notes.txt"}},
		},
	}
	_, mux := newTestUI(t, q)

	form := url.Values{"query": {"what is this?"}}
	req := httptest.NewRequest(http.MethodPost, "/chat-ui", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "mock answer") {
		t.Errorf("page missing answer: %s", body)
	}
	if !strings.Contains(body, "notes.txt") {
		t.Errorf("page missing source: %s", body)
	}
}

func TestChatFormEmptyQuery(t *testing.T) {
	_, mux := newTestUI(t, &fakeQuerier{count: 1})

	form := url.Values{"query": {"  "}}
	req := httptest.NewRequest(http.MethodPost, "/chat-ui", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "enter a question") {
		t.Errorf("page missing validation message: %s", rec.Body.String())
	}
}

func TestUploadIngestsFile(t *testing.T) {
	q := &fakeQuerier{}
	_, mux := newTestUI(t, q)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("document", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte("some document content")); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "Added 1 chunks from notes.txt") {
		t.Errorf("page missing upload notice: %s", body)
	}
	if q.count != 1 {
		t.Errorf("stored %d chunks, want 1", q.count)
	}
}

func TestUploadUnsupportedType(t *testing.T) {
	_, mux := newTestUI(t, &fakeQuerier{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("document", "binary.exe")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte{0x4d, 0x5a}); err != nil {
		t.Fatal(err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "unsupported file type") {
		t.Errorf("page missing error: %s", rec.Body.String())
	}
}

package rag

import "unicode/utf8"

// Status labels a Result as answered or failed.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// previewLength caps source previews at 200 characters.
const previewLength = 200

// Source is an attribution entry: where an answer's supporting chunk came
// from, with a short preview.
type Source struct {
	ID         string            `json:"id"`
	Preview    string            `json:"content_preview"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	Similarity float64           `json:"similarity"`
}

// Result is the engine's answer envelope. Failures are reported here rather
// than as Go errors so every caller gets the same shape.
type Result struct {
	Status         Status   `json:"status"`
	Answer         string   `json:"answer,omitempty"`
	Error          string   `json:"error,omitempty"`
	Sources        []Source `json:"sources"`
	NumSources     int      `json:"num_sources"`
	ConversationID string   `json:"conversation_id,omitempty"`
}

func errorResult(msg string) *Result {
	return &Result{
		Status:  StatusError,
		Error:   msg,
		Sources: []Source{},
	}
}

// makePreview truncates content to previewLength runes, appending "..."
// only when something was cut.
func makePreview(content string) string {
	if utf8.RuneCountInString(content) <= previewLength {
		return content
	}
	runes := []rune(content)
	return string(runes[:previewLength]) + "..."
}

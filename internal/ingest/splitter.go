// Package ingest turns files, directories, and URLs into store-ready text
// chunks. Extraction is dispatched by file extension, then a recursive
// character splitter cuts the text into overlapping chunks.
package ingest

import (
	"strings"
	"unicode/utf8"
)

// Separators tried in order: paragraph, line, word, then raw characters.
var defaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter cuts text into chunks of at most chunkSize characters, with up to
// overlap characters shared between adjacent chunks. Sizes are measured in
// runes, not bytes.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter. chunkSize must be positive and overlap must
// be smaller than chunkSize; config validation enforces both.
func NewSplitter(chunkSize, overlap int) *Splitter {
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split cuts text into chunks. Whitespace-only input yields no chunks.
// Boundaries prefer the coarsest separator that keeps chunks under the size
// limit, so paragraphs survive intact when they fit.
func (s *Splitter) Split(text string) []string {
	raw := s.split(text, s.separators)

	chunks := make([]string, 0, len(raw))
	for _, c := range raw {
		c = strings.TrimSpace(c)
		if c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}

func (s *Splitter) split(text string, separators []string) []string {
	sep := ""
	var rest []string
	for i, candidate := range separators {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			rest = separators[i+1:]
			break
		}
	}

	if sep == "" {
		return s.hardSplit(text)
	}

	parts := strings.Split(text, sep)

	var chunks []string
	var pending []string
	flush := func() {
		if len(pending) > 0 {
			chunks = append(chunks, s.merge(pending, sep)...)
			pending = nil
		}
	}
	for _, part := range parts {
		if utf8.RuneCountInString(part) <= s.chunkSize {
			pending = append(pending, part)
			continue
		}
		// Oversized part needs a finer separator.
		flush()
		chunks = append(chunks, s.split(part, rest)...)
	}
	flush()
	return chunks
}

// merge greedily packs parts into chunks up to chunkSize, then carries the
// tail parts forward so adjacent chunks share up to overlap characters.
func (s *Splitter) merge(parts []string, sep string) []string {
	sepLen := utf8.RuneCountInString(sep)

	var chunks []string
	var window []string
	for _, part := range parts {
		partLen := utf8.RuneCountInString(part)
		if len(window) > 0 && joinedLen(window, sepLen)+sepLen+partLen > s.chunkSize {
			chunks = append(chunks, strings.Join(window, sep))
			for len(window) > 0 && (joinedLen(window, sepLen) > s.overlap ||
				joinedLen(window, sepLen)+sepLen+partLen > s.chunkSize) {
				window = window[1:]
			}
		}
		window = append(window, part)
	}
	if len(window) > 0 {
		chunks = append(chunks, strings.Join(window, sep))
	}
	return chunks
}

// hardSplit cuts at fixed offsets when no separator is usable.
func (s *Splitter) hardSplit(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	if step < 1 {
		step = s.chunkSize
	}

	var chunks []string
	for start := 0; start < len(runes); start += step {
		end := min(start+s.chunkSize, len(runes))
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}
	return chunks
}

func joinedLen(parts []string, sepLen int) int {
	n := 0
	for i, p := range parts {
		if i > 0 {
			n += sepLen
		}
		n += utf8.RuneCountInString(p)
	}
	return n
}

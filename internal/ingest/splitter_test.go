package ingest

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitShortText(t *testing.T) {
	s := NewSplitter(1000, 200)

	chunks := s.Split("a short document")
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != "a short document" {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestSplitWhitespaceOnly(t *testing.T) {
	s := NewSplitter(1000, 200)

	for _, text := range []string{"", "   ", "\n\n\n"} {
		if chunks := s.Split(text); len(chunks) != 0 {
			t.Errorf("Split(%q) = %d chunks, want 0", text, len(chunks))
		}
	}
}

func TestSplitPreservesParagraphs(t *testing.T) {
	s := NewSplitter(15, 3)

	chunks := s.Split("para one.\n\npara two.")
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2: %q", len(chunks), chunks)
	}
	if chunks[0] != "para one." || chunks[1] != "para two." {
		t.Errorf("chunks = %q", chunks)
	}
}

func TestSplitRespectsChunkSize(t *testing.T) {
	const size = 50

	var sb strings.Builder
	for i := 0; i < 200; i++ {
		sb.WriteString("lorem ipsum dolor sit amet ")
		if i%7 == 0 {
			sb.WriteString("\n\n")
		} else if i%3 == 0 {
			sb.WriteString("\n")
		}
	}

	s := NewSplitter(size, 10)
	chunks := s.Split(sb.String())
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > size {
			t.Errorf("chunk %d has %d runes, exceeds limit %d", i, n, size)
		}
		if c == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}
}

func TestSplitHardSplitWithoutSeparators(t *testing.T) {
	s := NewSplitter(1000, 200)

	chunks := s.Split(strings.Repeat("a", 2500))
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
	wantLens := []int{1000, 1000, 900}
	for i, c := range chunks {
		if len(c) != wantLens[i] {
			t.Errorf("chunk %d length = %d, want %d", i, len(c), wantLens[i])
		}
	}
}

func TestSplitOverlapSharesContent(t *testing.T) {
	words := make([]string, 40)
	for i := range words {
		words[i] = "word" + string(rune('a'+i%26))
	}
	text := strings.Join(words, " ")

	s := NewSplitter(60, 20)
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// Adjacent chunks share their boundary words.
	for i := 1; i < len(chunks); i++ {
		prevWords := strings.Fields(chunks[i-1])
		lastWord := prevWords[len(prevWords)-1]
		if !strings.Contains(chunks[i], lastWord) {
			t.Errorf("chunk %d does not overlap chunk %d: %q / %q", i, i-1, chunks[i-1], chunks[i])
		}
	}
}

func TestSplitUnicodeCountsRunes(t *testing.T) {
	s := NewSplitter(10, 0)

	chunks := s.Split(strings.Repeat("日", 25))
	for i, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 10 {
			t.Errorf("chunk %d has %d runes, want <= 10", i, n)
		}
	}
}

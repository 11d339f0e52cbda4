package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/siftlabs/sift/internal/log"
)

// ErrNoChunks is returned when a source produced no usable text.
var ErrNoChunks = errors.New("no chunks produced")

// DefaultPattern matches every file under a directory, recursively.
const DefaultPattern = "**/*"

// Chunk is one store-ready piece of text with its provenance metadata.
type Chunk struct {
	Content  string
	Metadata map[string]string
}

// Processor converts files, directories, and URLs into chunks.
type Processor struct {
	splitter *Splitter
	logger   log.Logger
}

// NewProcessor creates a processor with the given chunking parameters.
func NewProcessor(chunkSize, chunkOverlap int, logger log.Logger) *Processor {
	return &Processor{
		splitter: NewSplitter(chunkSize, chunkOverlap),
		logger:   logger,
	}
}

// ProcessFile extracts and splits a single file. The extension must be on
// the allow-list.
func (p *Processor) ProcessFile(path string) ([]Chunk, error) {
	ft, err := TypeForPath(path)
	if err != nil {
		return nil, err
	}

	text, err := extractFile(path, ft)
	if err != nil {
		return nil, err
	}

	chunks := p.toChunks(text, path, ft)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoChunks, path)
	}

	p.logger.Debug("file processed", "path", path, "type", ft, "chunks", len(chunks))
	return chunks, nil
}

// ProcessDirectory walks dir with a doublestar glob pattern and processes
// every matching file. Unsupported and unreadable files are logged and
// skipped; the walk never fails because of a single file.
func (p *Processor) ProcessDirectory(dir, pattern string) ([]Chunk, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	fsys := os.DirFS(dir)
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("globbing %q in %s: %w", pattern, dir, err)
	}

	var chunks []Chunk
	processed := 0
	for _, match := range matches {
		info, err := fs.Stat(fsys, match)
		if err != nil || info.IsDir() {
			continue
		}

		path := filepath.Join(dir, filepath.FromSlash(match))
		fileChunks, err := p.ProcessFile(path)
		if err != nil {
			if errors.Is(err, ErrUnsupportedType) {
				p.logger.Debug("skipping unsupported file", "path", path)
			} else {
				p.logger.Warn("skipping file", "path", path, "error", err)
			}
			continue
		}
		chunks = append(chunks, fileChunks...)
		processed++
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no processable files in %s", ErrNoChunks, dir)
	}

	p.logger.Info("directory processed", "dir", dir, "files", processed, "chunks", len(chunks))
	return chunks, nil
}

// ProcessURLs fetches each URL and splits its readable text. Failed URLs are
// logged and skipped. Returns an error only if every URL failed or the
// context was cancelled.
func (p *Processor) ProcessURLs(ctx context.Context, urls []string) ([]Chunk, error) {
	var chunks []Chunk
	fetched := 0
	for _, u := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		title, text, err := fetchURL(u)
		if err != nil {
			p.logger.Warn("skipping url", "url", u, "error", err)
			continue
		}

		urlChunks := p.toChunks(text, u, FileTypeURL)
		for i := range urlChunks {
			if title != "" {
				urlChunks[i].Metadata["title"] = title
			}
		}
		chunks = append(chunks, urlChunks...)
		fetched++
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: none of %d urls yielded content", ErrNoChunks, len(urls))
	}

	p.logger.Info("urls processed", "fetched", fetched, "total", len(urls), "chunks", len(chunks))
	return chunks, nil
}

// toChunks splits text and attaches provenance metadata to each piece.
func (p *Processor) toChunks(text, source string, ft FileType) []Chunk {
	pieces := p.splitter.Split(text)

	chunks := make([]Chunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, Chunk{
			Content: piece,
			Metadata: map[string]string{
				"source":       source,
				"file_type":    string(ft),
				"file_name":    filepath.Base(source),
				"chunk_id":     strconv.Itoa(i),
				"total_chunks": strconv.Itoa(len(pieces)),
				"chunk_size":   strconv.Itoa(utf8.RuneCountInString(piece)),
			},
		})
	}
	return chunks
}

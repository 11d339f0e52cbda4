package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	docx "github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for file extensions outside the allow-list.
var ErrUnsupportedType = errors.New("unsupported file type")

// FileType labels the extraction strategy for a file.
type FileType string

const (
	FileTypeText FileType = "text"
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeHTML FileType = "html"
	FileTypeURL  FileType = "url"
)

// typeByExtension is the ingestion allow-list. Code and data files are
// treated as plain text.
var typeByExtension = map[string]FileType{
	".txt":  FileTypeText,
	".md":   FileTypeText,
	".py":   FileTypeText,
	".js":   FileTypeText,
	".json": FileTypeText,
	".csv":  FileTypeText,
	".html": FileTypeHTML,
	".pdf":  FileTypePDF,
	".docx": FileTypeDOCX,
}

// SupportedExtensions returns the ingestable file extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(typeByExtension))
	for ext := range typeByExtension {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// TypeForPath maps a file path to its FileType by extension.
func TypeForPath(path string) (FileType, error) {
	ext := strings.ToLower(filepath.Ext(path))
	ft, ok := typeByExtension[ext]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
	return ft, nil
}

// extractFile reads a file and returns its plain text.
func extractFile(path string, ft FileType) (string, error) {
	switch ft {
	case FileTypeText:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading file: %w", err)
		}
		return string(data), nil
	case FileTypeHTML:
		return extractHTML(path)
	case FileTypePDF:
		return extractPDF(path)
	case FileTypeDOCX:
		return extractDOCX(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ft)
	}
}

// extractHTML strips markup and returns the visible text of a local HTML file.
func extractHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening html file: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	return doc.Find("body").Text(), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extracting pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return buf.String(), nil
}

func extractDOCX(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening docx: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("stat docx: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("parsing docx: %w", err)
	}

	var sb strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch item.(type) {
		case *docx.Paragraph, *docx.Table:
			fmt.Fprintln(&sb, item)
		}
	}
	return sb.String(), nil
}

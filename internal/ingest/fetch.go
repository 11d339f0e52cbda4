package ingest

import (
	"fmt"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

// fetchTimeout bounds each page download during URL ingestion.
const fetchTimeout = 30 * time.Second

// fetchURL downloads a page and extracts its readable article text,
// discarding navigation, ads, and boilerplate.
func fetchURL(pageURL string) (title, text string, err error) {
	article, err := readability.FromURL(pageURL, fetchTimeout)
	if err != nil {
		return "", "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}

	text = strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", "", fmt.Errorf("no readable content at %s", pageURL)
	}
	return article.Title, text, nil
}

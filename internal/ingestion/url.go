package ingestion

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-verifier/internal/fetch"
)

// IngestFromURL scrapes a page and returns its cleaned markdown
func IngestFromURL(ctx context.Context, scraper fetch.Scraper, urlStr string) (*Document, error) {
	if _, err := fetch.ValidateURL(urlStr); err != nil {
		return nil, err
	}

	markdown, err := scraper.Scrape(ctx, urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to scrape %s: %w", urlStr, err)
	}

	text := CleanText(markdown)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", urlStr, ErrEmptyDocument)
	}

	meta := NewMetadata(text, urlStr, FormatMarkdown)
	meta.Platform = string(fetch.DetectPlatform(urlStr))
	return &Document{Text: text, Metadata: meta}, nil
}

package fetch

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// TruncationMarker is appended to content cut at a length limit
const TruncationMarker = "... [TRUNCATED]"

// Scraper returns the markdown rendering of a public page.
// An empty string with a nil error means the page had no readable content.
type Scraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// ScraperFunc adapts a function to Scraper
type ScraperFunc func(ctx context.Context, url string) (string, error)

func (f ScraperFunc) Scrape(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// ScraperConfig selects and configures a scraper
type ScraperConfig struct {
	FirecrawlAPIKey  string
	FirecrawlBaseURL string
	Timeout          time.Duration
	// Browser enables the headless fallback of the direct scraper
	Browser bool
}

// NewScraper returns a Firecrawl scraper when an API key is configured, otherwise a direct scraper
func NewScraper(cfg ScraperConfig, logger *zap.Logger) Scraper {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if cfg.FirecrawlAPIKey != "" {
		logger.Debug("using firecrawl scraper")
		return NewFirecrawlScraper(cfg.FirecrawlAPIKey, cfg.FirecrawlBaseURL, timeout)
	}

	s := NewDirectScraper(&Options{Timeout: timeout, UserAgent: DefaultUserAgent}, logger)
	if cfg.Browser {
		s.Render = BrowserRenderer(timeout, logger)
	}
	return s
}

// DirectScraper fetches pages over HTTP and converts them to markdown,
// falling back to a headless browser for pages that render client-side.
type DirectScraper struct {
	Options *Options
	// Render is the optional browser fallback
	Render RenderFunc
	logger *zap.Logger
}

// NewDirectScraper creates a DirectScraper without a browser fallback
func NewDirectScraper(opts *Options, logger *zap.Logger) *DirectScraper {
	if opts == nil {
		opts = DefaultOptions()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectScraper{Options: opts, logger: logger}
}

// Scrape implements Scraper
func (s *DirectScraper) Scrape(ctx context.Context, rawURL string) (string, error) {
	base, err := ValidateURL(rawURL)
	if err != nil {
		return "", err
	}
	platform := DetectPlatform(rawURL)

	res, err := URL(ctx, rawURL, s.Options)
	if err != nil {
		return "", err
	}

	if ct := strings.ToLower(res.ContentType); ct != "" && !strings.Contains(ct, "html") {
		return strings.TrimSpace(res.HTML), nil
	}

	md, err := HTMLToMarkdown(res.HTML, base, ContentSelectors(platform), NoiseSelectors(platform)...)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to convert page", Cause: err}
	}

	if s.Render != nil && ShouldUseBrowser(md) {
		s.logger.Debug("page content is short, rendering in browser",
			zap.String("url", rawURL), zap.Int("chars", len(md)))
		html, rerr := s.Render(ctx, rawURL)
		if rerr != nil {
			s.logger.Warn("browser fallback failed", zap.String("url", rawURL), zap.Error(rerr))
			return md, nil
		}
		rendered, cerr := HTMLToMarkdown(html, base, ContentSelectors(platform), NoiseSelectors(platform)...)
		if cerr == nil && len(rendered) > len(md) {
			md = rendered
		}
	}
	return md, nil
}

// Truncate cuts content to limit characters and appends TruncationMarker when it was longer
func Truncate(content string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(content) <= limit {
		return content
	}
	runes := []rune(content)
	return string(runes[:limit]) + TruncationMarker
}

package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultFirecrawlBaseURL is the hosted Firecrawl API
const DefaultFirecrawlBaseURL = "https://api.firecrawl.dev"

// FirecrawlScraper scrapes pages through the Firecrawl /v1/scrape endpoint
type FirecrawlScraper struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewFirecrawlScraper creates a Firecrawl client. An empty baseURL uses the hosted API.
func NewFirecrawlScraper(apiKey, baseURL string, timeout time.Duration) *FirecrawlScraper {
	if baseURL == "" {
		baseURL = DefaultFirecrawlBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &FirecrawlScraper{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type firecrawlRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

type firecrawlResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    struct {
		Markdown string `json:"markdown"`
	} `json:"data"`
}

// Scrape implements Scraper
func (f *FirecrawlScraper) Scrape(ctx context.Context, rawURL string) (string, error) {
	if _, err := ValidateURL(rawURL); err != nil {
		return "", err
	}

	body, err := json.Marshal(firecrawlRequest{
		URL:             rawURL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to encode scrape request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+f.apiKey)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &Error{URL: rawURL, Message: "scrape request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &Error{URL: rawURL, Message: "failed to read scrape response", Cause: err}
	}

	var out firecrawlResponse
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("firecrawl returned HTTP %d", resp.StatusCode)
		if decodeErr == nil && out.Error != "" {
			msg += ": " + out.Error
		}
		return "", &Error{URL: rawURL, Message: msg, StatusCode: resp.StatusCode}
	}
	if decodeErr != nil {
		return "", &Error{URL: rawURL, Message: "failed to decode scrape response", Cause: decodeErr}
	}
	if !out.Success {
		return "", &Error{URL: rawURL, Message: "firecrawl scrape failed: " + out.Error}
	}
	return strings.TrimSpace(out.Data.Markdown), nil
}

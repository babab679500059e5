package config

import (
	"github.com/jonathan/resume-verifier/internal/fetch"
	"github.com/jonathan/resume-verifier/internal/llm"
)

// ModelConfig returns the provider defaults with any configured model overrides applied
func (c LLMConfig) ModelConfig() *llm.Config {
	mc := llm.ConfigFor(llm.Provider(c.Provider))
	mc.BaseURL = c.BaseURL
	for tier, model := range c.Models {
		if model != "" {
			mc = mc.WithModel(llm.ModelTier(tier), model)
		}
	}
	return mc
}

// ExtractorOptions maps the retry, timeout, rate limit and breaker settings onto the extraction client
func (c LLMConfig) ExtractorOptions() []llm.ExtractorOption {
	policy := llm.DefaultRetryPolicy()
	policy.MaxRetries = c.MaxRetries

	opts := []llm.ExtractorOption{
		llm.WithRetryPolicy(policy),
		llm.WithAttemptTimeout(c.Timeout),
		llm.WithRateLimit(c.RateLimit, c.Burst),
	}
	if cb := c.CircuitBreaker; cb.Enabled {
		opts = append(opts, llm.WithCircuitBreaker(llm.BreakerSettings{
			Enabled:          true,
			MaxRequests:      cb.MaxRequests,
			Interval:         cb.Interval,
			Timeout:          cb.Timeout,
			MinRequests:      cb.MinRequests,
			FailureThreshold: cb.FailureThreshold,
		}))
	}
	return opts
}

// ScraperSettings returns the scraper selection for fetch.NewScraper
func (c ScraperConfig) ScraperSettings() fetch.ScraperConfig {
	return fetch.ScraperConfig{
		FirecrawlAPIKey:  c.FirecrawlAPIKey,
		FirecrawlBaseURL: c.FirecrawlBaseURL,
		Timeout:          c.Timeout,
		Browser:          c.Browser,
	}
}

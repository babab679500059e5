// Package config loads the CLI configuration from an optional file, the environment and Vault.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/linkedin"
)

// EnvPrefix prefixes every environment override, e.g. RV_LLM_PROVIDER
const EnvPrefix = "RV"

// Config holds all CLI configuration.
// Precedence: CLI flags, environment, config file, defaults. Vault fills credentials that are still empty.
type Config struct {
	LLM         LLMConfig      `mapstructure:"llm" json:"llm"`
	Scraper     ScraperConfig  `mapstructure:"scraper" json:"scraper"`
	LinkedIn    LinkedInConfig `mapstructure:"linkedin" json:"linkedin"`
	GitHub      GitHubConfig   `mapstructure:"github" json:"github"`
	Log         LogConfig      `mapstructure:"log" json:"log"`
	Vault       VaultConfig    `mapstructure:"vault" json:"vault"`
	Metrics     MetricsConfig  `mapstructure:"metrics" json:"metrics"`
	Tracing     TracingConfig  `mapstructure:"tracing" json:"tracing"`
	DatabaseURL string         `mapstructure:"databaseUrl" json:"-"`
}

// LLMConfig configures the provider and the extraction client
type LLMConfig struct {
	Provider string            `mapstructure:"provider" json:"provider" validate:"oneof=gemini openai"`
	APIKey   string            `mapstructure:"apiKey" json:"-"`
	BaseURL  string            `mapstructure:"baseUrl" json:"baseUrl,omitempty" validate:"omitempty,url"`
	Models   map[string]string `mapstructure:"models" json:"models,omitempty"`

	Timeout    time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
	MaxRetries int           `mapstructure:"maxRetries" json:"maxRetries" validate:"gte=0,lte=10"`
	RateLimit  float64       `mapstructure:"rateLimit" json:"rateLimit" validate:"gte=0"`
	Burst      int           `mapstructure:"burst" json:"burst" validate:"gte=0"`

	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuitBreaker" json:"circuitBreaker"`
}

// CircuitBreakerConfig configures the breaker in front of the provider
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled" json:"enabled"`
	MaxRequests      uint32        `mapstructure:"maxRequests" json:"maxRequests"`
	Interval         time.Duration `mapstructure:"interval" json:"interval" validate:"gte=0"`
	Timeout          time.Duration `mapstructure:"timeout" json:"timeout" validate:"gte=0"`
	MinRequests      uint32        `mapstructure:"minRequests" json:"minRequests"`
	FailureThreshold float64       `mapstructure:"failureThreshold" json:"failureThreshold" validate:"gte=0,lte=1"`
}

// ScraperConfig configures page scraping
type ScraperConfig struct {
	FirecrawlAPIKey  string        `mapstructure:"firecrawlApiKey" json:"-"`
	FirecrawlBaseURL string        `mapstructure:"firecrawlBaseUrl" json:"firecrawlBaseUrl,omitempty" validate:"omitempty,url"`
	Timeout          time.Duration `mapstructure:"timeout" json:"timeout" validate:"gt=0"`
	Browser          bool          `mapstructure:"browser" json:"browser"`
}

// LinkedInConfig configures the LinkedIn pipeline
type LinkedInConfig struct {
	Weights linkedin.Weights `mapstructure:"weights" json:"weights"`
}

// GitHubConfig configures the GitHub pipeline
type GitHubConfig struct {
	Concurrency int `mapstructure:"concurrency" json:"concurrency" validate:"gte=1,lte=32"`
}

// LogConfig configures the process logger
type LogConfig struct {
	JSON  bool `mapstructure:"json" json:"json"`
	Debug bool `mapstructure:"debug" json:"debug"`
}

// MetricsConfig configures metric collection
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Addr    string `mapstructure:"addr" json:"addr" validate:"required_if=Enabled true"`
}

// TracingConfig configures span export
type TracingConfig struct {
	Enabled    bool    `mapstructure:"enabled" json:"enabled"`
	Exporter   string  `mapstructure:"exporter" json:"exporter" validate:"oneof=stdout otlp"`
	Endpoint   string  `mapstructure:"endpoint" json:"endpoint,omitempty" validate:"omitempty,url"`
	SampleRate float64 `mapstructure:"sampleRate" json:"sampleRate" validate:"gte=0,lte=1"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		LLM: LLMConfig{
			Provider:   "gemini",
			Timeout:    60 * time.Second,
			MaxRetries: 3,
			RateLimit:  2,
			Burst:      4,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				MaxRequests:      1,
				Interval:         60 * time.Second,
				Timeout:          30 * time.Second,
				MinRequests:      5,
				FailureThreshold: 0.5,
			},
		},
		Scraper: ScraperConfig{
			Timeout: 30 * time.Second,
			Browser: true,
		},
		LinkedIn: LinkedInConfig{Weights: linkedin.DefaultWeights()},
		GitHub:   GitHubConfig{Concurrency: 4},
		Metrics: MetricsConfig{Addr: ":9464"},
		Tracing: TracingConfig{
			Exporter:   "stdout",
			SampleRate: 1,
		},
		Vault: VaultConfig{
			SecretPath: "secret/data/resume-verifier",
		},
	}
}

// setDefaults registers every key so that environment overrides are visible to AllSettings
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("llm.provider", d.LLM.Provider)
	v.SetDefault("llm.apiKey", "")
	v.SetDefault("llm.baseUrl", "")
	v.SetDefault("llm.models.lite", "")
	v.SetDefault("llm.models.standard", "")
	v.SetDefault("llm.models.advanced", "")
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.maxRetries", d.LLM.MaxRetries)
	v.SetDefault("llm.rateLimit", d.LLM.RateLimit)
	v.SetDefault("llm.burst", d.LLM.Burst)

	v.SetDefault("llm.circuitBreaker.enabled", d.LLM.CircuitBreaker.Enabled)
	v.SetDefault("llm.circuitBreaker.maxRequests", d.LLM.CircuitBreaker.MaxRequests)
	v.SetDefault("llm.circuitBreaker.interval", d.LLM.CircuitBreaker.Interval)
	v.SetDefault("llm.circuitBreaker.timeout", d.LLM.CircuitBreaker.Timeout)
	v.SetDefault("llm.circuitBreaker.minRequests", d.LLM.CircuitBreaker.MinRequests)
	v.SetDefault("llm.circuitBreaker.failureThreshold", d.LLM.CircuitBreaker.FailureThreshold)

	v.SetDefault("scraper.firecrawlApiKey", "")
	v.SetDefault("scraper.firecrawlBaseUrl", "")
	v.SetDefault("scraper.timeout", d.Scraper.Timeout)
	v.SetDefault("scraper.browser", d.Scraper.Browser)

	w := d.LinkedIn.Weights
	v.SetDefault("linkedin.weights.experience", w.Experience)
	v.SetDefault("linkedin.weights.education", w.Education)
	v.SetDefault("linkedin.weights.skills", w.Skills)
	v.SetDefault("linkedin.weights.identity", w.Identity)
	v.SetDefault("linkedin.weights.summary", w.Summary)
	v.SetDefault("linkedin.weights.contact", w.Contact)

	v.SetDefault("github.concurrency", d.GitHub.Concurrency)
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.sampleRate", d.Tracing.SampleRate)
	v.SetDefault("databaseUrl", "")

	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secretPath", d.Vault.SecretPath)
}

// Load reads configuration from path, or from config.{yaml,json} in the working directory
// and $HOME/.resume-verifier when path is empty, then applies RV_ environment overrides
// and the conventional credential variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperr.Wrap(apperr.KindConfig, "config.Load", "failed to read config file "+path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.resume-verifier")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, apperr.Wrap(apperr.KindConfig, "config.Load", "failed to read config file", err)
			}
		}
	}

	cfg, err := decode(v.AllSettings())
	if err != nil {
		return nil, err
	}
	cfg.applyEnvFallbacks(os.Getenv)
	return cfg, nil
}

func decode(settings map[string]any) (*Config, error) {
	var cfg Config
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "config.decode", "failed to build decoder", err)
	}
	if err := dec.Decode(settings); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "config.decode", "failed to decode configuration", err)
	}
	return &cfg, nil
}

// applyEnvFallbacks fills credentials from the provider's conventional variables
func (c *Config) applyEnvFallbacks(getenv func(string) string) {
	if c.LLM.APIKey == "" {
		switch c.LLM.Provider {
		case "openai":
			c.LLM.APIKey = getenv("OPENAI_API_KEY")
		default:
			c.LLM.APIKey = getenv("GEMINI_API_KEY")
		}
	}
	if c.Scraper.FirecrawlAPIKey == "" {
		c.Scraper.FirecrawlAPIKey = getenv("FIRECRAWL_API_KEY")
	}
	if c.Scraper.FirecrawlBaseURL == "" {
		c.Scraper.FirecrawlBaseURL = getenv("FIRECRAWL_BASE_URL")
	}
	if c.DatabaseURL == "" {
		c.DatabaseURL = getenv("DATABASE_URL")
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks value ranges. Credentials are checked by the commands that need them.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return apperr.Config("config.Validate", fmt.Sprintf("invalid value for %s: failed %q", fe.Namespace(), fe.Tag()))
		}
		return apperr.Wrap(apperr.KindConfig, "config.Validate", "invalid configuration", err)
	}
	if err := c.LinkedIn.Weights.Validate(); err != nil {
		return err
	}
	if c.Vault.Enabled && c.Vault.SecretPath == "" {
		return apperr.Config("config.Validate", "vault.secretPath is required when vault is enabled")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.LLM.Provider == "" {
		result.LLM.Provider = defaults.LLM.Provider
	}
	if result.LLM.APIKey == "" {
		result.LLM.APIKey = defaults.LLM.APIKey
	}
	if result.LLM.Timeout == 0 {
		result.LLM.Timeout = defaults.LLM.Timeout
	}
	if result.LLM.MaxRetries == 0 {
		result.LLM.MaxRetries = defaults.LLM.MaxRetries
	}
	if result.Scraper.FirecrawlAPIKey == "" {
		result.Scraper.FirecrawlAPIKey = defaults.Scraper.FirecrawlAPIKey
	}
	if result.Scraper.Timeout == 0 {
		result.Scraper.Timeout = defaults.Scraper.Timeout
	}
	if result.GitHub.Concurrency == 0 {
		result.GitHub.Concurrency = defaults.GitHub.Concurrency
	}
	if result.LinkedIn.Weights.Sum() == 0 {
		result.LinkedIn.Weights = defaults.LinkedIn.Weights
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// bools cannot distinguish unset from false, so they are not merged

	return result
}

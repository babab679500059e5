package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/vault/api"
	"go.uber.org/zap"

	"github.com/jonathan/resume-verifier/internal/apperr"
	"github.com/jonathan/resume-verifier/internal/logger"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled" json:"enabled"`
	Address   string `mapstructure:"address" json:"address,omitempty" validate:"omitempty,url"`
	Token     string `mapstructure:"token" json:"-"`
	TokenFile string `mapstructure:"tokenFile" json:"tokenFile,omitempty"`
	Namespace string `mapstructure:"namespace" json:"namespace,omitempty"`
	// SecretPath is the KVv2 data path holding the credentials, e.g. secret/data/resume-verifier
	SecretPath string `mapstructure:"secretPath" json:"secretPath"`
}

// Keys read from the Vault secret
const (
	VaultKeyGemini    = "gemini_api_key"
	VaultKeyOpenAI    = "openai_api_key"
	VaultKeyFirecrawl = "firecrawl_api_key"
	VaultKeyDatabase  = "database_url"
)

// SecretReader reads a Vault path. *api.Logical satisfies it.
type SecretReader interface {
	ReadWithContext(ctx context.Context, path string) (*api.Secret, error)
}

// NewVaultReader connects to Vault and returns its logical backend. It returns nil when Vault is disabled.
func NewVaultReader(cfg VaultConfig, l *zap.Logger) (SecretReader, error) {
	l = logger.OrNop(l)
	if !cfg.Enabled {
		l.Debug("vault integration disabled")
		return nil, nil
	}

	vaultConfig := api.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}
	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "config.NewVaultReader", "failed to create vault client", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	l.Debug("vault client configured",
		zap.String("address", vaultConfig.Address),
		zap.String("namespace", cfg.Namespace))
	return client.Logical(), nil
}

func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		data, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", apperr.Wrap(apperr.KindConfig, "config.resolveVaultToken", "failed to read vault token file", err)
		}
		token = strings.TrimSpace(string(data))
	}
	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}
	if token == "" {
		return "", apperr.Config("config.resolveVaultToken", "vault token is required when vault is enabled")
	}
	return token, nil
}

// ReadKV2 reads a KVv2 secret and returns its data map
func ReadKV2(ctx context.Context, r SecretReader, path string) (map[string]any, error) {
	secret, err := r.ReadWithContext(ctx, path)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "config.ReadKV2", "failed to read secret from "+path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, apperr.Config("config.ReadKV2", "secret not found at path: "+path)
	}
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, apperr.Config("config.ReadKV2", fmt.Sprintf("secret at %s is not in KVv2 format (missing 'data' field)", path))
	}
	return data, nil
}

// ApplyVaultSecrets fills credentials that are still empty from the configured Vault secret.
// A nil reader leaves cfg untouched.
func ApplyVaultSecrets(ctx context.Context, cfg *Config, r SecretReader, l *zap.Logger) error {
	if r == nil {
		return nil
	}
	l = logger.OrNop(l)

	data, err := ReadKV2(ctx, r, cfg.Vault.SecretPath)
	if err != nil {
		return err
	}

	providerKey := VaultKeyGemini
	if cfg.LLM.Provider == "openai" {
		providerKey = VaultKeyOpenAI
	}

	applied := 0
	for key, target := range map[string]*string{
		providerKey:       &cfg.LLM.APIKey,
		VaultKeyFirecrawl: &cfg.Scraper.FirecrawlAPIKey,
		VaultKeyDatabase:  &cfg.DatabaseURL,
	} {
		if *target != "" {
			continue
		}
		value, ok := data[key].(string)
		if !ok || value == "" {
			continue
		}
		*target = value
		applied++
		l.Debug("credential loaded from vault", zap.String("key", key), zap.String("value", mask(value)))
	}

	l.Info("applied vault secrets", zap.String("path", cfg.Vault.SecretPath), zap.Int("applied", applied))
	return nil
}

func mask(s string) string {
	if len(s) > 8 {
		return s[:4] + "****" + s[len(s)-4:]
	}
	return "****"
}

package config

import (
	"fmt"
	"os"
	"strings"

	"jobsniper/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	// Secret paths
	Secrets VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets defines where to find secrets in Vault
type VaultSecrets struct {
	// APIKeys points at a KV v2 secret expected to carry the provider
	// keys under "gemini_api_key" / "mistral_api_key" and optionally a
	// comma-separated "server_api_keys" list for HTTP authentication.
	APIKeys string `mapstructure:"apiKeys"`
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// NewVaultClient creates a new Vault client from configuration.
// Returns (nil, nil) when Vault integration is disabled.
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		if logger != nil {
			logger.Debug("Vault integration disabled")
		}
		return nil, nil
	}

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}

	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	return &VaultClient{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// resolveVaultToken resolves the Vault token from config or file
func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token

	if token == "" && config.TokenFile != "" {
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}

	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}

	return token, nil
}

// GetSecretData reads a KV v2 secret and returns its data map
func (vc *VaultClient) GetSecretData(path string) (map[string]any, error) {
	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret at %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("no secret found at %s", path)
	}

	// KV v2 nests the payload under "data"
	if data, ok := secret.Data["data"].(map[string]any); ok {
		return data, nil
	}
	return secret.Data, nil
}

// GetStringSecret reads a single string value from a KV v2 secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	data, err := vc.GetSecretData(path)
	if err != nil {
		return "", err
	}

	value, ok := data[key].(string)
	if !ok {
		return "", fmt.Errorf("key %s not found or not a string at %s", key, path)
	}
	return value, nil
}

// ApplyVaultSecrets loads provider and server API keys from Vault and
// applies them to the configuration. Vault values take precedence over
// file and environment values. A missing individual key is not fatal;
// the corresponding provider just stays unconfigured.
func ApplyVaultSecrets(config *Config, logger *errors.Logger) error {
	if !config.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client: %w", err)
	}
	if client == nil {
		return nil
	}

	path := config.Vault.Secrets.APIKeys
	if path == "" {
		return nil
	}

	data, err := client.GetSecretData(path)
	if err != nil {
		return fmt.Errorf("failed to load API keys from vault: %w", err)
	}

	if key, ok := data["gemini_api_key"].(string); ok && key != "" {
		config.AI.Gemini.APIKey = key
		logger.Debug("Loaded Gemini API key from Vault", "path", path)
	}
	if key, ok := data["mistral_api_key"].(string); ok && key != "" {
		config.AI.Mistral.APIKey = key
		logger.Debug("Loaded Mistral API key from Vault", "path", path)
	}
	if keys, ok := data["server_api_keys"].(string); ok && keys != "" {
		parsed := make([]string, 0)
		for _, k := range strings.Split(keys, ",") {
			if trimmed := strings.TrimSpace(k); trimmed != "" {
				parsed = append(parsed, trimmed)
			}
		}
		if len(parsed) > 0 {
			config.Server.APIKeys = parsed
			logger.Debug("Loaded server API keys from Vault", "path", path, "count", len(parsed))
		}
	}

	return nil
}

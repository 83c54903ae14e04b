package secrets

import (
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// defaultVaultTimeout bounds the blocking read performed during startup so
// an unreachable Vault cannot stall the process indefinitely.
const defaultVaultTimeout = 10 * time.Second

// VaultConfig holds configuration for connecting to HashiCorp Vault.
type VaultConfig struct {
	Address        string `yaml:"address"`
	Token          string `yaml:"token"`
	Path           string `yaml:"path"`
	Namespace      string `yaml:"namespace,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// Validate checks if the VaultConfig has all required fields set.
func (v VaultConfig) Validate() error {
	if v.Address == "" {
		return errors.New("Vault address is required")
	}
	if v.Token == "" {
		return errors.New("Vault token is required")
	}
	if v.Path == "" {
		return errors.New("Vault path is required")
	}
	return nil
}

// Timeout returns the configured client timeout, or the default bound.
func (v VaultConfig) Timeout() time.Duration {
	if v.TimeoutSeconds > 0 {
		return time.Duration(v.TimeoutSeconds) * time.Second
	}
	return defaultVaultTimeout
}

// CreateClient creates and configures a Vault API client from this config.
func (v VaultConfig) CreateClient() (*api.Client, error) {
	if err := v.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid Vault configuration")
	}

	cfg := api.DefaultConfig()
	cfg.Address = v.Address

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Vault client")
	}

	client.SetToken(v.Token)
	client.SetClientTimeout(v.Timeout())
	if v.Namespace != "" {
		client.SetNamespace(v.Namespace)
	}

	return client, nil
}

// VaultResolver retrieves secrets from HashiCorp Vault. Both KV v1 and
// KV v2 secret engines are supported; the path is fixed at construction
// time and the key selects a field within the stored secret.
type VaultResolver struct {
	logical *api.Logical
	path    string
}

// NewVaultResolver creates a resolver reading from the given Vault path
// (for example "secret/data/transcript-api").
func NewVaultResolver(client *api.Client, path string) *VaultResolver {
	return &VaultResolver{
		logical: client.Logical(),
		path:    path,
	}
}

// Resolve retrieves a single field from the secret stored at the path.
func (v *VaultResolver) Resolve(key string) (string, error) {
	secret, err := v.logical.Read(v.path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read secret from Vault path %q", v.path)
	}
	if secret == nil || secret.Data == nil {
		return "", errors.Errorf("no secret found at Vault path %q", v.path)
	}

	data, err := extractKVData(secret.Data)
	if err != nil {
		return "", errors.Wrapf(err, "unexpected secret format at Vault path %q", v.path)
	}

	value, ok := data[key].(string)
	if !ok {
		return "", errors.Errorf("secret %q not found in Vault at path %q", key, v.path)
	}

	log.Debug().Str("key", key).Str("vault_path", v.path).Msg("Retrieved secret from Vault")
	return value, nil
}

// Name returns the resolver name.
func (v *VaultResolver) Name() string {
	return "Vault"
}

// extractKVData normalizes KV v1 and KV v2 payloads. KV v2 nests the
// key-value pairs under a "data" field.
func extractKVData(raw map[string]interface{}) (map[string]interface{}, error) {
	nested, present := raw["data"]
	if !present || nested == nil {
		return raw, nil
	}
	data, ok := nested.(map[string]interface{})
	if !ok {
		return nil, errors.New("KV v2 data field is not a map")
	}
	return data, nil
}

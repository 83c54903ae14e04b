// Package config provides configuration management for the transcript API
// service. Configuration is read from a YAML file (or built from defaults
// when none is given) and every string field may reference secrets through
// ${prefix:key} properties resolved against the secrets registry.
package config

import (
	"net"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/yttools/transcript-api/pkg/secrets"
)

const (
	defaultPort         = "8000"
	defaultMountPath    = "/api"
	defaultSecretName   = "youtube_api_key"
	defaultEnvVar       = "YOUTUBE_API_KEY"
	defaultSettingsFile = "settings.json"
)

type (
	// Config holds the full configuration for the service: the HTTP server,
	// the optional secret store backends, the API key resolution settings
	// and the controller bindings.
	Config struct {
		Server      ServerConfig         `yaml:"server"`
		Vault       *secrets.VaultConfig `yaml:"vault,omitempty"`
		AWS         *secrets.AWSConfig   `yaml:"aws,omitempty"`
		FileSecrets *secrets.FileConfig  `yaml:"file_secrets,omitempty"`
		APIKey      APIKeyConfig         `yaml:"api_key"`
		Controllers ControllerBindings   `yaml:"controllers"`
	}

	// ServerConfig holds the core HTTP server parameters.
	ServerConfig struct {
		Address string     `yaml:"address"`
		CORS    CORSConfig `yaml:"cors"`
	}

	// CORSConfig controls cross-origin request handling. The default allows
	// any origin without credentials.
	CORSConfig struct {
		AllowOrigins     []string `yaml:"allow_origins,omitempty"`
		AllowCredentials bool     `yaml:"allow_credentials,omitempty"`
	}

	// APIKeyConfig names the locations probed by the API key resolution
	// chain: the secret key in the remote store, the environment variable
	// and the local settings file field.
	APIKeyConfig struct {
		SecretName   string `yaml:"secret_name"`
		EnvVar       string `yaml:"env_var"`
		SettingsFile string `yaml:"settings_file"`
	}

	// ControllerBinding represents the configuration for a single controller
	// instance. The Config section is kept as raw YAML so each controller
	// type unmarshals its own settings.
	ControllerBinding struct {
		TypeName string    `yaml:"type"`
		Name     string    `yaml:"name,omitempty"`
		Config   RawConfig `yaml:"config"`
	}

	ControllerBindings []ControllerBinding

	// RawConfig holds an unparsed YAML subtree.
	RawConfig []byte
)

// Validatable is implemented by every config section.
type Validatable interface {
	Validate() error
}

// Validate checks if the ServerConfig has all required fields set.
func (c ServerConfig) Validate() error {
	if c.Address == "" {
		return errors.New("address must be set and non-empty")
	}
	if _, err := net.ResolveTCPAddr("tcp", c.Address); err != nil {
		return errors.Wrap(err, "invalid address")
	}
	return c.CORS.Validate()
}

// Validate rejects the credentialed wildcard combination, which browsers
// refuse and gin-contrib/cors treats as a configuration error.
func (c CORSConfig) Validate() error {
	if !c.AllowCredentials {
		return nil
	}
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			return errors.New("allow_credentials cannot be combined with a wildcard origin")
		}
	}
	return nil
}

// AllowAll reports whether the config permits any origin. An empty origin
// list defaults to allow-all.
func (c CORSConfig) AllowAll() bool {
	if len(c.AllowOrigins) == 0 {
		return true
	}
	for _, origin := range c.AllowOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// Validate is a no-op; every APIKeyConfig field has a default.
func (c APIKeyConfig) Validate() error {
	return nil
}

// applyDefaults fills in the standard probe locations.
func (c *APIKeyConfig) applyDefaults() {
	if c.SecretName == "" {
		c.SecretName = defaultSecretName
	}
	if c.EnvVar == "" {
		c.EnvVar = defaultEnvVar
	}
	if c.SettingsFile == "" {
		c.SettingsFile = defaultSettingsFile
	}
}

// Validate checks every binding in the list.
func (c ControllerBindings) Validate() error {
	var validationErrors []error
	for i, binding := range c {
		if err := binding.Validate(); err != nil {
			validationErrors = append(validationErrors, errors.Wrapf(err, "controller binding at index %d is invalid", i))
		}
	}
	if len(validationErrors) > 0 {
		return errors.Errorf("configuration validation failed: %v", validationErrors)
	}
	return nil
}

// Validate checks if the ControllerBinding has all required fields set.
// Name is optional and auto-generated when absent.
func (c ControllerBinding) Validate() error {
	if c.TypeName == "" {
		return errors.New("controller type must be set and non-empty")
	}
	return nil
}

// Read parses the YAML configuration file. No expansion or validation
// happens here; callers register secret backends first and then call Load.
func Read(file string) (*Config, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %q", file)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %q", file)
	}
	return &cfg, nil
}

// Default builds the configuration used when no config file is given: the
// listener address comes from the PORT environment variable (8000 when
// unset), CORS allows any origin and the health and docs controllers are
// mounted under /api.
func Default() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	return &Config{
		Server: ServerConfig{
			Address: ":" + port,
			CORS:    CORSConfig{AllowOrigins: []string{"*"}},
		},
		Controllers: ControllerBindings{
			{TypeName: "health", Config: RawConfig("path: " + defaultMountPath + "\n")},
			{TypeName: "docs", Config: RawConfig("path: " + defaultMountPath + "\n")},
		},
	}
}

// Load expands secret properties in the server and API key sections and
// validates the result. The Vault and AWS sections are expanded separately
// by the caller before their backends are registered, since expansion of
// the rest of the tree may depend on those backends.
func (cfg *Config) Load() error {
	cfg.APIKey.applyDefaults()

	if err := ExpandStruct(&cfg.Server); err != nil {
		return errors.Wrap(err, "failed to expand server configuration")
	}
	if err := ExpandStruct(&cfg.APIKey); err != nil {
		return errors.Wrap(err, "failed to expand api_key configuration")
	}

	if err := cfg.Server.Validate(); err != nil {
		return errors.Wrap(err, "server configuration is invalid")
	}
	return cfg.Controllers.Validate()
}

// UnmarshalYAML implements yaml.Unmarshaler by marshalling the node back
// into raw YAML for later, type-aware unmarshalling.
func (c *RawConfig) UnmarshalYAML(value *yaml.Node) error {
	out, err := yaml.Marshal(value)
	if err != nil {
		return err
	}
	*c = out
	return nil
}

// To unmarshals a raw controller config into a new T, expands its secret
// properties and validates it.
func To[T Validatable](c RawConfig) (*T, error) {
	var result T
	if c != nil {
		if err := yaml.Unmarshal(c, &result); err != nil {
			return nil, errors.Wrap(err, "failed to parse controller config")
		}
	}

	if err := ExpandStruct(&result); err != nil {
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, errors.Wrap(err, "controller config is invalid")
	}
	return &result, nil
}

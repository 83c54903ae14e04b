package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

// TestRead_Success tests parsing a valid config file
func TestRead_Success(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":9090"
vault:
  address: "http://127.0.0.1:8200"
  token: "root"
  path: "secret/data/transcript-api"
api_key:
  env_var: MY_API_KEY
controllers:
  - type: health
    config:
      path: /api
  - type: docs
    name: api-docs
    config:
      path: /api
      title: Test API
`)

	cfg, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Errorf("Expected address ':9090', got '%s'", cfg.Server.Address)
	}
	if cfg.Vault == nil || cfg.Vault.Address != "http://127.0.0.1:8200" {
		t.Errorf("Unexpected vault config: %+v", cfg.Vault)
	}
	if cfg.APIKey.EnvVar != "MY_API_KEY" {
		t.Errorf("Expected env var 'MY_API_KEY', got '%s'", cfg.APIKey.EnvVar)
	}
	if len(cfg.Controllers) != 2 {
		t.Fatalf("Expected 2 controller bindings, got %d", len(cfg.Controllers))
	}
	if cfg.Controllers[1].Name != "api-docs" {
		t.Errorf("Expected binding name 'api-docs', got '%s'", cfg.Controllers[1].Name)
	}
}

// TestRead_MissingFile tests reading a nonexistent file
func TestRead_MissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

// TestRead_MalformedYAML tests reading an unparseable file
func TestRead_MalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not: valid")
	if _, err := Read(path); err == nil {
		t.Fatal("Expected error for malformed YAML")
	}
}

// TestDefault tests the configuration used without a config file
func TestDefault(t *testing.T) {
	t.Setenv("PORT", "")

	cfg := Default()
	if cfg.Server.Address != ":8000" {
		t.Errorf("Expected address ':8000', got '%s'", cfg.Server.Address)
	}
	if !cfg.Server.CORS.AllowAll() {
		t.Error("Expected default CORS to allow all origins")
	}
	if len(cfg.Controllers) != 2 {
		t.Fatalf("Expected 2 default controller bindings, got %d", len(cfg.Controllers))
	}

	if err := cfg.Load(); err != nil {
		t.Fatalf("Load failed for default config: %v", err)
	}
}

// TestDefault_PortFromEnv tests the PORT environment variable
func TestDefault_PortFromEnv(t *testing.T) {
	t.Setenv("PORT", "9999")

	cfg := Default()
	if cfg.Server.Address != ":9999" {
		t.Errorf("Expected address ':9999', got '%s'", cfg.Server.Address)
	}
}

// TestLoad_ExpandsProperties tests ${...} expansion during Load
func TestLoad_ExpandsProperties(t *testing.T) {
	t.Setenv("TEST_CONFIG_PORT", "7777")

	cfg := &Config{
		Server: ServerConfig{Address: ":${env:TEST_CONFIG_PORT}"},
	}
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Address != ":7777" {
		t.Errorf("Expected address ':7777', got '%s'", cfg.Server.Address)
	}
}

// TestLoad_AppliesAPIKeyDefaults tests the default probe locations
func TestLoad_AppliesAPIKeyDefaults(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Address: ":8000"}}
	if err := cfg.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.APIKey.SecretName != "youtube_api_key" {
		t.Errorf("Expected secret name 'youtube_api_key', got '%s'", cfg.APIKey.SecretName)
	}
	if cfg.APIKey.EnvVar != "YOUTUBE_API_KEY" {
		t.Errorf("Expected env var 'YOUTUBE_API_KEY', got '%s'", cfg.APIKey.EnvVar)
	}
	if cfg.APIKey.SettingsFile != "settings.json" {
		t.Errorf("Expected settings file 'settings.json', got '%s'", cfg.APIKey.SettingsFile)
	}
}

// TestLoad_InvalidAddress tests validation of the listener address
func TestLoad_InvalidAddress(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Address: "not a tcp address"}}
	if err := cfg.Load(); err == nil {
		t.Fatal("Expected error for invalid address")
	}
}

// TestLoad_EmptyAddress tests validation of a missing address
func TestLoad_EmptyAddress(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Load(); err == nil {
		t.Fatal("Expected error for empty address")
	}
}

// TestCORSConfig_Validate tests the credentialed wildcard rejection
func TestCORSConfig_Validate(t *testing.T) {
	valid := CORSConfig{AllowOrigins: []string{"https://example.com"}, AllowCredentials: true}
	if err := valid.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}

	invalid := CORSConfig{AllowOrigins: []string{"*"}, AllowCredentials: true}
	if err := invalid.Validate(); err == nil {
		t.Error("Expected error for wildcard origin with credentials")
	}
}

// TestCORSConfig_AllowAll tests the allow-all detection
func TestCORSConfig_AllowAll(t *testing.T) {
	if !(CORSConfig{}).AllowAll() {
		t.Error("Empty origin list should allow all")
	}
	if !(CORSConfig{AllowOrigins: []string{"*"}}).AllowAll() {
		t.Error("Wildcard origin should allow all")
	}
	if (CORSConfig{AllowOrigins: []string{"https://example.com"}}).AllowAll() {
		t.Error("Explicit origin list should not allow all")
	}
}

// TestControllerBindings_Validate tests binding validation
func TestControllerBindings_Validate(t *testing.T) {
	valid := ControllerBindings{{TypeName: "health"}}
	if err := valid.Validate(); err != nil {
		t.Errorf("Unexpected validation error: %v", err)
	}

	invalid := ControllerBindings{{TypeName: ""}}
	err := invalid.Validate()
	if err == nil {
		t.Fatal("Expected error for binding without type")
	}
	if !strings.Contains(err.Error(), "index 0") {
		t.Errorf("Expected index in error, got: %v", err)
	}
}

// testControllerConfig exercises the To[T] helper
type testControllerConfig struct {
	Field string `yaml:"field"`
}

func (c testControllerConfig) Validate() error {
	if c.Field == "invalid" {
		return errors.New("invalid config")
	}
	return nil
}

// TestTo_Success tests unmarshalling a raw controller config
func TestTo_Success(t *testing.T) {
	t.Setenv("TEST_CONFIG_FIELD", "expanded")

	cfg, err := To[testControllerConfig](RawConfig("field: ${env:TEST_CONFIG_FIELD}\n"))
	if err != nil {
		t.Fatalf("To failed: %v", err)
	}
	if cfg.Field != "expanded" {
		t.Errorf("Expected 'expanded', got '%s'", cfg.Field)
	}
}

// TestTo_ValidationFailure tests that invalid configs are rejected
func TestTo_ValidationFailure(t *testing.T) {
	if _, err := To[testControllerConfig](RawConfig("field: invalid\n")); err == nil {
		t.Fatal("Expected validation error")
	}
}

// TestTo_NilConfig tests unmarshalling an absent config section
func TestTo_NilConfig(t *testing.T) {
	cfg, err := To[testControllerConfig](nil)
	if err != nil {
		t.Fatalf("To failed for nil config: %v", err)
	}
	if cfg.Field != "" {
		t.Errorf("Expected zero value, got '%s'", cfg.Field)
	}
}

package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSecretFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write secret file: %v", err)
	}
}

// TestFileResolver_Success tests reading a secret from a file
func TestFileResolver_Success(t *testing.T) {
	dir := t.TempDir()
	writeSecretFile(t, dir, "api_key", "super-secret\n")

	resolver := NewFileResolver(dir)
	result, err := resolver.Resolve("api_key")
	if err != nil {
		t.Fatalf("FileResolver.Resolve failed: %v", err)
	}

	// contents are trimmed
	if result != "super-secret" {
		t.Errorf("Expected 'super-secret', got '%s'", result)
	}
}

// TestFileResolver_NotFound tests resolution of a missing secret file
func TestFileResolver_NotFound(t *testing.T) {
	resolver := NewFileResolver(t.TempDir())
	if _, err := resolver.Resolve("missing"); err == nil {
		t.Fatal("Expected error for missing secret file")
	}
}

// TestFileResolver_RejectsTraversal tests path traversal protection
func TestFileResolver_RejectsTraversal(t *testing.T) {
	resolver := NewFileResolver(t.TempDir())

	for _, key := range []string{"../outside", "a/../../outside", "/etc/passwd"} {
		if _, err := resolver.Resolve(key); err == nil {
			t.Errorf("Expected error for key %q", key)
		}
	}
}

// TestFileResolver_EmptyKey tests resolution with an empty key
func TestFileResolver_EmptyKey(t *testing.T) {
	resolver := NewFileResolver(t.TempDir())
	if _, err := resolver.Resolve(""); err == nil {
		t.Fatal("Expected error for empty key")
	}
}

// TestFileConfig_Validate tests the file backend config validation
func TestFileConfig_Validate(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		cfg     FileConfig
		wantErr bool
	}{
		{"valid", FileConfig{Dir: dir}, false},
		{"empty dir", FileConfig{}, true},
		{"nonexistent dir", FileConfig{Dir: filepath.Join(dir, "nope")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

// TestFileConfig_ValidateFile tests that a file path is rejected as dir
func TestFileConfig_ValidateFile(t *testing.T) {
	dir := t.TempDir()
	writeSecretFile(t, dir, "not_a_dir", "x")

	cfg := FileConfig{Dir: filepath.Join(dir, "not_a_dir")}
	if err := cfg.Validate(); err == nil {
		t.Fatal("Expected validation error for file used as dir")
	}
}

// TestFileConfig_CreateClient tests the factory method
func TestFileConfig_CreateClient(t *testing.T) {
	dir := t.TempDir()
	writeSecretFile(t, dir, "token", "abc")

	resolver, err := FileConfig{Dir: dir}.CreateClient()
	if err != nil {
		t.Fatalf("CreateClient failed: %v", err)
	}

	result, err := resolver.Resolve("token")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if result != "abc" {
		t.Errorf("Expected 'abc', got '%s'", result)
	}
}

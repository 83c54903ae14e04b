package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// FileConfig holds configuration for the file-based backend.
type FileConfig struct {
	Dir string `yaml:"dir"`
}

// Validate checks that the configured directory exists.
func (f FileConfig) Validate() error {
	if f.Dir == "" {
		return errors.New("dir is required for the file resolver")
	}

	info, err := os.Stat(f.Dir)
	if os.IsNotExist(err) {
		return errors.Errorf("secrets dir %q does not exist", f.Dir)
	}
	if err != nil {
		return errors.Wrapf(err, "error accessing secrets dir %q", f.Dir)
	}
	if !info.IsDir() {
		return errors.Errorf("secrets dir %q is not a directory", f.Dir)
	}
	return nil
}

// CreateClient creates a FileResolver from this config.
func (f FileConfig) CreateClient() (*FileResolver, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return NewFileResolver(f.Dir), nil
}

// FileResolver reads secrets from files in a configured directory, one file
// per secret. Useful for Docker and Kubernetes secret mounts. File contents
// are trimmed of surrounding whitespace.
type FileResolver struct {
	dir string
}

// NewFileResolver creates a new file-based resolver rooted at dir.
func NewFileResolver(dir string) *FileResolver {
	return &FileResolver{dir: dir}
}

// Resolve reads the secret stored at <dir>/<key>.
func (f *FileResolver) Resolve(key string) (string, error) {
	if f.dir == "" {
		return "", errors.New("no secrets directory configured")
	}
	if key == "" {
		return "", errors.New("no file specified for file secret")
	}
	if filepath.IsAbs(key) {
		return "", errors.New("invalid secret key: absolute paths not allowed")
	}

	cleanKey := filepath.Clean(key)
	if strings.Contains(cleanKey, "..") {
		return "", errors.New("invalid secret key: path traversal detected")
	}

	absDir, err := filepath.Abs(f.dir)
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve secrets directory")
	}

	absPath, err := filepath.Abs(filepath.Join(f.dir, cleanKey))
	if err != nil {
		return "", errors.Wrap(err, "failed to resolve secret file path")
	}

	if !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return "", errors.New("invalid secret key: outside secrets directory")
	}

	// #nosec G304 -- path is validated against the secrets directory above
	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Errorf("secret %q not found", key)
		}
		return "", errors.Wrapf(err, "failed to read secret %q", key)
	}

	log.Debug().Str("file", absPath).Msg("Retrieved secret from file")
	return strings.TrimSpace(string(content)), nil
}

// Name returns the resolver name.
func (f *FileResolver) Name() string {
	return "File"
}

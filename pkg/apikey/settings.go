package apikey

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// SettingsFileProvider probes a local JSON settings document, typically
// "settings.json" next to the binary, for a named field. A missing file or
// missing field is a silent miss; an unreadable or malformed file is an
// error worth a warning.
type SettingsFileProvider struct {
	path  string
	field string
}

// NewSettingsFileProvider creates a provider reading the given field from
// the JSON document at path.
func NewSettingsFileProvider(path, field string) *SettingsFileProvider {
	return &SettingsFileProvider{
		path:  path,
		field: field,
	}
}

// Fetch reads and parses the settings file, returning the field's value.
func (s *SettingsFileProvider) Fetch() (string, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.Wrapf(err, "failed to read settings file %q", s.path)
	}

	var settings map[string]interface{}
	if err := json.Unmarshal(content, &settings); err != nil {
		return "", errors.Wrapf(err, "failed to parse settings file %q", s.path)
	}

	value, ok := settings[s.field].(string)
	if !ok {
		return "", nil
	}
	return value, nil
}

// Source identifies this provider as the local settings file.
func (s *SettingsFileProvider) Source() Source {
	return SourceLocalFile
}

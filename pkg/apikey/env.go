package apikey

import "os"

// EnvProvider probes a process environment variable. An unset or empty
// variable is a silent miss, never an error.
type EnvProvider struct {
	name string
}

// NewEnvProvider creates a provider reading the named environment variable.
func NewEnvProvider(name string) *EnvProvider {
	return &EnvProvider{name: name}
}

// Fetch returns the variable's value, empty when unset.
func (e *EnvProvider) Fetch() (string, error) {
	return os.Getenv(e.name), nil
}

// Source identifies this provider as the environment.
func (e *EnvProvider) Source() Source {
	return SourceEnvironment
}

package secrets

import (
	"os"

	"github.com/rs/zerolog/log"
)

// EnvResolver resolves values from environment variables. It is the default
// backend when a property carries no prefix. An unset or empty variable is
// not an error, matching os.Expand semantics.
type EnvResolver struct{}

// NewEnvResolver creates a new environment variable resolver.
func NewEnvResolver() *EnvResolver {
	return &EnvResolver{}
}

// Resolve retrieves an environment variable value.
func (e *EnvResolver) Resolve(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		log.Debug().Str("env_var", key).Msg("Environment variable not set or empty")
	}
	return value, nil
}

// Name returns the resolver name.
func (e *EnvResolver) Name() string {
	return "Environment"
}

// Package secrets provides a prefix-keyed registry of secret backends.
// Config values written as "prefix:key" (for example "vault:youtube_api_key"
// or "env:PORT") are resolved through the backend registered for that prefix.
package secrets

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// PropertyResolver is the interface every secret backend implements.
type PropertyResolver interface {
	// Resolve retrieves the value for the given key, or an error if the
	// backend cannot serve it.
	Resolve(key string) (string, error)

	// Name returns a human-readable backend name used in log output.
	Name() string
}

var (
	resolversMu sync.RWMutex
	resolvers   = make(map[string]PropertyResolver)
)

func init() {
	Register("env", NewEnvResolver())
}

// Register associates a backend with a prefix. The prefix must not include
// the trailing colon ("vault", not "vault:"). Registering over an existing
// prefix replaces the previous backend and logs a warning.
func Register(prefix string, resolver PropertyResolver) {
	resolversMu.Lock()
	defer resolversMu.Unlock()

	if _, exists := resolvers[prefix]; exists {
		log.Warn().Msgf("Overriding existing secret resolver for prefix %q", prefix)
	}
	resolvers[prefix] = resolver
}

// Unregister removes the backend for a prefix. Mostly useful in tests.
func Unregister(prefix string) {
	resolversMu.Lock()
	defer resolversMu.Unlock()
	delete(resolvers, prefix)
}

// Resolve resolves a property in "prefix:key" form. Input without a prefix
// defaults to the env backend.
func Resolve(property string) (string, error) {
	prefix, key := parseProperty(property)

	resolversMu.RLock()
	resolver, exists := resolvers[prefix]
	resolversMu.RUnlock()

	if !exists {
		return "", errors.Errorf("no resolver registered for prefix %q", prefix)
	}

	value, err := resolver.Resolve(key)
	if err != nil {
		return "", errors.Wrapf(err, "failed to resolve %q using %s resolver", property, resolver.Name())
	}
	return value, nil
}

// GetResolver returns the backend registered for a prefix, or nil.
func GetResolver(prefix string) PropertyResolver {
	resolversMu.RLock()
	defer resolversMu.RUnlock()
	return resolvers[prefix]
}

// ListPrefixes returns all registered prefixes.
func ListPrefixes() []string {
	resolversMu.RLock()
	defer resolversMu.RUnlock()

	prefixes := make([]string, 0, len(resolvers))
	for prefix := range resolvers {
		prefixes = append(prefixes, prefix)
	}
	return prefixes
}

// parseProperty splits "prefix:key" at the first colon. Input without a
// colon is treated as an env key.
func parseProperty(property string) (prefix string, key string) {
	before, after, found := strings.Cut(property, ":")
	if !found {
		return "env", property
	}
	return before, after
}

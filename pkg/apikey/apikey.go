// Package apikey resolves the optional YouTube API key at process startup.
// Sources are probed in strict priority order (remote secret store, process
// environment, local settings file) and the first non-empty value wins. A
// failing source is logged and skipped; the service starts with or without
// a key, so no error ever escapes this package.
package apikey

import (
	"github.com/rs/zerolog/log"
)

// Source identifies where a credential was resolved from.
type Source string

const (
	SourceRemoteStore Source = "remote-store"
	SourceEnvironment Source = "environment"
	SourceLocalFile   Source = "local-file"
	SourceNone        Source = "none"
)

// Credential is the outcome of a resolution run. It is computed once at
// startup and passed by value to whatever needs it; the zero value means
// no key was found.
type Credential struct {
	Value  string
	Source Source
}

// Present reports whether a key was resolved.
func (c Credential) Present() bool {
	return c.Value != ""
}

// Provider probes a single source for the API key. A Fetch returning an
// empty value with a nil error means the source has nothing to offer
// (environment variable unset, settings file absent); an error means the
// probe itself failed and is worth a warning.
type Provider interface {
	Fetch() (string, error)
	Source() Source
}

// Resolve walks the providers in order and returns the first non-empty
// value. Each provider is consulted at most once, and none after the
// winning one. Absence of a key is a valid outcome, not a failure.
func Resolve(providers ...Provider) Credential {
	for _, p := range providers {
		value, err := p.Fetch()
		if err != nil {
			log.Warn().
				Err(err).
				Str("source", string(p.Source())).
				Msg("API key source failed, trying next")
			continue
		}
		if value == "" {
			log.Debug().
				Str("source", string(p.Source())).
				Msg("API key source empty, trying next")
			continue
		}

		log.Info().Str("source", string(p.Source())).Msg("YouTube API key loaded")
		return Credential{Value: value, Source: p.Source()}
	}

	log.Info().Msg("No YouTube API key found - transcript API will work without it")
	return Credential{Source: SourceNone}
}

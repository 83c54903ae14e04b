package apikey

import (
	"github.com/pkg/errors"

	"github.com/yttools/transcript-api/pkg/secrets"
)

// RemoteStoreProvider probes a remote secret store (Vault or AWS Secrets
// Manager) for the API key. It is only constructed when a store is
// configured; an unconfigured store simply does not appear in the chain.
type RemoteStoreProvider struct {
	resolver secrets.PropertyResolver
	key      string
}

// NewRemoteStoreProvider wraps a secret backend and the key to fetch.
func NewRemoteStoreProvider(resolver secrets.PropertyResolver, key string) *RemoteStoreProvider {
	return &RemoteStoreProvider{
		resolver: resolver,
		key:      key,
	}
}

// Fetch reads the key from the remote store. Network, auth and not-found
// failures all surface as errors for the orchestrator to log and skip.
func (r *RemoteStoreProvider) Fetch() (string, error) {
	if r.resolver == nil {
		return "", errors.New("no remote secret store configured")
	}
	return r.resolver.Resolve(r.key)
}

// Source identifies this provider as the remote store.
func (r *RemoteStoreProvider) Source() Source {
	return SourceRemoteStore
}

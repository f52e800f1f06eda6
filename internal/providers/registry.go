package providers

import (
	"fmt"

	"github.com/grit-vcs/grit/internal/models"
)

// Constructor builds a Provider instance from its OAuth app registration
// (client id, client secret, and redirect URI). Each provider package registers one via Register in its
// package init, so a Provider can be reconstructed from a snapshot's
// stored ProviderKind without user input.
type Constructor func(clientID, clientSecret, redirectURI string) Provider

var registry = map[models.ProviderKind]Constructor{}

// Register adds a provider constructor to the package-wide registry.
// Intended to be called from a provider package's init function.
func Register(kind models.ProviderKind, ctor Constructor) {
	registry[kind] = ctor
}

// New constructs a Provider for kind using the registered constructor.
func New(kind models.ProviderKind, clientID, clientSecret, redirectURI string) (Provider, error) {
	ctor, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("no provider registered for kind %q", kind)
	}
	return ctor(clientID, clientSecret, redirectURI), nil
}

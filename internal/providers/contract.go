// package providers defines the contract every remote playlist service
// implements, plus URL-detection helpers shared across provider adapters.
package providers

import (
	"context"

	"github.com/grit-vcs/grit/internal/models"
)

// Provider is the capability set a remote playlist service must expose:
// OAuth, fetch/search, patch application, and a playable URL for a track.
// A ProviderKind tag is stored in every snapshot so an instance can be
// reconstructed from on-disk state without user input.
type Provider interface {
	Kind() models.ProviderKind
	OAuthURL(redirectURI, state string) string
	ExchangeCode(ctx context.Context, code, redirectURI string) (models.OAuthToken, error)
	RefreshToken(ctx context.Context, old models.OAuthToken) (models.OAuthToken, error)
	Fetch(ctx context.Context, playlistID string) (models.PlaylistSnapshot, error)
	FetchTrack(ctx context.Context, trackID string) (models.Track, error)
	SearchByQuery(ctx context.Context, query string) ([]models.Track, error)
	Apply(ctx context.Context, playlistID string, patch models.DiffPatch) error
	PlayableURL(ctx context.Context, track models.Track) (string, error)
}

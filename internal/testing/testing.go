// package testing contains fixture builders and small assertion helpers
// shared across grit's test files.
package testing

import (
	"context"
	"os"
	"testing"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/providers"
)

// NewTrack builds a models.Track fixture.
func NewTrack(id, name string, durationMS int, artists ...string) models.Track {
	return models.Track{
		Provider:   models.Spotify,
		ID:         id,
		Name:       name,
		Artists:    artists,
		DurationMS: durationMS,
	}
}

// NewSnapshot builds a models.PlaylistSnapshot fixture with the given
// track ids, in order, each carrying the id as its display name.
func NewSnapshot(playlistID string, trackIDs ...string) models.PlaylistSnapshot {
	tracks := make([]models.Track, len(trackIDs))
	for i, id := range trackIDs {
		tracks[i] = NewTrack(id, id, 1000)
	}
	return models.PlaylistSnapshot{
		ID:       playlistID,
		Name:     "Fixture Playlist",
		Tracks:   tracks,
		Provider: models.Spotify,
	}
}

// TrackIDs extracts the track id sequence from a snapshot, for terse
// assertions like reflect.DeepEqual(TrackIDs(got), []string{"a","b"}).
func TrackIDs(s models.PlaylistSnapshot) []string {
	ids := make([]string, len(s.Tracks))
	for i, t := range s.Tracks {
		ids[i] = t.ID
	}
	return ids
}

// MockProvider is a test double for providers.Provider that serves a
// fixed Fetch result and records every Apply call it receives.
type MockProvider struct {
	Kind_       models.ProviderKind
	FetchResult models.PlaylistSnapshot
	FetchErr    error
	Applied     []models.DiffPatch
	ApplyErr    error
}

var _ providers.Provider = (*MockProvider)(nil)

func (m *MockProvider) Kind() models.ProviderKind { return m.Kind_ }
func (m *MockProvider) OAuthURL(redirectURI, state string) string { return "" }
func (m *MockProvider) ExchangeCode(ctx context.Context, code, redirectURI string) (models.OAuthToken, error) {
	return models.OAuthToken{}, nil
}
func (m *MockProvider) RefreshToken(ctx context.Context, old models.OAuthToken) (models.OAuthToken, error) {
	return old, nil
}
func (m *MockProvider) Fetch(ctx context.Context, playlistID string) (models.PlaylistSnapshot, error) {
	return m.FetchResult, m.FetchErr
}
func (m *MockProvider) FetchTrack(ctx context.Context, trackID string) (models.Track, error) {
	return models.Track{}, nil
}
func (m *MockProvider) SearchByQuery(ctx context.Context, query string) ([]models.Track, error) {
	return nil, nil
}
func (m *MockProvider) Apply(ctx context.Context, playlistID string, patch models.DiffPatch) error {
	m.Applied = append(m.Applied, patch)
	return m.ApplyErr
}
func (m *MockProvider) PlayableURL(ctx context.Context, track models.Track) (string, error) {
	return "", nil
}

// AssertFileExists fails the test if path does not exist.
func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("file does not exist: %s", path)
	}
}

// AssertNoFile fails the test if path exists.
func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file not to exist: %s", path)
	}
}

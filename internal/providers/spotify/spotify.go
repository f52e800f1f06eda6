// package spotify implements the providers.Provider contract against the
// Spotify Web API.
package spotify

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/providers"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/sahilm/fuzzy"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	authURL  = "https://accounts.spotify.com/authorize"
	tokenURL = "https://accounts.spotify.com/api/token"
	apiBase  = "https://api.spotify.com/v1"

	// requestsPerSecond is a conservative budget under Spotify's
	// documented rate limiting, leaving headroom for other clients
	// sharing the same app registration.
	requestsPerSecond = 8
)

func init() {
	providers.Register(models.Spotify, func(clientID, clientSecret, redirectURI string) providers.Provider {
		return New(clientID, clientSecret, redirectURI)
	})
}

// Provider implements providers.Provider for Spotify.
type Provider struct {
	oauth   oauth2.Config
	http    *resty.Client
	limiter *rate.Limiter
	token   string
}

// New constructs a Spotify Provider. The access token is set later via
// SetToken once credentials are loaded, so a Provider can be constructed
// purely from its OAuth app registration (client id/secret) before
// authentication has happened.
func New(clientID, clientSecret, redirectURI string) *Provider {
	return &Provider{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes: []string{
				"playlist-read-private",
				"playlist-read-collaborative",
				"playlist-modify-public",
				"playlist-modify-private",
			},
			Endpoint: oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
		},
		http:    resty.New().SetBaseURL(apiBase),
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// SetToken sets the access token used for subsequent API calls.
func (p *Provider) SetToken(accessToken string) *Provider {
	p.token = accessToken
	return p
}

func (p *Provider) Kind() models.ProviderKind { return models.Spotify }

func (p *Provider) OAuthURL(redirectURI, state string) string {
	cfg := p.oauth
	cfg.RedirectURL = redirectURI
	return cfg.AuthCodeURL(state)
}

func (p *Provider) ExchangeCode(ctx context.Context, code, redirectURI string) (models.OAuthToken, error) {
	cfg := p.oauth
	cfg.RedirectURL = redirectURI

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return models.OAuthToken{}, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}
	return fromOAuth2Token(token), nil
}

func (p *Provider) RefreshToken(ctx context.Context, old models.OAuthToken) (models.OAuthToken, error) {
	if old.RefreshToken == "" {
		return models.OAuthToken{}, shared.ErrNoRefreshToken
	}

	src := p.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: old.RefreshToken})
	token, err := src.Token()
	if err != nil {
		return models.OAuthToken{}, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	refreshed := fromOAuth2Token(token)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = old.RefreshToken
	}
	return refreshed, nil
}

func fromOAuth2Token(t *oauth2.Token) models.OAuthToken {
	return models.OAuthToken{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		ExpiresAt:    t.Expiry.Unix(),
		TokenType:    t.TokenType,
	}
}

func (p *Provider) request(ctx context.Context) (*resty.Request, error) {
	if p.token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return p.http.R().SetContext(ctx).SetAuthToken(p.token), nil
}

type spotifyImage struct {
	URL string `json:"url"`
}

type spotifyArtist struct {
	Name string `json:"name"`
}

type spotifyTrackObject struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	DurationMS int             `json:"duration_ms"`
	Artists    []spotifyArtist `json:"artists"`
}

type spotifyTrackItem struct {
	Track *spotifyTrackObject `json:"track"`
}

type spotifyTracksPage struct {
	Items []spotifyTrackItem `json:"items"`
	Next  *string            `json:"next"`
}

type spotifyPlaylist struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	SnapshotID  string            `json:"snapshot_id"`
	Tracks      spotifyTracksPage `json:"tracks"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrackObject `json:"items"`
	} `json:"tracks"`
}

func toTrack(o spotifyTrackObject) models.Track {
	artists := make([]string, len(o.Artists))
	for i, a := range o.Artists {
		artists[i] = a.Name
	}
	return models.Track{
		Provider:   models.Spotify,
		ID:         o.ID,
		Name:       o.Name,
		Artists:    artists,
		DurationMS: o.DurationMS,
	}
}

// Fetch paginates GET /v1/playlists/{id} (and tracks.next) fully before
// returning, per spec scenario 5.
func (p *Provider) Fetch(ctx context.Context, playlistID string) (models.PlaylistSnapshot, error) {
	req, err := p.request(ctx)
	if err != nil {
		return models.PlaylistSnapshot{}, err
	}

	var playlist spotifyPlaylist
	resp, err := req.SetResult(&playlist).Get("/playlists/" + playlistID)
	if err != nil {
		return models.PlaylistSnapshot{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.IsError() {
		return models.PlaylistSnapshot{}, fmt.Errorf("%w: spotify GET playlist status %d", shared.ErrAPIRequest, resp.StatusCode())
	}

	var tracks []models.Track
	for _, item := range playlist.Tracks.Items {
		if item.Track != nil {
			tracks = append(tracks, toTrack(*item.Track))
		}
	}

	next := playlist.Tracks.Next
	for next != nil {
		req, err := p.request(ctx)
		if err != nil {
			return models.PlaylistSnapshot{}, err
		}

		var page spotifyTracksPage
		resp, err := req.SetResult(&page).Get(*next)
		if err != nil {
			return models.PlaylistSnapshot{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if resp.IsError() {
			return models.PlaylistSnapshot{}, fmt.Errorf("%w: spotify GET tracks page status %d", shared.ErrAPIRequest, resp.StatusCode())
		}

		for _, item := range page.Items {
			if item.Track != nil {
				tracks = append(tracks, toTrack(*item.Track))
			}
		}
		next = page.Next
	}

	return models.PlaylistSnapshot{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		Tracks:      tracks,
		Provider:    models.Spotify,
		IsAlbum:     false,
	}, nil
}

func (p *Provider) FetchTrack(ctx context.Context, trackID string) (models.Track, error) {
	req, err := p.request(ctx)
	if err != nil {
		return models.Track{}, err
	}

	var track spotifyTrackObject
	resp, err := req.SetResult(&track).Get("/tracks/" + trackID)
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.IsError() {
		return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}

	return toTrack(track), nil
}

// SearchByQuery ranks the raw search response with fuzzy matching against
// the query so the most relevant result sorts first. Results whose names
// do not fuzzy-match the query are dropped.
func (p *Provider) SearchByQuery(ctx context.Context, query string) ([]models.Track, error) {
	req, err := p.request(ctx)
	if err != nil {
		return nil, err
	}

	var result spotifySearchResponse
	resp, err := req.
		SetResult(&result).
		SetQueryParams(map[string]string{"q": query, "type": "track", "limit": "20"}).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: spotify search status %d", shared.ErrAPIRequest, resp.StatusCode())
	}

	names := make([]string, len(result.Tracks.Items))
	for i, t := range result.Tracks.Items {
		names[i] = t.Name
	}

	matches := fuzzy.Find(query, names)
	tracks := make([]models.Track, len(matches))
	for i, m := range matches {
		tracks[i] = toTrack(result.Tracks.Items[m.Index])
	}
	return tracks, nil
}

// Apply pushes patch upstream: removals, then additions, then moves, per
// spec §4.D/§4.J. The first non-2xx response aborts the remaining calls;
// the local snapshot is not rolled back (spec §4.J failure policy).
func (p *Provider) Apply(ctx context.Context, playlistID string, patch models.DiffPatch) error {
	base := "/playlists/" + playlistID + "/tracks"

	for _, c := range patch.Changes {
		if c.Kind != models.Removed {
			continue
		}
		req, err := p.request(ctx)
		if err != nil {
			return err
		}
		resp, err := req.
			SetBody(map[string]any{"tracks": []map[string]string{{"uri": trackURI(c.Track.ID)}}}).
			Delete(base)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: spotify DELETE tracks status %d", shared.ErrAPIRequest, resp.StatusCode())
		}
	}

	for _, c := range patch.Changes {
		if c.Kind != models.Added {
			continue
		}
		req, err := p.request(ctx)
		if err != nil {
			return err
		}
		resp, err := req.
			SetBody(map[string]any{"uris": []string{trackURI(c.Track.ID)}, "position": c.Index}).
			Post(base)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: spotify POST tracks status %d", shared.ErrAPIRequest, resp.StatusCode())
		}
	}

	for _, c := range patch.Changes {
		if c.Kind != models.Moved {
			continue
		}

		insertBefore := c.To
		if c.From < c.To {
			insertBefore = c.To + 1
		}

		req, err := p.request(ctx)
		if err != nil {
			return err
		}
		resp, err := req.
			SetBody(map[string]any{"range_start": c.From, "insert_before": insertBefore, "range_length": 1}).
			Put(base)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: spotify PUT tracks status %d", shared.ErrAPIRequest, resp.StatusCode())
		}
	}

	return nil
}

func (p *Provider) PlayableURL(ctx context.Context, track models.Track) (string, error) {
	return trackURI(track.ID), nil
}

func trackURI(id string) string {
	return "spotify:track:" + id
}

// package youtube implements the providers.Provider contract against the
// YouTube Data API v3, targeting YouTube Music playlists.
package youtube

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/go-resty/resty/v2"
	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/providers"
	"github.com/grit-vcs/grit/internal/shared"
	"golang.org/x/oauth2"
)

const (
	authURL = "https://accounts.google.com/o/oauth2/auth"
	tokenURL = "https://oauth2.googleapis.com/token"
	apiBase  = "https://www.googleapis.com/youtube/v3"
	scope    = "https://www.googleapis.com/auth/youtube"

	// playlistItemIDKey is the Track.Metadata key holding the YouTube
	// playlistItems resource id (distinct from the video id): deletion
	// and reorder calls address an item by this id, not by video id.
	playlistItemIDKey = "playlist_item_id"
)

func init() {
	providers.Register(models.YouTube, func(clientID, clientSecret, redirectURI string) providers.Provider {
		return New(clientID, clientSecret, redirectURI)
	})
}

// Provider implements providers.Provider for YouTube Music playlists via
// the YouTube Data API v3.
type Provider struct {
	oauth oauth2.Config
	http  *resty.Client
	token string
}

// New constructs a YouTube Provider from its OAuth app registration.
func New(clientID, clientSecret, redirectURI string) *Provider {
	return &Provider{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{scope},
			Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
		},
		http: resty.New().SetBaseURL(apiBase),
	}
}

// SetToken sets the access token used for subsequent API calls.
func (p *Provider) SetToken(accessToken string) *Provider {
	p.token = accessToken
	return p
}

func (p *Provider) Kind() models.ProviderKind { return models.YouTube }

func (p *Provider) OAuthURL(redirectURI, state string) string {
	cfg := p.oauth
	cfg.RedirectURL = redirectURI
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
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
	return p.http.R().SetContext(ctx).SetAuthToken(p.token), nil
}

type ytThumbnail struct {
	URL string `json:"url"`
}

type ytPlaylistSnippet struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ytPlaylist struct {
	ID      string            `json:"id"`
	Snippet ytPlaylistSnippet `json:"snippet"`
}

type ytPlaylistList struct {
	Items []ytPlaylist `json:"items"`
}

type ytResourceID struct {
	VideoID string `json:"videoId"`
}

type ytPlaylistItemSnippet struct {
	Title      string       `json:"title"`
	PlaylistID string       `json:"playlistId"`
	Position   int          `json:"position"`
	ResourceID ytResourceID `json:"resourceId"`
}

type ytPlaylistItem struct {
	ID      string                `json:"id"`
	Snippet ytPlaylistItemSnippet `json:"snippet"`
}

type ytPlaylistItemList struct {
	Items         []ytPlaylistItem `json:"items"`
	NextPageToken string           `json:"nextPageToken"`
}

type ytVideoSnippet struct {
	Title   string `json:"title"`
	Channel string `json:"channelTitle"`
}

type ytVideoContentDetails struct {
	Duration string `json:"duration"`
}

type ytVideo struct {
	ID              string                 `json:"id"`
	Snippet         ytVideoSnippet         `json:"snippet"`
	ContentDetails  ytVideoContentDetails  `json:"contentDetails"`
}

type ytVideoList struct {
	Items []ytVideo `json:"items"`
}

type ytSearchID struct {
	VideoID string `json:"videoId"`
}

type ytSearchItem struct {
	ID      ytSearchID     `json:"id"`
	Snippet ytVideoSnippet `json:"snippet"`
}

type ytSearchList struct {
	Items []ytSearchItem `json:"items"`
}

func videoTrack(videoID string, snippet ytVideoSnippet, durationMS int) models.Track {
	return models.Track{
		Provider:   models.YouTube,
		ID:         videoID,
		Name:       snippet.Title,
		Artists:    []string{snippet.Channel},
		DurationMS: durationMS,
	}
}

func itemTrack(item ytPlaylistItem) models.Track {
	return models.Track{
		Provider:   models.YouTube,
		ID:         item.Snippet.ResourceID.VideoID,
		Name:       item.Snippet.Title,
		DurationMS: 0,
		Metadata:   map[string]string{playlistItemIDKey: item.ID},
	}
}

// Fetch paginates GET /playlistItems via nextPageToken fully before
// returning, per spec scenario 5.
func (p *Provider) Fetch(ctx context.Context, playlistID string) (models.PlaylistSnapshot, error) {
	req, err := p.request(ctx)
	if err != nil {
		return models.PlaylistSnapshot{}, err
	}

	var playlists ytPlaylistList
	resp, err := req.
		SetResult(&playlists).
		SetQueryParams(map[string]string{"id": playlistID, "part": "snippet"}).
		Get("/playlists")
	if err != nil {
		return models.PlaylistSnapshot{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.IsError() {
		return models.PlaylistSnapshot{}, fmt.Errorf("%w: youtube GET playlists status %d", shared.ErrAPIRequest, resp.StatusCode())
	}
	if len(playlists.Items) == 0 {
		return models.PlaylistSnapshot{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	playlist := playlists.Items[0]

	var tracks []models.Track
	pageToken := ""
	for {
		req, err := p.request(ctx)
		if err != nil {
			return models.PlaylistSnapshot{}, err
		}

		params := map[string]string{
			"playlistId": playlistID,
			"part":       "snippet",
			"maxResults": "50",
		}
		if pageToken != "" {
			params["pageToken"] = pageToken
		}

		var page ytPlaylistItemList
		resp, err := req.SetResult(&page).SetQueryParams(params).Get("/playlistItems")
		if err != nil {
			return models.PlaylistSnapshot{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if resp.IsError() {
			return models.PlaylistSnapshot{}, fmt.Errorf("%w: youtube GET playlistItems status %d", shared.ErrAPIRequest, resp.StatusCode())
		}

		for _, item := range page.Items {
			tracks = append(tracks, itemTrack(item))
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return models.PlaylistSnapshot{
		ID:          playlist.ID,
		Name:        playlist.Snippet.Title,
		Description: playlist.Snippet.Description,
		Tracks:      tracks,
		Provider:    models.YouTube,
	}, nil
}

var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISO8601Duration converts a YouTube contentDetails duration like
// "PT3M32S" into milliseconds.
func parseISO8601Duration(s string) int {
	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	total := hours*3600 + minutes*60 + seconds
	return total * 1000
}

func (p *Provider) FetchTrack(ctx context.Context, trackID string) (models.Track, error) {
	req, err := p.request(ctx)
	if err != nil {
		return models.Track{}, err
	}

	var videos ytVideoList
	resp, err := req.
		SetResult(&videos).
		SetQueryParams(map[string]string{"id": trackID, "part": "snippet,contentDetails"}).
		Get("/videos")
	if err != nil {
		return models.Track{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.IsError() || len(videos.Items) == 0 {
		return models.Track{}, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
	}

	v := videos.Items[0]
	return videoTrack(v.ID, v.Snippet, parseISO8601Duration(v.ContentDetails.Duration)), nil
}

// SearchByQuery searches videos in the Music category (videoCategoryId 10)
// and returns them in the API's own relevance order.
func (p *Provider) SearchByQuery(ctx context.Context, query string) ([]models.Track, error) {
	req, err := p.request(ctx)
	if err != nil {
		return nil, err
	}

	var result ytSearchList
	resp, err := req.
		SetResult(&result).
		SetQueryParams(map[string]string{
			"q":              query,
			"part":           "snippet",
			"type":           "video",
			"videoCategoryId": "10",
			"maxResults":     "20",
		}).
		Get("/search")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: youtube search status %d", shared.ErrAPIRequest, resp.StatusCode())
	}

	tracks := make([]models.Track, len(result.Items))
	for i, item := range result.Items {
		tracks[i] = videoTrack(item.ID.VideoID, item.Snippet, 0)
	}
	return tracks, nil
}

// Apply pushes patch upstream: removals, then additions, then moves, per
// spec §4.D. Removal and move calls address a playlistItems resource by
// the id recorded in Track.Metadata at fetch time, not by video id --
// YouTube's API distinguishes the two. The first non-2xx response aborts
// the remaining calls; the local snapshot is not rolled back.
func (p *Provider) Apply(ctx context.Context, playlistID string, patch models.DiffPatch) error {
	for _, c := range patch.Changes {
		if c.Kind != models.Removed {
			continue
		}
		itemID := c.Track.Metadata[playlistItemIDKey]
		if itemID == "" {
			continue
		}
		req, err := p.request(ctx)
		if err != nil {
			return err
		}
		resp, err := req.SetQueryParam("id", itemID).Delete("/playlistItems")
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: youtube DELETE playlistItems status %d", shared.ErrAPIRequest, resp.StatusCode())
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
		body := map[string]any{
			"snippet": map[string]any{
				"playlistId": playlistID,
				"position":   c.Index,
				"resourceId": map[string]string{"kind": "youtube#video", "videoId": c.Track.ID},
			},
		}
		resp, err := req.SetQueryParam("part", "snippet").SetBody(body).Post("/playlistItems")
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: youtube POST playlistItems status %d", shared.ErrAPIRequest, resp.StatusCode())
		}
	}

	for _, c := range patch.Changes {
		if c.Kind != models.Moved {
			continue
		}
		itemID := c.Track.Metadata[playlistItemIDKey]
		if itemID == "" {
			continue
		}
		req, err := p.request(ctx)
		if err != nil {
			return err
		}
		body := map[string]any{
			"id": itemID,
			"snippet": map[string]any{
				"playlistId": playlistID,
				"position":   c.To,
				"resourceId": map[string]string{"kind": "youtube#video", "videoId": c.Track.ID},
			},
		}
		resp, err := req.SetQueryParam("part", "snippet").SetBody(body).Put("/playlistItems")
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}
		if resp.IsError() {
			return fmt.Errorf("%w: youtube PUT playlistItems status %d", shared.ErrAPIRequest, resp.StatusCode())
		}
	}

	return nil
}

func (p *Provider) PlayableURL(ctx context.Context, track models.Track) (string, error) {
	return "https://music.youtube.com/watch?v=" + track.ID, nil
}

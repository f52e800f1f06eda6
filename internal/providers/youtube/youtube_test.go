package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grit-vcs/grit/internal/models"
)

func newTestProvider(serverURL string) *Provider {
	p := New("client-id", "client-secret", "http://localhost/callback")
	p.http.SetBaseURL(serverURL)
	p.SetToken("test-access-token")
	return p
}

func TestProvider_Kind(t *testing.T) {
	p := New("id", "secret", "redirect")
	if p.Kind() != models.YouTube {
		t.Fatalf("expected YouTube, got %s", p.Kind())
	}
}

func TestProvider_Fetch_Paginates(t *testing.T) {
	pageCalls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/playlists":
			json.NewEncoder(w).Encode(ytPlaylistList{Items: []ytPlaylist{
				{ID: "pl1", Snippet: ytPlaylistSnippet{Title: "Mix", Description: "desc"}},
			}})
		case "/playlistItems":
			pageCalls++
			if r.URL.Query().Get("pageToken") == "" {
				json.NewEncoder(w).Encode(ytPlaylistItemList{
					Items: []ytPlaylistItem{
						{ID: "item1", Snippet: ytPlaylistItemSnippet{Title: "Song 1", ResourceID: ytResourceID{VideoID: "v1"}}},
					},
					NextPageToken: "page2",
				})
			} else {
				json.NewEncoder(w).Encode(ytPlaylistItemList{
					Items: []ytPlaylistItem{
						{ID: "item2", Snippet: ytPlaylistItemSnippet{Title: "Song 2", ResourceID: ytResourceID{VideoID: "v2"}}},
					},
				})
			}
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	snap, err := p.Fetch(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pageCalls != 2 {
		t.Fatalf("expected 2 pages fetched, got %d", pageCalls)
	}
	if len(snap.Tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(snap.Tracks))
	}
	if snap.Tracks[0].ID != "v1" || snap.Tracks[1].ID != "v2" {
		t.Fatalf("unexpected track ids: %+v", snap.Tracks)
	}
	if snap.Tracks[0].Metadata[playlistItemIDKey] != "item1" {
		t.Fatalf("expected playlist item id recorded in metadata, got %+v", snap.Tracks[0].Metadata)
	}
}

func TestParseISO8601Duration(t *testing.T) {
	cases := map[string]int{
		"PT3M32S": (3*60 + 32) * 1000,
		"PT1H2M3S": (3600 + 2*60 + 3) * 1000,
		"PT45S":   45 * 1000,
		"garbage": 0,
	}
	for input, want := range cases {
		if got := parseISO8601Duration(input); got != want {
			t.Errorf("parseISO8601Duration(%q) = %d, want %d", input, got, want)
		}
	}
}

func TestProvider_Apply_RemovalUsesPlaylistItemID(t *testing.T) {
	var gotID string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Fatalf("expected DELETE, got %s", r.Method)
		}
		gotID = r.URL.Query().Get("id")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	patch := models.DiffPatch{Changes: []models.TrackChange{
		{Kind: models.Removed, Track: models.Track{ID: "v1", Metadata: map[string]string{playlistItemIDKey: "item1"}}, Index: 0},
	}}

	if err := p.Apply(context.Background(), "pl1", patch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "item1" {
		t.Errorf("expected delete by playlist item id, got %q", gotID)
	}
}

func TestProvider_Apply_AbortsOnFirstFailure(t *testing.T) {
	calls := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := newTestProvider(server.URL)
	patch := models.DiffPatch{Changes: []models.TrackChange{
		{Kind: models.Removed, Track: models.Track{ID: "v1", Metadata: map[string]string{playlistItemIDKey: "item1"}}, Index: 0},
		{Kind: models.Added, Track: models.Track{ID: "v2"}, Index: 0},
	}}

	if err := p.Apply(context.Background(), "pl1", patch); err == nil {
		t.Fatal("expected error from failing remote call")
	}
	if calls != 1 {
		t.Fatalf("expected the first failure to abort remaining calls, got %d calls", calls)
	}
}

func TestProvider_PlayableURL(t *testing.T) {
	p := New("id", "secret", "redirect")
	url, err := p.PlayableURL(context.Background(), models.Track{ID: "v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://music.youtube.com/watch?v=v1" {
		t.Errorf("unexpected playable url: %s", url)
	}
}

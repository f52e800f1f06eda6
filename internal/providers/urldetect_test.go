package providers

import (
	"testing"

	"github.com/grit-vcs/grit/internal/models"
)

func TestDetectProviderFromURL(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  models.ProviderKind
		ok    bool
	}{
		{name: "spotify playlist", input: "https://open.spotify.com/playlist/37i9dQZF1E39vTG", want: models.Spotify, ok: true},
		{name: "spotify album", input: "https://open.spotify.com/album/abc123", want: models.Spotify, ok: true},
		{name: "youtube full domain", input: "https://www.youtube.com/playlist?list=PLxyz", want: models.YouTube, ok: true},
		{name: "youtu.be short link", input: "https://youtu.be/abc?list=PLxyz", want: models.YouTube, ok: true},
		{name: "unrecognized", input: "bare-playlist-id", want: "", ok: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DetectProviderFromURL(tt.input)
			if got != tt.want || ok != tt.ok {
				t.Errorf("DetectProviderFromURL(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExtractPlaylistID(t *testing.T) {
	tc := []struct {
		name  string
		input string
		want  string
	}{
		{name: "spotify playlist url", input: "https://open.spotify.com/playlist/37i9dQZF1E39vTG?si=abc", want: "37i9dQZF1E39vTG"},
		{name: "spotify album url", input: "https://open.spotify.com/album/abc123?si=xyz", want: "abc123"},
		{name: "youtube list param", input: "https://www.youtube.com/playlist?list=PLxyz123&index=2", want: "PLxyz123"},
		{name: "youtu.be list param", input: "https://youtu.be/watch?list=PLabc", want: "PLabc"},
		{name: "bare id unchanged", input: "37i9dQZF1E39vTG", want: "37i9dQZF1E39vTG"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPlaylistID(tt.input); got != tt.want {
				t.Errorf("ExtractPlaylistID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestIsAlbumURL(t *testing.T) {
	if !IsAlbumURL("https://open.spotify.com/album/abc123") {
		t.Errorf("IsAlbumURL() = false, want true for album url")
	}
	if IsAlbumURL("https://open.spotify.com/playlist/abc123") {
		t.Errorf("IsAlbumURL() = true, want false for playlist url")
	}
}

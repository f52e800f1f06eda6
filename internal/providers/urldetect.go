package providers

import (
	"strings"

	"github.com/grit-vcs/grit/internal/models"
)

// DetectProviderFromURL recognizes spotify.com and youtube.com/youtu.be
// hostnames and reports which provider owns the input, per spec §6.
func DetectProviderFromURL(input string) (models.ProviderKind, bool) {
	switch {
	case strings.Contains(input, "spotify.com"):
		return models.Spotify, true
	case strings.Contains(input, "youtube.com"), strings.Contains(input, "youtu.be"):
		return models.YouTube, true
	default:
		return "", false
	}
}

// ExtractPlaylistID pulls a playlist/album id out of a provider URL, or
// returns the input unchanged if it is already a bare id.
func ExtractPlaylistID(input string) string {
	if strings.Contains(input, "spotify.com/playlist/") {
		return firstSegment(afterFirst(input, "playlist/"))
	}

	if strings.Contains(input, "spotify.com/album/") {
		return firstSegment(afterFirst(input, "album/"))
	}

	if strings.Contains(input, "youtube.com") || strings.Contains(input, "youtu.be") {
		if idx := strings.Index(input, "list="); idx >= 0 {
			rest := input[idx+len("list="):]
			if amp := strings.IndexByte(rest, '&'); amp >= 0 {
				return rest[:amp]
			}
			return rest
		}
	}

	return input
}

// IsAlbumURL reports whether input points at a Spotify album rather than a
// playlist. Nothing outside the tests calls it: init does not set a
// snapshot's IsAlbum field, and the Spotify provider fetches every id
// through the playlists endpoint.
func IsAlbumURL(input string) bool {
	return strings.Contains(input, "spotify.com/album/")
}

func afterFirst(s, sep string) string {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return s
	}
	return s[idx+len(sep):]
}

func firstSegment(s string) string {
	if q := strings.IndexByte(s, '?'); q >= 0 {
		return s[:q]
	}
	return s
}

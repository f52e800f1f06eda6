// package workspace is the porcelain layer: it ties the snapshot store,
// diff engine, staging area, and journal into the VCS-like operations
// (Init, Stage, Commit, Diff, Push, Pull, Revert, Log, Status, Switch).
package workspace

import (
	"os"
	"path/filepath"

	"github.com/grit-vcs/grit/internal/shared"
)

// WorkingState is the JSON shape of the working-playlist pointer: which
// playlist the workspace currently tracks, plus the last track index
// recorded by `grit play`, carried forward from the system this tool
// reimplements. No command reads the index back.
type WorkingState struct {
	PlaylistID     string `json:"playlist_id"`
	LastTrackIndex *int   `json:"last_track_index,omitempty"`
}

// PointerPath returns the working-playlist pointer file location.
func PointerPath(root string) string {
	return filepath.Join(root, "working_playlist.json")
}

// LoadPointer reads the current working-playlist id.
func LoadPointer(root string) (string, error) {
	state, err := LoadState(root)
	if err != nil {
		return "", err
	}
	return state.PlaylistID, nil
}

// LoadState reads the full working-playlist pointer state.
func LoadState(root string) (WorkingState, error) {
	var state WorkingState

	path := PointerPath(root)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return state, nil
	}

	if err := shared.ReadJSON(path, &state); err != nil {
		return state, err
	}
	return state, nil
}

// SavePointer sets the working-playlist pointer to playlistID, clearing
// any previously recorded last-track-index (matching init/switch, which
// start a fresh tracking session for the new playlist).
func SavePointer(root, playlistID string) error {
	return SaveState(root, WorkingState{PlaylistID: playlistID})
}

// SaveState writes the full working-playlist pointer state.
func SaveState(root string, state WorkingState) error {
	if err := shared.EnsureDir(root); err != nil {
		return err
	}
	return shared.WriteJSON(PointerPath(root), state)
}

// SaveLastTrackIndex records the last track index played within the
// current working playlist, preserving the playlist id already pointed
// to.
func SaveLastTrackIndex(root string, index int) error {
	state, err := LoadState(root)
	if err != nil {
		return err
	}
	state.LastTrackIndex = &index
	return SaveState(root, state)
}

// package staging implements the per-playlist staged-patch buffer: an
// advisory, non-validating accumulator of TrackChanges awaiting commit.
package staging

import (
	"os"
	"path/filepath"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/shared"
)

// Path returns the staged-patch file location for a playlist.
func Path(root, playlistID string) string {
	return filepath.Join(root, "playlists", playlistID, "staged.json")
}

// Load reads the staged patch for a playlist. A missing file reads as an
// empty patch, matching a playlist with nothing staged.
func Load(root, playlistID string) (models.StagedPatch, error) {
	path := Path(root, playlistID)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return models.StagedPatch{}, nil
	}

	var patch models.StagedPatch
	if err := shared.ReadJSON(path, &patch); err != nil {
		return patch, err
	}
	return patch, nil
}

// StageChange appends change to the playlist's staged patch, creating it
// if absent. Staging is advisory: no feasibility check runs here, per
// spec — the applier absorbs stale or out-of-range changes at commit time.
func StageChange(root, playlistID string, change models.TrackChange) error {
	patch, err := Load(root, playlistID)
	if err != nil {
		return err
	}

	patch.Changes = append(patch.Changes, change)

	if err := shared.EnsureDir(filepath.Dir(Path(root, playlistID))); err != nil {
		return err
	}

	return shared.WriteJSON(Path(root, playlistID), patch)
}

// Clear removes the staged patch for a playlist. Clearing an already-empty
// or nonexistent patch is a no-op.
func Clear(root, playlistID string) error {
	path := Path(root, playlistID)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// NextAddIndex computes the index a new Added change should carry, per
// spec invariant I4: staging order is assumed to be commit order, so each
// staged addition's index is the current snapshot length plus the number
// of additions already staged ahead of it.
func NextAddIndex(currentLength int, alreadyStaged models.StagedPatch) int {
	count := 0
	for _, c := range alreadyStaged.Changes {
		if c.Kind == models.Added {
			count++
		}
	}
	return currentLength + count
}

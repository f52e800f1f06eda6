package snapshot

import (
	"os"
	"path/filepath"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// HeadPath returns the path of the by-playlist head snapshot: the file that
// always holds the current committed state.
func HeadPath(root, playlistID string) string {
	return filepath.Join(root, "playlists", playlistID, "playlist.yaml")
}

// ObjectPath returns the path of an immutable by-hash snapshot blob.
func ObjectPath(root, playlistID, hash string) string {
	return filepath.Join(root, "playlists", playlistID, "objects", hash+".yaml")
}

// Save writes s to path, creating parent directories as needed.
func Save(path string, s models.PlaylistSnapshot) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "failed to serialize snapshot")
	}

	if err := shared.EnsureDir(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "failed to create snapshot directory")
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write snapshot to %s", path)
	}

	return nil
}

// Load reads and parses a snapshot from path.
func Load(path string) (models.PlaylistSnapshot, error) {
	var s models.PlaylistSnapshot

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, errors.Wrapf(shared.ErrSnapshotMissing, "%s", path)
		}
		return s, errors.Wrapf(err, "failed to read snapshot from %s", path)
	}

	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, errors.Wrapf(err, "failed to parse snapshot yaml at %s", path)
	}

	return s, nil
}

// SaveByHash stamps s with its content hash and writes it to both the
// immutable object pool and the playlist's head file, returning the hash.
// This is the only path by which a snapshot blob is ever created: init,
// commit, pull, and apply call it. Revert reuses an existing blob and
// rewrites only the head file.
func SaveByHash(root, playlistID string, s models.PlaylistSnapshot) (string, error) {
	stamped, err := Stamp(s)
	if err != nil {
		return "", err
	}

	if err := Save(ObjectPath(root, playlistID, stamped.SnapshotHash), stamped); err != nil {
		return "", err
	}

	if err := Save(HeadPath(root, playlistID), stamped); err != nil {
		return "", err
	}

	return stamped.SnapshotHash, nil
}

// LoadHead loads the current committed snapshot for playlistID.
func LoadHead(root, playlistID string) (models.PlaylistSnapshot, error) {
	return Load(HeadPath(root, playlistID))
}

// LoadByHash loads a historical snapshot by its content hash, verifying it
// rehashes to the same value (spec invariant I2: a tampered or truncated
// object blob must fail loudly, not silently).
func LoadByHash(root, playlistID, hash string) (models.PlaylistSnapshot, error) {
	s, err := Load(ObjectPath(root, playlistID, hash))
	if err != nil {
		return s, err
	}

	recomputed, err := ComputeHash(s)
	if err != nil {
		return s, err
	}

	if recomputed != hash {
		return s, errors.Wrapf(shared.ErrHashMismatch, "object %s rehashes to %s", hash, recomputed)
	}

	return s, nil
}

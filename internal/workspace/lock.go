package workspace

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/grit-vcs/grit/internal/shared"
)

// playlistLock returns an advisory file lock for a single playlist,
// covering any staging or journal write for the duration it is held
// (spec §5's recommended-but-unimplemented hardening; this rewrite
// implements it since a real dependency for it exists in the pack).
func playlistLock(root, playlistID string) *flock.Flock {
	path := filepath.Join(root, "playlists", playlistID, ".lock")
	return flock.New(path)
}

// withPlaylistLock creates the playlist directory, acquires its advisory
// lock, runs fn, and releases the lock before returning.
func withPlaylistLock(root, playlistID string, fn func() error) error {
	if err := shared.EnsureDir(filepath.Join(root, "playlists", playlistID)); err != nil {
		return err
	}

	lock := playlistLock(root, playlistID)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock for playlist %s: %w", playlistID, err)
	}
	defer lock.Unlock()

	return fn()
}

package workspace

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/grit-vcs/grit/internal/diff"
	"github.com/grit-vcs/grit/internal/journal"
	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/providers"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/grit-vcs/grit/internal/snapshot"
	"github.com/grit-vcs/grit/internal/staging"
)

// Engine is the porcelain type wiring the snapshot store, diff engine,
// staging area, and journal into the VCS-like operations a CLI issues.
// It takes no global mutable state: the root is passed explicitly to
// NewEngine and held on the Engine, grounded on the teacher's PlaylistEngine/SyncEngine split
// between orchestration and service access.
type Engine struct {
	Root   string
	Logger *log.Logger
}

// NewEngine constructs an Engine rooted at root.
func NewEngine(root string, logger *log.Logger) *Engine {
	return &Engine{Root: root, Logger: logger}
}

// Init fetches a playlist for the first time from p, stores it as the
// initial snapshot, records an Init journal entry, and points the
// workspace at it.
func (e *Engine) Init(ctx context.Context, p providers.Provider, playlistID string, progress chan<- ProgressUpdate) (models.PlaylistSnapshot, error) {
	headPath := snapshot.HeadPath(e.Root, playlistID)
	if _, err := os.Stat(headPath); err == nil {
		return models.PlaylistSnapshot{}, fmt.Errorf("playlist %s already initialized; run pull to update", playlistID)
	}

	var result models.PlaylistSnapshot
	err := withPlaylistLock(e.Root, playlistID, func() error {
		sendProgress(progress, ProgressUpdate{Phase: PhaseFetch, Message: "fetching playlist"})

		snap, err := p.Fetch(ctx, playlistID)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		added := len(snap.Tracks)

		sendProgress(progress, ProgressUpdate{Phase: PhaseHash, Message: "computing snapshot hash"})
		hash, err := snapshot.SaveByHash(e.Root, playlistID, snap)
		if err != nil {
			return err
		}

		entry := journal.NewEntry(models.OpInit, hash, added, 0, 0, "")
		sendProgress(progress, ProgressUpdate{Phase: PhaseJournal, Message: "appending journal entry"})
		if err := journal.Append(journal.Path(e.Root, playlistID), entry); err != nil {
			return err
		}

		if err := staging.Clear(e.Root, playlistID); err != nil {
			return err
		}

		if err := SavePointer(e.Root, playlistID); err != nil {
			return err
		}

		result, err = snapshot.LoadHead(e.Root, playlistID)
		return err
	})

	return result, err
}

// Stage appends change to playlistID's staged patch.
func (e *Engine) Stage(playlistID string, change models.TrackChange) error {
	return withPlaylistLock(e.Root, playlistID, func() error {
		return staging.StageChange(e.Root, playlistID, change)
	})
}

// Status reports the current head snapshot and staged patch for
// playlistID.
func (e *Engine) Status(playlistID string) (models.PlaylistSnapshot, models.StagedPatch, error) {
	head, err := snapshot.LoadHead(e.Root, playlistID)
	if err != nil {
		return head, models.StagedPatch{}, err
	}
	patch, err := staging.Load(e.Root, playlistID)
	return head, patch, err
}

// Commit applies the staged patch to the head snapshot, rehashes and
// stores the result, records a Commit journal entry carrying message,
// and clears staging.
func (e *Engine) Commit(playlistID, message string) (string, error) {
	var hash string

	err := withPlaylistLock(e.Root, playlistID, func() error {
		head, err := snapshot.LoadHead(e.Root, playlistID)
		if err != nil {
			return err
		}

		patch, err := staging.Load(e.Root, playlistID)
		if err != nil {
			return err
		}

		if err := diff.Apply(&head, patch, e.Logger); err != nil {
			return err
		}

		hash, err = snapshot.SaveByHash(e.Root, playlistID, head)
		if err != nil {
			return err
		}

		added, removed, moved := patch.Counts()
		entry := journal.NewEntry(models.OpCommit, hash, added, removed, moved, message)
		if err := journal.Append(journal.Path(e.Root, playlistID), entry); err != nil {
			return err
		}

		return staging.Clear(e.Root, playlistID)
	})

	return hash, err
}

// Apply applies an explicit patch directly to the head snapshot and records
// an Apply journal entry carrying message, distinct from Commit: Commit
// consumes and clears the staging area, while Apply takes a patch handed in
// by the caller (e.g. one loaded from a file) and never touches staging.
// This is the path for replaying a saved patch or applying one received
// from outside the local staging flow.
func (e *Engine) Apply(playlistID, message string, patch models.DiffPatch) (string, error) {
	var hash string

	err := withPlaylistLock(e.Root, playlistID, func() error {
		head, err := snapshot.LoadHead(e.Root, playlistID)
		if err != nil {
			return err
		}

		if err := diff.Apply(&head, patch, e.Logger); err != nil {
			return err
		}

		hash, err = snapshot.SaveByHash(e.Root, playlistID, head)
		if err != nil {
			return err
		}

		added, removed, moved := patch.Counts()
		entry := journal.NewEntry(models.OpApply, hash, added, removed, moved, message)
		return journal.Append(journal.Path(e.Root, playlistID), entry)
	})

	return hash, err
}

// Diff recomputes the diff that push would apply upstream: the edit script
// that turns the current remote state into the local head (§8 P1 — to
// drive remote -> head, the patch is diff(remote, head)), without applying
// anything. This is what push recomputes internally and what a CLI "diff"
// subcommand surfaces for review.
func (e *Engine) Diff(ctx context.Context, p providers.Provider, playlistID string) (models.DiffPatch, error) {
	head, err := snapshot.LoadHead(e.Root, playlistID)
	if err != nil {
		return models.DiffPatch{}, err
	}

	remote, err := p.Fetch(ctx, playlistID)
	if err != nil {
		return models.DiffPatch{}, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return diff.Diff(remote, head)
}

// Push recomputes the diff between the current remote and the
// last-committed local snapshot, hands it to the provider's Apply so the
// remote comes to mirror local head, and records a Push journal entry
// carrying the local head's hash. If Apply fails partway through, the
// local snapshot is left untouched — the next status/push recomputes
// against whatever the remote now looks like, per spec's failure policy.
func (e *Engine) Push(ctx context.Context, p providers.Provider, playlistID string, progress chan<- ProgressUpdate) (models.DiffPatch, error) {
	var patch models.DiffPatch

	err := withPlaylistLock(e.Root, playlistID, func() error {
		head, err := snapshot.LoadHead(e.Root, playlistID)
		if err != nil {
			return err
		}

		sendProgress(progress, ProgressUpdate{Phase: PhaseFetch, Message: "fetching remote state"})
		remote, err := p.Fetch(ctx, playlistID)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		patch, err = diff.Diff(remote, head)
		if err != nil {
			return err
		}

		sendProgress(progress, ProgressUpdate{Phase: PhaseApplyRemote, Message: "applying patch upstream"})
		if err := p.Apply(ctx, playlistID, patch); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		added, removed, moved := patch.Counts()
		hash, err := snapshot.ComputeHash(head)
		if err != nil {
			return err
		}
		entry := journal.NewEntry(models.OpPush, hash, added, removed, moved, "")
		return journal.Append(journal.Path(e.Root, playlistID), entry)
	})

	return patch, err
}

// Pull fetches the remote playlist and replaces the local snapshot with
// it, recording a Pull journal entry.
func (e *Engine) Pull(ctx context.Context, p providers.Provider, playlistID string, progress chan<- ProgressUpdate) (models.PlaylistSnapshot, error) {
	var result models.PlaylistSnapshot

	err := withPlaylistLock(e.Root, playlistID, func() error {
		sendProgress(progress, ProgressUpdate{Phase: PhaseFetch, Message: "fetching remote state"})
		remote, err := p.Fetch(ctx, playlistID)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
		}

		hash, err := snapshot.SaveByHash(e.Root, playlistID, remote)
		if err != nil {
			return err
		}

		entry := journal.NewEntry(models.OpPull, hash, len(remote.Tracks), 0, 0, "")
		if err := journal.Append(journal.Path(e.Root, playlistID), entry); err != nil {
			return err
		}

		result, err = snapshot.LoadHead(e.Root, playlistID)
		return err
	})

	return result, err
}

// Revert replaces the head snapshot with the historical blob stored at
// hash, records a Revert journal entry carrying that hash, and clears
// staging. History remains append-only: the revert is recorded, not
// erased.
func (e *Engine) Revert(playlistID, hash string) error {
	return withPlaylistLock(e.Root, playlistID, func() error {
		target, err := snapshot.LoadByHash(e.Root, playlistID, hash)
		if err != nil {
			return err
		}

		if err := snapshot.Save(snapshot.HeadPath(e.Root, playlistID), target); err != nil {
			return err
		}

		entry := journal.NewEntry(models.OpRevert, hash, 0, 0, 0, "")
		if err := journal.Append(journal.Path(e.Root, playlistID), entry); err != nil {
			return err
		}

		return staging.Clear(e.Root, playlistID)
	})
}

// Log returns the full journal history for playlistID, in append order.
func (e *Engine) Log(playlistID string) ([]models.JournalEntry, error) {
	return journal.ReadAll(journal.Path(e.Root, playlistID))
}

// Switch repoints the workspace's working-playlist pointer at a different
// already-initialized playlist.
func (e *Engine) Switch(playlistID string) error {
	if _, err := snapshot.LoadHead(e.Root, playlistID); err != nil {
		return err
	}
	return SavePointer(e.Root, playlistID)
}

// package journal implements the append-only per-playlist history log.
package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/pkg/errors"
)

// Path returns the journal file location for a playlist.
func Path(root, playlistID string) string {
	return filepath.Join(root, "playlists", playlistID, "journal.log")
}

// NewEntry builds a journal entry stamped with the current time.
func NewEntry(op models.Operation, hash string, added, removed, moved int, message string) models.JournalEntry {
	return models.JournalEntry{
		Timestamp:    time.Now().UTC(),
		Operation:    op,
		SnapshotHash: hash,
		Added:        added,
		Removed:      removed,
		Moved:        moved,
		Message:      message,
	}
}

// Append writes entry as one newline-delimited JSON line, creating path
// (and its parent directory) if absent. Existing lines are never rewritten.
func Append(path string, entry models.JournalEntry) error {
	if err := shared.EnsureDir(filepath.Dir(path)); err != nil {
		return errors.Wrap(err, "failed to create journal directory")
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to open journal %s", path)
	}
	defer file.Close()

	line, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "failed to serialize journal entry")
	}

	if _, err := file.Write(append(line, '\n')); err != nil {
		return errors.Wrapf(err, "failed to write to journal %s", path)
	}

	return nil
}

// ReadAll returns every entry in path, in append order. A missing journal
// is not an error: it reads as empty, matching a playlist with no history
// yet. A corrupt trailing line is fatal, per spec: the journal never
// attempts to repair itself.
func ReadAll(path string) ([]models.JournalEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read journal %s", path)
	}

	var entries []models.JournalEntry
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry models.JournalEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, errors.Wrapf(shared.ErrJournalCorrupt, "%s: %v", line, err)
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to scan journal %s", path)
	}

	return entries, nil
}

// Last returns the most recent entry in path, or false if the journal is
// empty.
func Last(path string) (models.JournalEntry, bool, error) {
	entries, err := ReadAll(path)
	if err != nil {
		return models.JournalEntry{}, false, err
	}
	if len(entries) == 0 {
		return models.JournalEntry{}, false, nil
	}
	return entries[len(entries)-1], true, nil
}

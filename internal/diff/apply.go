package diff

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/grit-vcs/grit/internal/models"
)

// Apply mutates snapshot in place so its track sequence reflects patch,
// following the mandatory ordering of spec §4.D: removals (descending
// index), then additions (given order, clamped to append), then moves
// (given order, silently skipped out of range). logger may be nil; when
// provided, skipped moves are logged at debug level.
func Apply(snapshot *models.PlaylistSnapshot, patch models.DiffPatch, logger *log.Logger) error {
	var removals, additions, moves []models.TrackChange

	for _, c := range patch.Changes {
		switch c.Kind {
		case models.Removed:
			removals = append(removals, c)
		case models.Added:
			additions = append(additions, c)
		case models.Moved:
			moves = append(moves, c)
		}
	}

	sort.Slice(removals, func(i, j int) bool { return removals[i].Index > removals[j].Index })

	for _, r := range removals {
		if r.Index < 0 || r.Index >= len(snapshot.Tracks) {
			continue
		}
		snapshot.Tracks = append(snapshot.Tracks[:r.Index], snapshot.Tracks[r.Index+1:]...)
	}

	for _, a := range additions {
		idx := a.Index
		if idx < 0 || idx > len(snapshot.Tracks) {
			idx = len(snapshot.Tracks)
		}
		snapshot.Tracks = append(snapshot.Tracks, models.Track{})
		copy(snapshot.Tracks[idx+1:], snapshot.Tracks[idx:])
		snapshot.Tracks[idx] = a.Track
	}

	for _, m := range moves {
		// Removals/additions already ran, so m.From (captured against the
		// pre-patch snapshot by the diff engine) no longer reliably
		// addresses the moved track's current slot; locate it by identity
		// instead and only use m.To as the target position.
		from := indexOf(snapshot.Tracks, m.Track.ID)
		if from < 0 || m.To < 0 || m.To >= len(snapshot.Tracks) {
			if logger != nil {
				logger.Debug("skipping out-of-range move", "from", m.From, "to", m.To, "track_id", m.Track.ID)
			}
			continue
		}

		t := snapshot.Tracks[from]
		snapshot.Tracks = append(snapshot.Tracks[:from], snapshot.Tracks[from+1:]...)

		to := m.To
		if to > len(snapshot.Tracks) {
			to = len(snapshot.Tracks)
		}
		snapshot.Tracks = append(snapshot.Tracks, models.Track{})
		copy(snapshot.Tracks[to+1:], snapshot.Tracks[to:])
		snapshot.Tracks[to] = t
	}

	return nil
}

func indexOf(tracks []models.Track, id string) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

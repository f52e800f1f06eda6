// package diff computes and applies DiffPatches between two playlist
// snapshots.
package diff

import (
	"fmt"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/shared"
)

type indexed struct {
	pos   int
	track models.Track
}

// Diff classifies each track id in old and new into Removed/Added/Moved,
// keyed by track identity. Duplicate ids within either snapshot are
// rejected rather than silently collapsed: the map-based algorithm can
// only keep one occurrence per id, and picking a winner arbitrarily would
// make push/pull silently drop data for playlists that legitimately
// repeat a track.
func Diff(old, new models.PlaylistSnapshot) (models.DiffPatch, error) {
	oldMap, err := buildIndex(old.Tracks)
	if err != nil {
		return models.DiffPatch{}, fmt.Errorf("old snapshot: %w", err)
	}

	newMap, err := buildIndex(new.Tracks)
	if err != nil {
		return models.DiffPatch{}, fmt.Errorf("new snapshot: %w", err)
	}

	var changes []models.TrackChange

	for id, o := range oldMap {
		if _, ok := newMap[id]; !ok {
			changes = append(changes, models.TrackChange{
				Kind:  models.Removed,
				Track: o.track,
				Index: o.pos,
			})
		}
	}

	for id, n := range newMap {
		if _, ok := oldMap[id]; !ok {
			changes = append(changes, models.TrackChange{
				Kind:  models.Added,
				Track: n.track,
				Index: n.pos,
			})
		}
	}

	for id, n := range newMap {
		if o, ok := oldMap[id]; ok && o.pos != n.pos {
			changes = append(changes, models.TrackChange{
				Kind:  models.Moved,
				Track: n.track,
				From:  o.pos,
				To:    n.pos,
			})
		}
	}

	return models.DiffPatch{Changes: changes}, nil
}

func buildIndex(tracks []models.Track) (map[string]indexed, error) {
	m := make(map[string]indexed, len(tracks))
	for pos, t := range tracks {
		if existing, ok := m[t.ID]; ok {
			return nil, fmt.Errorf("%w: id %q at positions %d and %d", shared.ErrDuplicateTrackID, t.ID, existing.pos, pos)
		}
		m[t.ID] = indexed{pos: pos, track: t}
	}
	return m, nil
}

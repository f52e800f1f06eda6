package diff

import (
	"errors"
	"reflect"
	"testing"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/shared"
)

func track(id string) models.Track {
	return models.Track{Provider: models.Spotify, ID: id, Name: id}
}

func snap(ids ...string) models.PlaylistSnapshot {
	tracks := make([]models.Track, len(ids))
	for i, id := range ids {
		tracks[i] = track(id)
	}
	return models.PlaylistSnapshot{ID: "pl1", Provider: models.Spotify, Tracks: tracks}
}

func TestDiffEmptyWhenEqual(t *testing.T) {
	s := snap("a", "b", "c")

	patch, err := Diff(s, s)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}
	if len(patch.Changes) != 0 {
		t.Errorf("Diff(A, A).Changes = %v, want empty", patch.Changes)
	}
}

func TestDiffClassification(t *testing.T) {
	old := snap("a", "b", "c")
	new := snap("c", "a", "d")

	patch, err := Diff(old, new)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}

	var added, removed, moved int
	for _, c := range patch.Changes {
		switch c.Kind {
		case models.Added:
			added++
			if c.Track.ID != "d" {
				t.Errorf("unexpected added track %v", c.Track.ID)
			}
		case models.Removed:
			removed++
			if c.Track.ID != "b" {
				t.Errorf("unexpected removed track %v", c.Track.ID)
			}
		case models.Moved:
			moved++
			if c.Track.ID != "a" && c.Track.ID != "c" {
				t.Errorf("unexpected moved track %v", c.Track.ID)
			}
		}
	}

	if added != 1 || removed != 1 || moved != 2 {
		t.Errorf("counts = added:%d removed:%d moved:%d, want 1,1,2", added, removed, moved)
	}
}

func TestDiffRejectsDuplicateIDs(t *testing.T) {
	old := snap("a", "a", "b")
	new := snap("a", "b")

	_, err := Diff(old, new)
	if !errors.Is(err, shared.ErrDuplicateTrackID) {
		t.Errorf("Diff() error = %v, want ErrDuplicateTrackID", err)
	}
}

func TestApplyRemovalOrderScenario(t *testing.T) {
	// Scenario 2 from spec: pre [A,B,C,D,E], Removed@1, Removed@3, Added{F,0}
	// => post [F,A,C,E].
	s := snap("A", "B", "C", "D", "E")
	patch := models.DiffPatch{Changes: []models.TrackChange{
		{Kind: models.Removed, Track: track("D"), Index: 3},
		{Kind: models.Added, Track: track("F"), Index: 0},
		{Kind: models.Removed, Track: track("B"), Index: 1},
	}}

	if err := Apply(&s, patch, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := []string{"F", "A", "C", "E"}
	got := ids(s.Tracks)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() tracks = %v, want %v", got, want)
	}
}

func TestApplyMoveForwardScenario(t *testing.T) {
	s := snap("A", "B", "C", "D")
	patch := models.DiffPatch{Changes: []models.TrackChange{
		{Kind: models.Moved, Track: track("A"), From: 0, To: 2},
	}}

	if err := Apply(&s, patch, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := []string{"B", "C", "A", "D"}
	if got := ids(s.Tracks); !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() tracks = %v, want %v", got, want)
	}
}

func TestApplyMoveBackwardScenario(t *testing.T) {
	s := snap("A", "B", "C", "D")
	patch := models.DiffPatch{Changes: []models.TrackChange{
		{Kind: models.Moved, Track: track("D"), From: 3, To: 1},
	}}

	if err := Apply(&s, patch, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := []string{"A", "D", "B", "C"}
	if got := ids(s.Tracks); !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() tracks = %v, want %v", got, want)
	}
}

func TestApplyRemovalOrderIndependent(t *testing.T) {
	// P5: removals at {2,5,7} in a 10-track snapshot yield a 7-track result
	// regardless of patch.Changes order.
	base := snap("0", "1", "2", "3", "4", "5", "6", "7", "8", "9")

	forward := models.DiffPatch{Changes: []models.TrackChange{
		{Kind: models.Removed, Track: track("2"), Index: 2},
		{Kind: models.Removed, Track: track("5"), Index: 5},
		{Kind: models.Removed, Track: track("7"), Index: 7},
	}}
	reversed := models.DiffPatch{Changes: []models.TrackChange{
		{Kind: models.Removed, Track: track("7"), Index: 7},
		{Kind: models.Removed, Track: track("5"), Index: 5},
		{Kind: models.Removed, Track: track("2"), Index: 2},
	}}

	s1 := base
	s1.Tracks = append([]models.Track(nil), base.Tracks...)
	s2 := base
	s2.Tracks = append([]models.Track(nil), base.Tracks...)

	if err := Apply(&s1, forward, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := Apply(&s2, reversed, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if len(s1.Tracks) != 7 || len(s2.Tracks) != 7 {
		t.Fatalf("Apply() track counts = %d, %d, want 7", len(s1.Tracks), len(s2.Tracks))
	}
	if !reflect.DeepEqual(ids(s1.Tracks), ids(s2.Tracks)) {
		t.Errorf("Apply() order-dependent result: %v != %v", ids(s1.Tracks), ids(s2.Tracks))
	}
}

func TestApplySkipsOutOfRangeMove(t *testing.T) {
	s := snap("A", "B", "C")
	patch := models.DiffPatch{Changes: []models.TrackChange{
		{Kind: models.Moved, Track: track("A"), From: 0, To: 99},
	}}

	if err := Apply(&s, patch, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := []string{"A", "B", "C"}
	if got := ids(s.Tracks); !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() should leave snapshot unchanged on out-of-range move, got %v", got)
	}
}

func TestApplyRoundTripsWithDiff(t *testing.T) {
	// P1: apply(A, diff(A, B)) == B when A, B have no duplicate ids.
	a := snap("A", "B", "C")
	b := snap("C", "A", "D")

	patch, err := Diff(a, b)
	if err != nil {
		t.Fatalf("Diff() error = %v", err)
	}

	got := a
	got.Tracks = append([]models.Track(nil), a.Tracks...)
	if err := Apply(&got, patch, nil); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if !reflect.DeepEqual(ids(got.Tracks), ids(b.Tracks)) {
		t.Errorf("Apply(A, Diff(A,B)) = %v, want %v", ids(got.Tracks), ids(b.Tracks))
	}
}

func ids(tracks []models.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

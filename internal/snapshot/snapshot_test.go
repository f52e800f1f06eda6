package snapshot

import (
	"path/filepath"
	"testing"

	"github.com/grit-vcs/grit/internal/models"
)

func sampleSnapshot() models.PlaylistSnapshot {
	return models.PlaylistSnapshot{
		ID:       "37i9dQZF1E39vTG",
		Name:     "Road Trip",
		Provider: models.Spotify,
		Tracks: []models.Track{
			{Provider: models.Spotify, ID: "a", Name: "Song A", Artists: []string{"Artist A"}},
			{Provider: models.Spotify, ID: "b", Name: "Song B", Artists: []string{"Artist B"}},
		},
	}
}

func TestComputeHashDeterministic(t *testing.T) {
	s := sampleSnapshot()

	h1, err := ComputeHash(s)
	if err != nil {
		t.Fatalf("ComputeHash() error = %v", err)
	}
	h2, err := ComputeHash(s)
	if err != nil {
		t.Fatalf("ComputeHash() error = %v", err)
	}

	if h1 != h2 {
		t.Errorf("ComputeHash() not deterministic: %v != %v", h1, h2)
	}
	if len(h1) != 12 {
		t.Errorf("ComputeHash() length = %d, want 12", len(h1))
	}
}

func TestComputeHashOrderSensitive(t *testing.T) {
	s := sampleSnapshot()
	reordered := sampleSnapshot()
	reordered.Tracks[0], reordered.Tracks[1] = reordered.Tracks[1], reordered.Tracks[0]

	h1, err := ComputeHash(s)
	if err != nil {
		t.Fatalf("ComputeHash() error = %v", err)
	}
	h2, err := ComputeHash(reordered)
	if err != nil {
		t.Fatalf("ComputeHash() error = %v", err)
	}

	if h1 == h2 {
		t.Errorf("ComputeHash() should differ on reordered tracks, both = %v", h1)
	}
}

func TestComputeHashIgnoresStoredHash(t *testing.T) {
	s := sampleSnapshot()
	s.SnapshotHash = "deadbeefcafe"

	h, err := ComputeHash(s)
	if err != nil {
		t.Fatalf("ComputeHash() error = %v", err)
	}

	s2 := sampleSnapshot()
	h2, err := ComputeHash(s2)
	if err != nil {
		t.Fatalf("ComputeHash() error = %v", err)
	}

	if h != h2 {
		t.Errorf("ComputeHash() should ignore existing SnapshotHash field, got %v want %v", h, h2)
	}
}

func TestSaveByHashAndLoad(t *testing.T) {
	root := t.TempDir()
	s := sampleSnapshot()

	hash, err := SaveByHash(root, s.ID, s)
	if err != nil {
		t.Fatalf("SaveByHash() error = %v", err)
	}

	head, err := LoadHead(root, s.ID)
	if err != nil {
		t.Fatalf("LoadHead() error = %v", err)
	}
	if head.SnapshotHash != hash {
		t.Errorf("head.SnapshotHash = %v, want %v", head.SnapshotHash, hash)
	}

	byHash, err := LoadByHash(root, s.ID, hash)
	if err != nil {
		t.Fatalf("LoadByHash() error = %v", err)
	}
	if len(byHash.Tracks) != len(s.Tracks) {
		t.Errorf("LoadByHash() track count = %d, want %d", len(byHash.Tracks), len(s.Tracks))
	}
}

func TestLoadByHashRejectsTamperedBlob(t *testing.T) {
	root := t.TempDir()
	s := sampleSnapshot()

	hash, err := SaveByHash(root, s.ID, s)
	if err != nil {
		t.Fatalf("SaveByHash() error = %v", err)
	}

	tampered := s
	tampered.Name = "Tampered Name"
	if err := Save(ObjectPath(root, s.ID, hash), tampered); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := LoadByHash(root, s.ID, hash); err == nil {
		t.Errorf("LoadByHash() expected hash mismatch error, got nil")
	}
}

func TestHeadPathAndObjectPathLayout(t *testing.T) {
	root := "/tmp/.grit"
	want := filepath.Join(root, "playlists", "pl1", "playlist.yaml")
	if got := HeadPath(root, "pl1"); got != want {
		t.Errorf("HeadPath() = %v, want %v", got, want)
	}

	wantObj := filepath.Join(root, "playlists", "pl1", "objects", "abc123.yaml")
	if got := ObjectPath(root, "pl1", "abc123"); got != wantObj {
		t.Errorf("ObjectPath() = %v, want %v", got, wantObj)
	}
}

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/grit-vcs/grit/internal/models"
	grittesting "github.com/grit-vcs/grit/internal/testing"
	"github.com/urfave/cli/v3"
)

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	root := t.TempDir()
	r := NewRunner(RunnerConfig{Root: root, Output: &out})
	return r, &out
}

func seedPlaylist(t *testing.T, r *Runner, playlistID string, trackIDs ...string) {
	t.Helper()
	snap := grittesting.NewSnapshot(playlistID, trackIDs...)
	mock := &grittesting.MockProvider{Kind_: models.Spotify, FetchResult: snap}
	if _, err := r.engine.Init(context.Background(), mock, playlistID, nil); err != nil {
		t.Fatalf("seed Init() error = %v", err)
	}
}

func TestResolvePlaylistID_ExplicitWins(t *testing.T) {
	r, _ := newTestRunner(t)
	id, err := r.resolvePlaylistID("explicit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "explicit" {
		t.Fatalf("got %q, want %q", id, "explicit")
	}
}

func TestResolvePlaylistID_FallsBackToPointer(t *testing.T) {
	r, _ := newTestRunner(t)
	seedPlaylist(t, r, "pl1", "a", "b")

	id, err := r.resolvePlaylistID("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "pl1" {
		t.Fatalf("got %q, want %q", id, "pl1")
	}
}

func TestResolvePlaylistID_NoPointerIsError(t *testing.T) {
	r, _ := newTestRunner(t)
	if _, err := r.resolvePlaylistID(""); err == nil {
		t.Fatal("expected error when no playlist id is available")
	}
}

func TestStageAddComputesIndexFromHeadLength(t *testing.T) {
	r, out := newTestRunner(t)
	seedPlaylist(t, r, "pl1", "a", "b")

	cmd := &cli.Command{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist"},
			&cli.StringFlag{Name: "name"},
			&cli.StringFlag{Name: "artist"},
			&cli.IntFlag{Name: "duration-ms"},
		},
		Arguments: []cli.Argument{&cli.StringArg{Name: "track-id"}},
	}
	if err := cmd.Run(context.Background(), []string{"x", "c", "--playlist", "pl1", "--name", "Song C"}); err != nil {
		t.Fatalf("flag parse error = %v", err)
	}

	if err := r.StageAdd(context.Background(), cmd); err != nil {
		t.Fatalf("StageAdd() error = %v", err)
	}

	_, patch, err := r.engine.Status("pl1")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(patch.Changes) != 1 {
		t.Fatalf("expected 1 staged change, got %d", len(patch.Changes))
	}
	if patch.Changes[0].Index != 2 {
		t.Fatalf("expected staged index 2, got %d", patch.Changes[0].Index)
	}
	if out.Len() == 0 {
		t.Fatal("expected confirmation output")
	}
}

func TestStageRemoveRejectsOutOfRangeIndex(t *testing.T) {
	r, _ := newTestRunner(t)
	seedPlaylist(t, r, "pl1", "a", "b")

	cmd := &cli.Command{
		Flags:     []cli.Flag{&cli.StringFlag{Name: "playlist"}},
		Arguments: []cli.Argument{&cli.StringArg{Name: "index"}},
	}
	if err := cmd.Run(context.Background(), []string{"x", "--playlist", "pl1", "9"}); err != nil {
		t.Fatalf("flag parse error = %v", err)
	}

	if err := r.StageRemove(context.Background(), cmd); err == nil {
		t.Fatal("expected out-of-range error")
	}
}

func TestCommitAppliesStagedChangesAndClearsStaging(t *testing.T) {
	r, _ := newTestRunner(t)
	seedPlaylist(t, r, "pl1", "a", "b")

	if err := r.engine.Stage("pl1", models.TrackChange{Kind: models.Removed, Track: models.Track{ID: "a"}, Index: 0}); err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	cmd := &cli.Command{Flags: []cli.Flag{
		&cli.StringFlag{Name: "playlist"},
		&cli.StringFlag{Name: "message"},
	}}
	if err := cmd.Run(context.Background(), []string{"x", "--playlist", "pl1", "--message", "drop a"}); err != nil {
		t.Fatalf("flag parse error = %v", err)
	}

	if err := r.Commit(context.Background(), cmd); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	head, patch, err := r.engine.Status("pl1")
	if err != nil {
		t.Fatalf("Status() error = %v", err)
	}
	if len(patch.Changes) != 0 {
		t.Fatalf("expected staging cleared, got %d changes", len(patch.Changes))
	}
	if len(head.Tracks) != 1 || head.Tracks[0].ID != "b" {
		t.Fatalf("unexpected head tracks: %+v", head.Tracks)
	}
}

func TestSwitchRejectsUninitializedPlaylist(t *testing.T) {
	r, _ := newTestRunner(t)

	cmd := &cli.Command{Arguments: []cli.Argument{&cli.StringArg{Name: "playlist-id"}}}
	if err := cmd.Run(context.Background(), []string{"x", "missing"}); err != nil {
		t.Fatalf("flag parse error = %v", err)
	}

	if err := r.Switch(context.Background(), cmd); err == nil {
		t.Fatal("expected error switching to an uninitialized playlist")
	}
}

func TestListenAddrFromRedirect(t *testing.T) {
	addr, err := listenAddrFromRedirect("http://127.0.0.1:8971/callback")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if addr != "127.0.0.1:8971" {
		t.Fatalf("got %q, want %q", addr, "127.0.0.1:8971")
	}
}

func TestListenAddrFromRedirect_Invalid(t *testing.T) {
	if _, err := listenAddrFromRedirect(""); err == nil {
		t.Fatal("expected error for empty redirect_uri")
	}
}

func TestSplitArtists(t *testing.T) {
	got := splitArtists("Alice, Bob,  Carol")
	want := []string{"Alice", "Bob", "Carol"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/grit-vcs/grit/internal/staging"
	"github.com/urfave/cli/v3"
)

func stageCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stage",
		Usage: "Accumulate track changes for the working playlist's next commit",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Stage a track addition",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "track-id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Track display name"},
					&cli.StringFlag{Name: "artist", Usage: "Track artists, comma-separated", Aliases: []string{"a"}},
					&cli.IntFlag{Name: "duration-ms", Usage: "Track duration in milliseconds"},
					&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
				},
				Action: r.StageAdd,
			},
			{
				Name:  "remove",
				Usage: "Stage a track removal by its current index",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "index"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
				},
				Action: r.StageRemove,
			},
			{
				Name:  "move",
				Usage: "Stage moving a track from one index to another",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "from"},
					&cli.StringArg{Name: "to"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
				},
				Action: r.StageMove,
			},
		},
	}
}

func parseIndexArg(cmd *cli.Command, name string) (int, error) {
	raw := cmd.StringArg(name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return n, nil
}

// StageAdd stages an Added change. The index is computed from the
// current head length plus any additions already staged ahead of it,
// per the staging area's ordering invariant.
func (r *Runner) StageAdd(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	trackID := cmd.StringArg("track-id")
	if trackID == "" {
		return fmt.Errorf("%w: track-id", shared.ErrMissingArgument)
	}

	head, patch, err := r.engine.Status(playlistID)
	if err != nil {
		return err
	}

	track := models.Track{
		Provider:   head.Provider,
		ID:         trackID,
		Name:       cmd.String("name"),
		Artists:    splitArtists(cmd.String("artist")),
		DurationMS: cmd.Int("duration-ms"),
	}

	change := models.TrackChange{
		Kind:  models.Added,
		Track: track,
		Index: staging.NextAddIndex(len(head.Tracks), patch),
	}

	if err := r.engine.Stage(playlistID, change); err != nil {
		return err
	}
	return r.writePlain("staged addition of %s at index %d\n", trackID, change.Index)
}

// StageRemove stages a Removed change at the given pre-state index.
func (r *Runner) StageRemove(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	index, err := parseIndexArg(cmd, "index")
	if err != nil {
		return err
	}

	head, _, err := r.engine.Status(playlistID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(head.Tracks) {
		return fmt.Errorf("%w: index %d out of range for %d tracks", shared.ErrInvalidArgument, index, len(head.Tracks))
	}

	change := models.TrackChange{
		Kind:  models.Removed,
		Track: head.Tracks[index],
		Index: index,
	}

	if err := r.engine.Stage(playlistID, change); err != nil {
		return err
	}
	return r.writePlain("staged removal of %s at index %d\n", change.Track.ID, index)
}

// StageMove stages a Moved change between two pre-state indices.
func (r *Runner) StageMove(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	from, err := parseIndexArg(cmd, "from")
	if err != nil {
		return err
	}
	to, err := parseIndexArg(cmd, "to")
	if err != nil {
		return err
	}

	head, _, err := r.engine.Status(playlistID)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(head.Tracks) {
		return fmt.Errorf("%w: from %d out of range for %d tracks", shared.ErrInvalidArgument, from, len(head.Tracks))
	}

	change := models.TrackChange{
		Kind:  models.Moved,
		Track: head.Tracks[from],
		From:  from,
		To:    to,
	}

	if err := r.engine.Stage(playlistID, change); err != nil {
		return err
	}
	return r.writePlain("staged move of %s from %d to %d\n", change.Track.ID, from, to)
}

func splitArtists(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package main

import (
	"context"
	"fmt"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/urfave/cli/v3"
)

func applyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "apply",
		Usage: "Apply a patch file directly to the head snapshot, bypassing staging",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "patch-file"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Apply message"},
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Apply,
	}
}

// Apply reads a DiffPatch from a JSON file named on the command line and
// applies it to the head snapshot directly, recording an Apply journal
// entry. Unlike Commit, it never reads from or clears the staging area.
func (r *Runner) Apply(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("patch-file")
	if path == "" {
		return fmt.Errorf("%w: patch-file", shared.ErrMissingArgument)
	}

	var patch models.DiffPatch
	if err := shared.ReadJSON(path, &patch); err != nil {
		return fmt.Errorf("failed to read patch file %s: %w", path, err)
	}

	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	hash, err := r.engine.Apply(playlistID, cmd.String("message"), patch)
	if err != nil {
		return err
	}

	return r.writePlain("applied %s as %s\n", playlistID, hash)
}

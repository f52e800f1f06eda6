package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

func commitCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "commit",
		Usage: "Apply staged changes to the head snapshot and record the result",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "Commit message"},
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Commit,
	}
}

// Commit applies the staged patch to the head snapshot, per the applier's
// mandatory removals-then-additions-then-moves ordering, and clears
// staging on success.
func (r *Runner) Commit(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	hash, err := r.engine.Commit(playlistID, cmd.String("message"))
	if err != nil {
		return err
	}

	return r.writePlain("committed %s as %s\n", playlistID, hash)
}

package main

import (
	"context"
	"fmt"

	"github.com/grit-vcs/grit/internal/shared"
	"github.com/urfave/cli/v3"
)

func logCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "log",
		Usage: "Show the append-only history of operations for a playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Log,
	}
}

func revertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "revert",
		Usage: "Replace the head snapshot with a historical snapshot hash",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "hash"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Revert,
	}
}

func switchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "switch",
		Usage: "Point the working-playlist pointer at a different initialized playlist",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "playlist-id"},
		},
		Action: r.Switch,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the head snapshot and staged changes for a playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Status,
	}
}

// Log prints the full journal history for a playlist in append order.
func (r *Runner) Log(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	entries, err := r.engine.Log(playlistID)
	if err != nil {
		return err
	}

	return r.writeJSON(entries)
}

// Revert replaces the head snapshot with a historical blob by hash.
func (r *Runner) Revert(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	hash := cmd.StringArg("hash")
	if hash == "" {
		return fmt.Errorf("%w: hash", shared.ErrMissingArgument)
	}

	if err := r.engine.Revert(playlistID, hash); err != nil {
		return err
	}

	return r.writePlain("reverted %s to %s\n", playlistID, hash)
}

// Switch repoints the working-playlist pointer.
func (r *Runner) Switch(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("playlist-id")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist-id", shared.ErrMissingArgument)
	}

	if err := r.engine.Switch(playlistID); err != nil {
		return err
	}

	return r.writePlain("switched to %s\n", playlistID)
}

// Status reports the head snapshot and staged patch for a playlist.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	head, patch, err := r.engine.Status(playlistID)
	if err != nil {
		return err
	}

	added, removed, moved := patch.Counts()
	if err := r.writePlain("playlist %s: %s (%d tracks)\n", playlistID, head.Name, len(head.Tracks)); err != nil {
		return err
	}
	return r.writePlain("staged: +%d -%d ~%d\n", added, removed, moved)
}

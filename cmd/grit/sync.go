package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

func diffCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "diff",
		Usage: "Show the patch push would apply upstream, without applying anything",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Diff,
	}
}

func pushCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "push",
		Usage: "Apply the difference between remote and local head so remote mirrors head",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Push,
	}
}

func pullCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Replace the head snapshot with the current remote state",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Pull,
	}
}

// Diff recomputes head-vs-remote without applying anything.
func (r *Runner) Diff(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	p, err := r.providerForPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	patch, err := r.engine.Diff(ctx, p, playlistID)
	if err != nil {
		return err
	}

	return r.writeJSON(patch)
}

// Push recomputes the diff against remote and applies it upstream.
func (r *Runner) Push(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	p, err := r.providerForPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	patch, err := r.engine.Push(ctx, p, playlistID, nil)
	if err != nil {
		return err
	}

	added, removed, moved := patch.Counts()
	return r.writePlain("pushed %s: +%d -%d ~%d\n", playlistID, added, removed, moved)
}

// Pull replaces the local head with the current remote state.
func (r *Runner) Pull(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	p, err := r.providerForPlaylist(ctx, playlistID)
	if err != nil {
		return err
	}

	snap, err := r.engine.Pull(ctx, p, playlistID, nil)
	if err != nil {
		return err
	}

	return r.writePlain("pulled %s (%d tracks)\n", snap.Name, len(snap.Tracks))
}

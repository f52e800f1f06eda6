package main

import (
	"context"
	"fmt"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/providers"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/urfave/cli/v3"
)

func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a workspace from a provider-hosted playlist or album URL",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "url-or-id"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Provider kind (spotify, youtube), inferred from the URL when omitted",
			},
		},
		Action: r.Init,
	}
}

// Init fetches a playlist for the first time and records it as the head
// snapshot, switching the workspace's working-playlist pointer to it.
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	input := cmd.StringArg("url-or-id")
	if input == "" {
		return fmt.Errorf("%w: url-or-id", shared.ErrMissingArgument)
	}

	kind, ok := providers.DetectProviderFromURL(input)
	if override := cmd.String("provider"); override != "" {
		kind, ok = models.ProviderKind(override), true
	}
	if !ok {
		return fmt.Errorf("%w: could not determine provider for %q; pass --provider", shared.ErrInvalidArgument, input)
	}

	playlistID := providers.ExtractPlaylistID(input)

	p, err := r.authenticatedProvider(ctx, kind)
	if err != nil {
		return err
	}

	r.logger.Info("initializing playlist", "provider", kind, "playlist", playlistID)

	snap, err := r.engine.Init(ctx, p, playlistID, nil)
	if err != nil {
		return err
	}

	if err := r.writePlain("initialized %s (%d tracks) from %s\n", snap.Name, len(snap.Tracks), kind); err != nil {
		return err
	}
	return r.writeJSON(snap)
}

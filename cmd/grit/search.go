package main

import (
	"context"
	"fmt"

	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/grit-vcs/grit/internal/workspace"
	"github.com/urfave/cli/v3"
)

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search a provider's catalog for a track",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "provider"},
			&cli.StringArg{Name: "query"},
		},
		Action: r.Search,
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Print the playable URL for a track in the working playlist and record it as last played",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "index"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Play,
	}
}

// Search queries a provider's catalog and, when a track cache is
// configured, pre-warms it with the results so a later play doesn't
// refetch them.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	kind := models.ProviderKind(cmd.StringArg("provider"))
	if kind == "" {
		return fmt.Errorf("%w: provider", shared.ErrMissingArgument)
	}

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	p, err := r.authenticatedProvider(ctx, kind)
	if err != nil {
		return err
	}

	tracks, err := p.SearchByQuery(ctx, query)
	if err != nil {
		return err
	}

	if r.cache != nil && len(tracks) > 0 {
		if err := r.cache.CacheSearchResults(tracks); err != nil {
			r.logger.Warn("failed to warm track cache", "error", err)
		}
	}

	return r.writeJSON(tracks)
}

// Play resolves the track at index in the working playlist, fetching it
// through the track cache when one is configured, and records it as the
// last played index.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
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
	track := head.Tracks[index]

	p, err := r.authenticatedProvider(ctx, head.Provider)
	if err != nil {
		return err
	}

	if r.cache != nil {
		track, err = r.cache.GetOrFetchTrack(ctx, head.Provider, track.ID, func(ctx context.Context) (models.Track, error) {
			return p.FetchTrack(ctx, track.ID)
		})
		if err != nil {
			return err
		}
	}

	playURL, err := p.PlayableURL(ctx, track)
	if err != nil {
		return err
	}

	if err := workspace.SaveLastTrackIndex(r.root, index); err != nil {
		return err
	}

	return r.writePlain("%s - %s\n%s\n", track.Name, playURL, track.ID)
}

package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/grit-vcs/grit/internal/ui"
	"github.com/urfave/cli/v3"
)

func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Interactively browse the working playlist's track order",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "playlist", Usage: "Playlist id, defaults to the working playlist"},
		},
		Action: r.Browse,
	}
}

// Browse launches the bubbletea track list for a playlist's head
// snapshot. Logging is redirected to a file for the program's
// duration, since the TUI owns the terminal.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	playlistID, err := r.resolvePlaylistID(cmd.String("playlist"))
	if err != nil {
		return err
	}

	head, _, err := r.engine.Status(playlistID)
	if err != nil {
		return err
	}

	fileLogger, err := shared.NewFileLogger(shared.ExpandPath("~/.grit/browse.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.logger = fileLogger

	model := ui.NewModel(head)
	program := tea.NewProgram(model)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("error running browser: %w", err)
	}
	return nil
}

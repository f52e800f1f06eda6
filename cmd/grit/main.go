package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/grit-vcs/grit/internal/shared"
	"github.com/grit-vcs/grit/internal/trackcache"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("grit.toml"); err == nil {
		if loaded, err := shared.LoadConfig("grit.toml"); err == nil {
			config = loaded
		} else {
			logger.Warn("failed to load grit.toml, using defaults", "error", err)
		}
	}

	env := shared.LoadEnv("")

	root := config.Workspace.Root
	if err := shared.EnsureDir(root); err != nil {
		logger.Fatalf("failed to create workspace root: %v", err)
	}

	cache, err := trackcache.Open(filepath.Join(root, "trackcache.db"), 500)
	if err != nil {
		logger.Warn("failed to open track cache, running without one", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	runner := NewRunner(RunnerConfig{
		Config: config,
		Env:    env,
		Root:   root,
		Logger: logger,
		Cache:  cache,
	})

	app := &cli.Command{
		Name:    "grit",
		Usage:   "Version control for provider-hosted playlists",
		Version: "0.1.0",
		Commands: []*cli.Command{
			setupCommand(),
			initCommand(runner),
			stageCommand(runner),
			commitCommand(runner),
			applyCommand(runner),
			diffCommand(runner),
			pushCommand(runner),
			pullCommand(runner),
			logCommand(runner),
			revertCommand(runner),
			switchCommand(runner),
			statusCommand(runner),
			authCommand(runner),
			searchCommand(runner),
			playCommand(runner),
			browseCommand(runner),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("grit: %v", err)
	}
}

func setupCommand() *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Write a default grit.toml configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to write the configuration file",
				Value:   "grit.toml",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if err := shared.CreateConfigFile(path); err != nil {
				return err
			}
			_, err := os.Stdout.WriteString("wrote " + path + "\n")
			return err
		},
	}
}

// Command grit is a version-control tool for provider-hosted playlists:
// initialize, stage, commit, diff, push, pull, and revert track lists
// living behind the Spotify and YouTube Music APIs, the way git does for
// source files.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/grit-vcs/grit/internal/models"
	"github.com/grit-vcs/grit/internal/providers"
	"github.com/grit-vcs/grit/internal/providers/spotify"
	"github.com/grit-vcs/grit/internal/providers/youtube"
	"github.com/grit-vcs/grit/internal/shared"
	"github.com/grit-vcs/grit/internal/trackcache"
	"github.com/grit-vcs/grit/internal/workspace"
)

// Runner holds every dependency a command action needs and provides one
// method per CLI action, following the teacher's Runner/RunnerConfig
// split between wiring and behavior.
type Runner struct {
	config *shared.Config
	env    shared.EnvCredentials
	root   string
	logger *log.Logger
	output io.Writer
	engine *workspace.Engine
	cache  *trackcache.Cache
}

// RunnerConfig configures a Runner.
type RunnerConfig struct {
	Config *shared.Config
	Env    shared.EnvCredentials
	Root   string
	Logger *log.Logger
	Output io.Writer
	Cache  *trackcache.Cache
}

// NewRunner constructs a Runner, filling in sensible defaults for a nil
// Config, Logger, or Output.
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Config == nil {
		cfg.Config = shared.DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	return &Runner{
		config: cfg.Config,
		env:    cfg.Env,
		root:   cfg.Root,
		logger: cfg.Logger,
		output: cfg.Output,
		engine: workspace.NewEngine(cfg.Root, cfg.Logger),
		cache:  cfg.Cache,
	}
}

func (r *Runner) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	if _, err := r.output.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// resolvePlaylistID returns explicit if non-empty, otherwise the
// workspace's working-playlist pointer.
func (r *Runner) resolvePlaylistID(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	id, err := workspace.LoadPointer(r.root)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", fmt.Errorf("%w: no working playlist set; pass a playlist id or run 'grit switch'", shared.ErrMissingArgument)
	}
	return id, nil
}

// providerCredentials resolves the OAuth app client id/secret/redirect
// for kind from config and environment.
func (r *Runner) providerCredentials(kind models.ProviderKind) (clientID, clientSecret, redirectURI string, err error) {
	switch kind {
	case models.Spotify:
		return r.env.SpotifyClientID, r.env.SpotifyClientSecret, r.config.Credentials.Spotify.RedirectURI, nil
	case models.YouTube:
		return r.env.YouTubeClientID, r.env.YouTubeClientSecret, r.config.Credentials.YouTube.RedirectURI, nil
	default:
		return "", "", "", fmt.Errorf("%w: unknown provider %q", shared.ErrInvalidArgument, kind)
	}
}

// newProvider constructs an unauthenticated provider instance for kind.
func (r *Runner) newProvider(kind models.ProviderKind) (providers.Provider, error) {
	clientID, clientSecret, redirectURI, err := r.providerCredentials(kind)
	if err != nil {
		return nil, err
	}
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing OAuth client credentials for %s; run 'grit auth login %s' after setting the environment variables", shared.ErrMissingCredentials, kind, kind)
	}
	return providers.New(kind, clientID, clientSecret, redirectURI)
}

// setProviderToken applies an access token to whichever concrete
// provider type p holds. SetToken is a construction-time concern kept
// off the providers.Provider interface itself, so this type switch is
// the one place that needs to know about concrete provider types.
func setProviderToken(p providers.Provider, accessToken string) {
	switch pr := p.(type) {
	case *spotify.Provider:
		pr.SetToken(accessToken)
	case *youtube.Provider:
		pr.SetToken(accessToken)
	}
}

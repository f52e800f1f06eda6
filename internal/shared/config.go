package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed grit.example.toml
var exampleConf []byte

// Config is the application configuration loaded from grit.toml.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Workspace   WorkspaceConfig   `toml:"workspace"`
}

// CredentialsConfig contains service-specific OAuth client registrations.
// Runtime secrets are resolved from the environment (see LoadEnv), not
// stored here, so this config file is safe to commit.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify OAuth app settings.
type SpotifyConfig struct {
	RedirectURI string `toml:"redirect_uri"`
}

// YouTubeConfig contains YouTube Data API OAuth app settings.
type YouTubeConfig struct {
	RedirectURI string `toml:"redirect_uri"`
}

// WorkspaceConfig controls where the on-disk grit root lives.
type WorkspaceConfig struct {
	Root string `toml:"root"`
}

// EnvCredentials holds the provider secrets resolved from the process
// environment (spec.md §6: SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET,
// YOUTUBE_CLIENT_ID, YOUTUBE_CLIENT_SECRET).
type EnvCredentials struct {
	SpotifyClientID     string
	SpotifyClientSecret string
	YouTubeClientID     string
	YouTubeClientSecret string
}

// LoadEnv loads a .env file (if present) alongside the working directory
// and resolves the provider client id/secret pairs. A missing value is not
// an error here — it becomes a fatal error only when the affected
// provider is actually constructed, per spec.md §6.
func LoadEnv(dotenvPath string) EnvCredentials {
	if dotenvPath == "" {
		dotenvPath = ".env"
	}
	_ = godotenv.Load(dotenvPath)

	return EnvCredentials{
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
	}
}

// LoadConfig reads and parses a TOML configuration file from the specified
// path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Workspace.Root = ExpandPath(config.Workspace.Root)

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the
// embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.Workspace.Root = ExpandPath(config.Workspace.Root)
	return &config
}

// CreateConfigFile creates a grit.toml file at the specified path using the
// embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes a Config struct to a TOML file at the specified path.
func SaveConfig(path string, config *Config) error {
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file for writing: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

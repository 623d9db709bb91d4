package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/calliope-music/calliope/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port       string
	DBPath     string
	MusicDir   string
	ArtDir     string
	CacheDir   string
	FFmpegPath string
	LogLevel   string
	LogFormat  string

	// Collaborator credentials. Empty values disable the lookup and the
	// resolver falls back to placeholders.
	LastFMAPIKey  string
	SpotifyID     string
	SpotifySecret string

	// Artist names that must never be split on feat/ft/with/x.
	ArtistSplitExceptions []string

	// Skip the initial scan and the watcher; serve the existing catalog only.
	NoScan bool
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	defaultCache := filepath.Join(os.TempDir(), "calliope", "cache")

	return &Config{
		Port:                  getEnv("PORT", constants.DefaultPort),
		DBPath:                getEnv("DB_PATH", constants.DefaultDBPath),
		MusicDir:              getEnv("MUSIC_DIR", ""),
		ArtDir:                getEnv("ART_DIR", constants.DefaultArtDir),
		CacheDir:              getEnv("CACHE_DIR", defaultCache),
		FFmpegPath:            getEnv("FFMPEG_PATH", constants.DefaultFFmpegPath),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "text"),
		LastFMAPIKey:          getEnv("LASTFM_API_KEY", ""),
		SpotifyID:             getEnv("SPOTIFY_ID", ""),
		SpotifySecret:         getEnv("SPOTIFY_SECRET", ""),
		ArtistSplitExceptions: splitList(getEnv("ARTIST_SPLIT_EXCEPTIONS", "")),
		NoScan:                getEnv("NO_SCAN", "") != "",
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.MusicDir == "" {
		errors = append(errors, "MUSIC_DIR cannot be empty")
	} else if info, err := os.Stat(c.MusicDir); err != nil {
		errors = append(errors, fmt.Sprintf("MUSIC_DIR is not readable: %v", err))
	} else if !info.IsDir() {
		errors = append(errors, fmt.Sprintf("MUSIC_DIR is not a directory: %s", c.MusicDir))
	}

	if c.ArtDir == "" {
		errors = append(errors, "ART_DIR cannot be empty")
	}

	if c.CacheDir == "" {
		errors = append(errors, "CACHE_DIR cannot be empty")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// splitList splits a comma-separated env value, trimming whitespace and
// dropping empty entries.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

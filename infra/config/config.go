package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// Config holds application-level configuration.
type Config struct {
	AppViewURL string // e.g. "https://public.api.bsky.app"
	Actor      string // Handle or DID whose network to aggregate
	FeedLimit  int    // Posts fetched per followed account
	LogPath    string // Debug log file; empty disables logging
}

// Load reads configuration from environment variables.
//
//	SKYLINE_APPVIEW — AppView base URL (default: https://public.api.bsky.app)
//	SKYLINE_ACTOR   — default actor; overridden by the CLI argument
//	SKYLINE_LIMIT   — posts per followed account (default: 10)
//	SKYLINE_LOG     — path to a debug log file (default: logging off)
func Load() (Config, error) {
	appview := os.Getenv("SKYLINE_APPVIEW")
	if appview == "" {
		appview = "https://public.api.bsky.app"
	}
	parsed, err := url.Parse(appview)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, fmt.Errorf("invalid SKYLINE_APPVIEW: must be an absolute URL")
	}
	if parsed.Scheme != "https" {
		return Config{}, fmt.Errorf("invalid SKYLINE_APPVIEW: only https is allowed")
	}
	appview = strings.TrimRight(parsed.String(), "/")

	limit := 10
	if raw := os.Getenv("SKYLINE_LIMIT"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			return Config{}, fmt.Errorf("invalid SKYLINE_LIMIT: must be 1-100")
		}
		limit = n
	}

	return Config{
		AppViewURL: appview,
		Actor:      strings.TrimSpace(os.Getenv("SKYLINE_ACTOR")),
		FeedLimit:  limit,
		LogPath:    os.Getenv("SKYLINE_LOG"),
	}, nil
}

// Package config provides configuration management for the slidecast server.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 8686
	DefaultLogLevel = "info"
	DefaultDataDir  = ".slidecast"

	// Environment variable names
	EnvPort     = "SLIDECAST_PORT"
	EnvLogLevel = "SLIDECAST_LOG_LEVEL"
	EnvDataDir  = "SLIDECAST_DATA_DIR"

	// External tool environment variable names
	EnvFFmpeg = "SLIDECAST_FFMPEG"
	EnvYtdlp  = "SLIDECAST_YTDLP"

	// YouTube OAuth environment variable names
	EnvYTClientID     = "YT_CLIENT_ID"
	EnvYTClientSecret = "YT_CLIENT_SECRET"
	EnvYTRedirectURI  = "YT_REDIRECT_URI"

	// Grant filename under the tokens dir
	GrantFilename = "youtube_tokens.json"

	// External process timeout defaults
	DefaultEncodeTimeout   = 600  // seconds
	DefaultDecodeTimeout   = 600  // seconds
	DefaultDownloadTimeout = 1200 // seconds

	EnvEncodeTimeout   = "SLIDECAST_ENCODE_TIMEOUT_S"
	EnvDecodeTimeout   = "SLIDECAST_DECODE_TIMEOUT_S"
	EnvDownloadTimeout = "SLIDECAST_DOWNLOAD_TIMEOUT_S"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	UploadsDir() string
	VideosDir() string
	TempDir() string
	GrantPath() string
	FFmpegPath() string
	YtdlpPath() string
	EncodeTimeout() time.Duration
	DecodeTimeout() time.Duration
	DownloadTimeout() time.Duration
	YTClientID() string
	YTClientSecret() string
	YTRedirectURI() string
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port     int
	logLevel string
	dataDir  string

	ffmpegPath string
	ytdlpPath  string

	encodeTimeout   time.Duration
	decodeTimeout   time.Duration
	downloadTimeout time.Duration

	ytClientID     string
	ytClientSecret string
	ytRedirectURI  string
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		encodeTimeout:   DefaultEncodeTimeout * time.Second,
		decodeTimeout:   DefaultDecodeTimeout * time.Second,
		downloadTimeout: DefaultDownloadTimeout * time.Second,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.ffmpegPath = os.Getenv(EnvFFmpeg)
	cfg.ytdlpPath = os.Getenv(EnvYtdlp)

	for _, tt := range []struct {
		env  string
		dst  *time.Duration
		name string
	}{
		{EnvEncodeTimeout, &cfg.encodeTimeout, "encode"},
		{EnvDecodeTimeout, &cfg.decodeTimeout, "decode"},
		{EnvDownloadTimeout, &cfg.downloadTimeout, "download"},
	} {
		if v := os.Getenv(tt.env); v != "" {
			secs, err := strconv.Atoi(v)
			if err != nil || secs <= 0 {
				return nil, fmt.Errorf("invalid %s: must be a positive number of seconds", tt.env)
			}
			*tt.dst = time.Duration(secs) * time.Second
		}
	}

	cfg.ytClientID = os.Getenv(EnvYTClientID)
	cfg.ytClientSecret = os.Getenv(EnvYTClientSecret)
	cfg.ytRedirectURI = os.Getenv(EnvYTRedirectURI)

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// UploadsDir returns the directory holding per-session frame directories
func (c *EnvConfig) UploadsDir() string {
	return filepath.Join(c.dataDir, "uploads")
}

// VideosDir returns the flat directory of generated video artifacts
func (c *EnvConfig) VideosDir() string {
	return filepath.Join(c.dataDir, "videos")
}

// TempDir returns the scratch directory for request-scoped working files
func (c *EnvConfig) TempDir() string {
	return filepath.Join(c.dataDir, "temp")
}

// GrantPath returns the full path to the persisted authorization grant file
func (c *EnvConfig) GrantPath() string {
	return filepath.Join(c.dataDir, "tokens", GrantFilename)
}

func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

func (c *EnvConfig) YtdlpPath() string {
	return c.ytdlpPath
}

func (c *EnvConfig) EncodeTimeout() time.Duration {
	return c.encodeTimeout
}

func (c *EnvConfig) DecodeTimeout() time.Duration {
	return c.decodeTimeout
}

func (c *EnvConfig) DownloadTimeout() time.Duration {
	return c.downloadTimeout
}

func (c *EnvConfig) YTClientID() string {
	return c.ytClientID
}

func (c *EnvConfig) YTClientSecret() string {
	return c.ytClientSecret
}

func (c *EnvConfig) YTRedirectURI() string {
	return c.ytRedirectURI
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

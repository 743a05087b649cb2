package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/slidecast/slidecast-server/internal/api"
	"github.com/slidecast/slidecast-server/internal/config"
	"github.com/slidecast/slidecast-server/internal/ingest"
	"github.com/slidecast/slidecast-server/internal/logging"
	"github.com/slidecast/slidecast-server/internal/media"
	"github.com/slidecast/slidecast-server/internal/publish"
	"github.com/slidecast/slidecast-server/internal/session"
	"github.com/slidecast/slidecast-server/internal/stream"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	for _, dir := range []string{cfg.UploadsDir(), cfg.VideosDir(), cfg.TempDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create data dir %s: %w", dir, err)
		}
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting slidecast server",
		"version", config.Version,
		"data_dir", cfg.DataDir(),
		"port", cfg.Port(),
	)

	sessions := session.NewStore(cfg.UploadsDir(), logger)
	artifacts := media.NewArtifacts(cfg.VideosDir(), logger)

	var (
		encoder media.Encoder
		decoder media.Decoder
	)
	ffmpeg, err := media.NewFFmpeg(media.Config{
		BinaryPath:    cfg.FFmpegPath(),
		EncodeTimeout: cfg.EncodeTimeout(),
		DecodeTimeout: cfg.DecodeTimeout(),
		Logger:        logger,
	}, artifacts)
	if err != nil {
		logger.Warn("ffmpeg unavailable, video conversion disabled", "error", err)
	} else {
		encoder = ffmpeg
		decoder = ffmpeg
	}

	downloader := ingest.NewDownloader(cfg.YtdlpPath(), cfg.DownloadTimeout(), logger)
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 20*time.Second)
	if downloader.Available(probeCtx) {
		logger.Info("yt-dlp detected")
	} else {
		logger.Warn("yt-dlp unavailable, YouTube extraction disabled")
	}
	probeCancel()

	resolver := ingest.NewResolver(artifacts, downloader, cfg.TempDir(), logger)

	grants := publish.NewGrantStore(cfg.GrantPath(), logger)
	publisher := publish.NewPublisher(
		cfg.YTClientID(), cfg.YTClientSecret(), cfg.YTRedirectURI(), grants, logger)
	if !publisher.Configured() {
		logger.Warn("YouTube OAuth credentials not set, publishing disabled")
	}

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.Port(),
		Sessions:  sessions,
		Artifacts: artifacts,
		Encoder:   encoder,
		Decoder:   decoder,
		Resolver:  resolver,
		Publisher: publisher,
		Streamer:  stream.NewServer(logger),
		Logger:    logger,
		StartTime: startTime,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

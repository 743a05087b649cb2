// Package ingest normalizes the three video input origins — direct upload,
// stored artifact id, remote URL — into a local file path ready for
// decoding. Temporary downloads live in request-scoped directories removed
// whether or not the following step succeeds.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/slidecast/slidecast-server/internal/media"
)

var youtubeURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+`)

// ValidateYouTubeURL rejects URLs that are not plausibly YouTube.
func ValidateYouTubeURL(raw string) error {
	if !youtubeURLPattern.MatchString(strings.TrimSpace(raw)) {
		return fmt.Errorf("invalid YouTube URL")
	}
	return nil
}

// Resolver turns any supported input origin into a local video path plus a
// cleanup func the caller must run when done with the file.
type Resolver struct {
	artifacts  *media.Artifacts
	downloader *Downloader
	tempRoot   string
	logger     *slog.Logger
}

func NewResolver(artifacts *media.Artifacts, downloader *Downloader, tempRoot string, logger *slog.Logger) *Resolver {
	return &Resolver{
		artifacts:  artifacts,
		downloader: downloader,
		tempRoot:   tempRoot,
		logger:     logger,
	}
}

// FromUpload stages an uploaded video body in a scratch directory.
func (r *Resolver) FromUpload(body io.Reader, filename string) (string, func(), error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp4"
	}

	dir, cleanup, err := r.scratchDir()
	if err != nil {
		return "", nil, err
	}

	path := filepath.Join(dir, "input"+ext)
	f, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("stage upload: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		cleanup()
		return "", nil, fmt.Errorf("stage upload: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("stage upload: %w", err)
	}

	return path, cleanup, nil
}

// FromArtifact resolves a previously generated video by id. The artifact is
// durable storage, so the cleanup func is a no-op.
func (r *Resolver) FromArtifact(videoID string) (string, func(), error) {
	path, err := r.artifacts.Resolve(videoID)
	if err != nil {
		return "", nil, err
	}
	return path, func() {}, nil
}

// FromURL downloads the best available stream for a remote video into a
// scratch directory.
func (r *Resolver) FromURL(ctx context.Context, url string) (string, func(), error) {
	dir, cleanup, err := r.scratchDir()
	if err != nil {
		return "", nil, err
	}

	path := filepath.Join(dir, "video.mp4")
	if err := r.downloader.Download(ctx, strings.TrimSpace(url), path); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func (r *Resolver) scratchDir() (string, func(), error) {
	dir := filepath.Join(r.tempRoot, uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create temp dir: %w", err)
	}

	cleanup := func() {
		// Best effort: cleanup failure must never mask the primary result.
		if err := os.RemoveAll(dir); err != nil && r.logger != nil {
			r.logger.Warn("temp dir cleanup failed", "dir", dir, "error", err)
		}
	}
	return dir, cleanup, nil
}

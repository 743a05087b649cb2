package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/slidecast/slidecast-server/internal/media"
)

// ErrToolUnavailable is returned when no yt-dlp invocation form works. The
// message carries remediation text because a missing downloader is the
// single most common environment-setup failure.
var ErrToolUnavailable = errors.New(
	"yt-dlp is not available to this process. " +
		"Install it (e.g. pip install yt-dlp, or your package manager) and ensure " +
		"it is on PATH, then restart the server")

// invocation is one way of running yt-dlp: a binary, or an interpreter with
// a module prefix.
type invocation struct {
	cmd        string
	argsPrefix []string
}

// Downloader fetches remote videos via yt-dlp. Tool discovery probes the
// configured path, the bare binary on PATH, and finally the Python module
// fallback; the first form whose --version succeeds is cached.
type Downloader struct {
	preferred string // configured yt-dlp path; empty = auto-detect
	timeout   time.Duration
	logger    *slog.Logger

	mu       sync.Mutex
	resolved *invocation
}

func NewDownloader(preferred string, timeout time.Duration, logger *slog.Logger) *Downloader {
	return &Downloader{preferred: preferred, timeout: timeout, logger: logger}
}

// Download fetches the best available video stream for url into dest.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	spec, err := d.resolve(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	args := append(append([]string{}, spec.argsPrefix...),
		"-f", "mp4/bestvideo+bestaudio/best",
		"--no-playlist",
		"-o", dest,
		url,
	)
	return media.Run(ctx, d.logger, "yt-dlp", spec.cmd, args)
}

// Available reports whether any yt-dlp invocation form works right now.
func (d *Downloader) Available(ctx context.Context) bool {
	_, err := d.resolve(ctx)
	return err == nil
}

func (d *Downloader) resolve(ctx context.Context) (*invocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.resolved != nil {
		return d.resolved, nil
	}

	var candidates []invocation
	if d.preferred != "" {
		candidates = append(candidates, invocation{cmd: d.preferred})
	}
	candidates = append(candidates,
		invocation{cmd: "yt-dlp"},
		invocation{cmd: "python3", argsPrefix: []string{"-m", "yt_dlp"}},
		invocation{cmd: "python", argsPrefix: []string{"-m", "yt_dlp"}},
	)

	for _, c := range candidates {
		if probe(ctx, c) {
			if d.logger != nil {
				d.logger.Info("yt-dlp resolved", "cmd", c.cmd, "args_prefix", c.argsPrefix)
			}
			spec := c
			d.resolved = &spec
			return d.resolved, nil
		}
	}

	return nil, ErrToolUnavailable
}

func probe(ctx context.Context, c invocation) bool {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	args := append(append([]string{}, c.argsPrefix...), "--version")
	return exec.CommandContext(ctx, c.cmd, args...).Run() == nil
}

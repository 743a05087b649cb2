package media

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/slidecast/slidecast-server/internal/session"
)

const outputFPS = 30

// Config holds the ffmpeg converter's configuration.
type Config struct {
	BinaryPath    string // path to ffmpeg binary; empty = auto-detect
	EncodeTimeout time.Duration
	DecodeTimeout time.Duration
	Logger        *slog.Logger
}

// FFmpeg is the subprocess implementation of Encoder and Decoder.
type FFmpeg struct {
	cfg       Config
	bin       string // resolved ffmpeg path
	artifacts *Artifacts
}

// NewFFmpeg resolves the ffmpeg binary and wires the artifact store new
// videos are written into.
func NewFFmpeg(cfg Config, artifacts *Artifacts) (*FFmpeg, error) {
	bin, err := resolveFFmpeg(cfg.BinaryPath)
	if err != nil {
		return nil, err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("ffmpeg converter initialised", "binary", bin)
	}
	return &FFmpeg{cfg: cfg, bin: bin, artifacts: artifacts}, nil
}

// Encode renders one looped-still input per frame onto the fixed canvas and
// concatenates them into a single H.264 stream. The nominal duration is
// FrameDuration x frame count; the 30 fps quantization may shift the actual
// output duration slightly, which is accepted.
func (f *FFmpeg) Encode(ctx context.Context, req EncodeRequest) (string, error) {
	if len(req.Frames) == 0 {
		return "", ErrNoFrames
	}

	id := f.artifacts.NewID()
	outputPath := f.artifacts.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return "", fmt.Errorf("create videos dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.EncodeTimeout)
	defer cancel()

	args := encodeArgs(req, outputPath)
	if err := Run(ctx, f.cfg.Logger, "ffmpeg", f.bin, args); err != nil {
		// Drop partial output so a failed job leaves nothing behind.
		_ = os.Remove(outputPath)
		return "", err
	}

	if f.cfg.Logger != nil {
		f.cfg.Logger.Info("video encoded",
			"video_id", id,
			"frames", len(req.Frames),
			"frame_duration_s", req.FrameDuration,
		)
	}
	return id, nil
}

// Decode samples the source video into numbered JPEG stills, scaled to the
// canvas width with proportional height, continuing the sequence from
// req.StartNumber.
func (f *FFmpeg) Decode(ctx context.Context, req DecodeRequest) (int, error) {
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.cfg.DecodeTimeout)
	defer cancel()

	args := decodeArgs(req)
	if err := Run(ctx, f.cfg.Logger, "ffmpeg", f.bin, args); err != nil {
		return 0, err
	}

	produced, err := countProduced(req.OutputDir, req.StartNumber)
	if err != nil {
		return 0, err
	}
	if produced == 0 {
		return 0, fmt.Errorf("%w: decoder produced no frames", ErrNoFrames)
	}

	if f.cfg.Logger != nil {
		f.cfg.Logger.Info("frames decoded",
			"count", produced,
			"fps", req.FPS,
			"start_number", req.StartNumber,
		)
	}
	return produced, nil
}

// encodeArgs builds the photos-to-video invocation: one looped still input
// per frame, letterboxed onto the canvas, concatenated at a fixed frame
// rate with a speed-biased preset.
func encodeArgs(req EncodeRequest, outputPath string) []string {
	dur := strconv.FormatFloat(req.FrameDuration, 'f', -1, 64)

	args := []string{"-hide_banner", "-loglevel", "error"}
	for _, frame := range req.Frames {
		args = append(args,
			"-loop", "1",
			"-t", dur,
			"-i", filepath.Join(req.SessionDir, frame),
		)
	}

	var fc strings.Builder
	for i := range req.Frames {
		fmt.Fprintf(&fc, "[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,fps=%d,setpts=PTS-STARTPTS[v%d];",
			i, session.FrameWidth, session.FrameHeight,
			session.FrameWidth, session.FrameHeight,
			outputFPS, i)
	}
	for i := range req.Frames {
		fmt.Fprintf(&fc, "[v%d]", i)
	}
	fmt.Fprintf(&fc, "concat=n=%d:v=1[v]", len(req.Frames))

	args = append(args,
		"-filter_complex", fc.String(),
		"-map", "[v]",
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-crf", "28",
		"-pix_fmt", "yuv420p",
		"-r", strconv.Itoa(outputFPS),
		"-movflags", "+faststart",
		"-y",
		outputPath,
	)
	return args
}

// decodeArgs builds the video-to-photos invocation: fps sampler, fixed-width
// proportional scale, fixed quality, six-digit ascending output names.
func decodeArgs(req DecodeRequest) []string {
	fps := strconv.FormatFloat(req.FPS, 'f', -1, 64)

	return []string{
		"-hide_banner", "-loglevel", "error",
		"-i", req.VideoPath,
		"-vf", fmt.Sprintf("fps=%s,scale=%d:-1:flags=lanczos", fps, session.FrameWidth),
		"-qscale:v", "2",
		"-start_number", strconv.Itoa(req.StartNumber),
		"-y",
		filepath.Join(req.OutputDir, "%06d.jpg"),
	}
}

func countProduced(dir string, startNumber int) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read output dir: %w", err)
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() || !session.IsFrameName(e.Name()) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
		if err == nil && n >= startNumber {
			count++
		}
	}
	return count, nil
}

// resolveFFmpeg finds a usable ffmpeg binary.
func resolveFFmpeg(preferred string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured ffmpeg %q not found", preferred)
	}
	for _, name := range []string{"ffmpeg", "ffmpeg.exe"} {
		if p, err := exec.LookPath(name); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("ffmpeg not found on PATH; install ffmpeg and restart the server")
}

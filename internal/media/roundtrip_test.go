package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/slidecast/slidecast-server/internal/session"
)

// TestRoundTrip encodes stills into a video and samples them back out.
// Requires a real ffmpeg; skipped otherwise. The 30 fps quantization means
// the decoded count can differ from the input count by one frame, so the
// assertion allows exactly that tolerance.
func TestRoundTrip(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not available")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionDir := t.TempDir()

	const frames = 3
	const frameDuration = 0.5

	names := make([]string, 0, frames)
	for i := 1; i <= frames; i++ {
		name := session.FrameName(i)
		if err := os.WriteFile(filepath.Join(sessionDir, name), roundTripJPEG(t, i), 0o644); err != nil {
			t.Fatalf("write frame: %v", err)
		}
		names = append(names, name)
	}

	artifacts := NewArtifacts(t.TempDir(), logger)
	ff, err := NewFFmpeg(Config{
		EncodeTimeout: 60 * time.Second,
		DecodeTimeout: 60 * time.Second,
		Logger:        logger,
	}, artifacts)
	if err != nil {
		t.Fatalf("NewFFmpeg: %v", err)
	}

	id, err := ff.Encode(context.Background(), EncodeRequest{
		SessionDir:    sessionDir,
		Frames:        names,
		FrameDuration: frameDuration,
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	videoPath, err := artifacts.Resolve(id)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	outDir := t.TempDir()
	count, err := ff.Decode(context.Background(), DecodeRequest{
		VideoPath:   videoPath,
		FPS:         1 / frameDuration,
		OutputDir:   outDir,
		StartNumber: 1,
	})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if count < frames-1 || count > frames+1 {
		t.Errorf("round trip produced %d frames from %d inputs, want within +/-1", count, frames)
	}
}

func roundTripJPEG(t *testing.T, seed int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 320, 240))
	c := color.NRGBA{R: uint8(seed * 70), G: uint8(255 - seed*70), B: 128, A: 255}
	for y := 0; y < 240; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

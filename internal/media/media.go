// Package media adapts the external video codec into capability interfaces:
// Encoder turns an ordered frame list into a video artifact, Decoder samples
// a video back into numbered stills. The subprocess implementation shells
// out to ffmpeg; tests substitute stubs.
package media

import (
	"context"
	"errors"
	"fmt"
)

// ErrNoFrames marks conversions that found nothing to convert. It is a
// validation failure, never a silent empty success.
var ErrNoFrames = errors.New("no frames to convert")

// EncodeRequest describes a photos-to-video conversion.
type EncodeRequest struct {
	SessionDir    string
	Frames        []string // ordered frame file names within SessionDir
	FrameDuration float64  // seconds each still is held
}

// DecodeRequest describes a video-to-photos conversion.
type DecodeRequest struct {
	VideoPath   string
	FPS         float64 // sampling rate, frames per second
	OutputDir   string
	StartNumber int // first sequence number to assign, 1-based
}

type Encoder interface {
	// Encode produces a video artifact and returns its identifier.
	Encode(ctx context.Context, req EncodeRequest) (string, error)
}

type Decoder interface {
	// Decode writes sampled stills into req.OutputDir and returns how many
	// frames were produced.
	Decode(ctx context.Context, req DecodeRequest) (int, error)
}

// ExitError reports an external tool that ran but exited non-zero, carrying
// the diagnostic tail of its stderr.
type ExitError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited %d: %s", e.Tool, e.ExitCode, e.Stderr)
}

package session

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"

	"github.com/disintegration/imaging"
)

// ErrBadImage marks uploads that cannot be decoded as images.
var ErrBadImage = errors.New("unsupported or corrupt image")

// Normalize decodes an image, auto-orients it, and renders it onto the fixed
// 1280x720 canvas: aspect-preserving fit with black letterbox fill, encoded
// as JPEG. Every frame a session stores has passed through here, so encode
// inputs are uniform regardless of upload dimensions.
func Normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	fitted := imaging.Fit(img, FrameWidth, FrameHeight, imaging.Lanczos)
	canvas := imaging.New(FrameWidth, FrameHeight, color.NRGBA{R: 0, G: 0, B: 0, A: 255})
	canvas = imaging.PasteCenter(canvas, fitted)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

// Package session implements the session-scoped frame store: one directory
// per session holding a contiguous, six-digit-numbered sequence of JPEG
// frames, mutated only through the indexer operations in this package.
package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// Canvas every stored frame is normalized to.
	FrameWidth  = 1280
	FrameHeight = 720

	JPEGQuality = 85

	maxIDLength = 128
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrInvalidID        = errors.New("invalid session id")
	ErrInvalidFrameName = errors.New("invalid frame name")
)

// framePattern matches canonical frame names: six digits, jpg/jpeg.
var framePattern = regexp.MustCompile(`(?i)^\d{6}\.jpe?g$`)

// idPattern restricts session ids to a path-safe character set. The ids we
// generate are UUIDs; caller-supplied ids must fit the same shape so they can
// never alter the directory the store resolves to.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// NewID generates a fresh opaque session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidateID rejects identifiers that could escape the uploads root when
// joined into a path.
func ValidateID(id string) error {
	if id == "" || len(id) > maxIDLength {
		return ErrInvalidID
	}
	if !idPattern.MatchString(id) {
		return ErrInvalidID
	}
	if strings.Contains(id, "..") {
		return ErrInvalidID
	}
	return nil
}

// ValidateFrameName rejects file arguments containing path separators or
// parent-directory tokens. Accepts any plain file name, not only canonical
// frame names, so previews can serve legacy extensions.
func ValidateFrameName(name string) error {
	if name == "" {
		return ErrInvalidFrameName
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return ErrInvalidFrameName
	}
	if name != filepath.Base(name) {
		return ErrInvalidFrameName
	}
	return nil
}

// FrameName returns the canonical name for the n-th frame (1-based).
func FrameName(n int) string {
	return fmt.Sprintf("%06d.jpg", n)
}

// IsFrameName reports whether name is a canonical six-digit frame name.
func IsFrameName(name string) bool {
	return framePattern.MatchString(name)
}

// IsImageFile reports whether name has a recognized image extension.
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

package media

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

// ErrArtifactNotFound marks lookups of unknown video identifiers.
var ErrArtifactNotFound = errors.New("video not found")

// artifactIDPattern keeps artifact ids path-safe; generated ids are UUIDs.
var artifactIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{1,64}$`)

// Artifacts is the flat store of generated videos, one <id>.mp4 per
// artifact, in a namespace independent of any session.
type Artifacts struct {
	dir    string
	logger *slog.Logger
}

func NewArtifacts(dir string, logger *slog.Logger) *Artifacts {
	return &Artifacts{dir: dir, logger: logger}
}

// NewID generates a fresh artifact identifier.
func (a *Artifacts) NewID() string {
	return uuid.NewString()
}

// Resolve returns the file path for an existing artifact.
func (a *Artifacts) Resolve(id string) (string, error) {
	if !artifactIDPattern.MatchString(id) {
		return "", ErrArtifactNotFound
	}
	path := a.pathFor(id)
	if _, err := os.Stat(path); err != nil {
		return "", ErrArtifactNotFound
	}
	return path, nil
}

func (a *Artifacts) pathFor(id string) string {
	return filepath.Join(a.dir, id+".mp4")
}

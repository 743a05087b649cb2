package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SourceImage is one uploaded image awaiting normalization and indexing.
type SourceImage struct {
	Name string // original client filename, used only in error messages
	Data []byte
}

// Append normalizes each image and writes it under the next free canonical
// names. With N frames present, K images become frames N+1..N+K. A decode or
// normalization failure aborts the append identifying the offending input;
// files already written by the same call are not rolled back.
func (s *Store) Append(id string, images []SourceImage) ([]string, error) {
	unlock := s.Lock(id)
	defer unlock()

	dir, err := s.Dir(id)
	if err != nil {
		return nil, err
	}

	existing, err := s.ListFrames(id)
	if err != nil {
		return nil, err
	}
	next := len(existing)

	assigned := make([]string, 0, len(images))
	for i, img := range images {
		normalized, err := Normalize(img.Data)
		if err != nil {
			return nil, fmt.Errorf("image %q: %w", img.Name, err)
		}

		name := FrameName(next + i + 1)
		if err := os.WriteFile(filepath.Join(dir, name), normalized, 0o644); err != nil {
			return nil, fmt.Errorf("write frame %s: %w", name, err)
		}
		assigned = append(assigned, name)
	}

	if s.logger != nil {
		s.logger.Info("frames appended", "session_id", id, "count", len(assigned), "first", next+1)
	}
	return assigned, nil
}

// Delete removes the requested frames and renumbers the survivors back to a
// contiguous 1..N sequence in their original relative order. Missing names
// are skipped, not errors. Renumbering goes through temporary names first:
// renaming a survivor directly onto a name another survivor still holds
// would destroy data.
func (s *Store) Delete(id string, names []string) ([]string, error) {
	unlock := s.Lock(id)
	defer unlock()

	dir, err := s.Dir(id)
	if err != nil {
		return nil, err
	}

	all, err := s.ListFrames(id)
	if err != nil {
		return nil, err
	}

	toDelete := make(map[string]bool, len(names))
	for _, n := range names {
		toDelete[n] = true
	}

	kept := make([]string, 0, len(all))
	for _, f := range all {
		if toDelete[f] {
			// Best effort: a name that vanished concurrently is already gone.
			_ = os.Remove(filepath.Join(dir, f))
			continue
		}
		kept = append(kept, f)
	}

	tmpSuffix := fmt.Sprintf(".tmp_%d", time.Now().UnixNano())
	for _, f := range kept {
		src := filepath.Join(dir, f)
		if err := os.Rename(src, src+tmpSuffix); err != nil {
			return nil, fmt.Errorf("stage rename %s: %w", f, err)
		}
	}

	renumbered := make([]string, 0, len(kept))
	for i, f := range kept {
		tmp := filepath.Join(dir, f+tmpSuffix)
		target := FrameName(i + 1)
		if err := os.Rename(tmp, filepath.Join(dir, target)); err != nil {
			return nil, fmt.Errorf("final rename %s: %w", target, err)
		}
		renumbered = append(renumbered, target)
	}

	if s.logger != nil {
		s.logger.Info("frames deleted", "session_id", id, "requested", len(names), "remaining", len(renumbered))
	}
	return renumbered, nil
}

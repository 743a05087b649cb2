package session

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), nil)
}

func appendImages(t *testing.T, s *Store, id string, count int) []string {
	t.Helper()
	images := make([]SourceImage, count)
	for i := range images {
		images[i] = SourceImage{Name: "photo.jpg", Data: testJPEG(t, 64, 48)}
	}
	names, err := s.Append(id, images)
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	return names
}

func TestEnsure_GeneratesID(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Ensure("")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if id == "" {
		t.Fatal("Ensure returned empty id")
	}
	if _, err := s.Dir(id); err != nil {
		t.Fatalf("Dir after Ensure: %v", err)
	}
}

func TestEnsure_ReusesExisting(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Ensure("my-session")
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if id != "my-session" {
		t.Fatalf("Ensure = %q, want my-session", id)
	}

	again, err := s.Ensure("my-session")
	if err != nil || again != id {
		t.Fatalf("second Ensure = (%q, %v), want (%q, nil)", again, err, id)
	}
}

func TestEnsure_RejectsInvalidID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Ensure("../escape"); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("Ensure error = %v, want ErrInvalidID", err)
	}
}

func TestDir_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Dir("no-such-session"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Dir error = %v, want ErrNotFound", err)
	}
}

func TestFramePath_RejectsTraversal(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Ensure("")

	if _, err := s.FramePath(id, "../../etc/passwd"); !errors.Is(err, ErrInvalidFrameName) {
		t.Fatalf("FramePath error = %v, want ErrInvalidFrameName", err)
	}
}

func TestAppend_AssignsSequentialNames(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Ensure("")

	names := appendImages(t, s, id, 3)
	want := []string{"000001.jpg", "000002.jpg", "000003.jpg"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("Append names = %v, want %v", names, want)
	}

	// A second batch continues after the existing frames.
	names = appendImages(t, s, id, 2)
	want = []string{"000004.jpg", "000005.jpg"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("second Append names = %v, want %v", names, want)
	}

	all, err := s.ListFrames(id)
	if err != nil {
		t.Fatalf("ListFrames: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("ListFrames count = %d, want 5", len(all))
	}
}

func TestAppend_BadImageAborts(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Ensure("")

	_, err := s.Append(id, []SourceImage{
		{Name: "good.jpg", Data: testJPEG(t, 32, 32)},
		{Name: "broken.jpg", Data: []byte("not an image")},
	})
	if !errors.Is(err, ErrBadImage) {
		t.Fatalf("Append error = %v, want ErrBadImage", err)
	}
}

func TestDelete_RenumbersSurvivors(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Ensure("")
	appendImages(t, s, id, 3)

	dir, _ := s.Dir(id)
	marker := []byte("third frame")
	if err := os.WriteFile(filepath.Join(dir, "000003.jpg"), marker, 0o644); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	remaining, err := s.Delete(id, []string{"000002.jpg"})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	want := []string{"000001.jpg", "000002.jpg"}
	if !reflect.DeepEqual(remaining, want) {
		t.Fatalf("Delete remaining = %v, want %v", remaining, want)
	}

	// The former third frame now holds the second slot, content intact.
	data, err := os.ReadFile(filepath.Join(dir, "000002.jpg"))
	if err != nil {
		t.Fatalf("read renumbered frame: %v", err)
	}
	if string(data) != string(marker) {
		t.Fatal("renumbering did not preserve frame content order")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 2 {
		t.Fatalf("session dir holds %d files after delete, want 2", len(entries))
	}
}

func TestDelete_MissingNamesIgnored(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Ensure("")
	appendImages(t, s, id, 2)

	remaining, err := s.Delete(id, []string{"000099.jpg"})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(remaining) != 2 {
		t.Fatalf("Delete remaining = %v, want both frames kept", remaining)
	}
}

func TestDelete_AllFrames(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Ensure("")
	appendImages(t, s, id, 2)

	remaining, err := s.Delete(id, []string{"000001.jpg", "000002.jpg"})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("Delete remaining = %v, want empty", remaining)
	}
}

func TestListImages_IncludesLegacyExtensions(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Ensure("")
	dir, _ := s.Dir(id)

	for _, name := range []string{"000001.jpg", "000002.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	images, err := s.ListImages(id)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	want := []string{"000001.jpg", "000002.png"}
	if !reflect.DeepEqual(images, want) {
		t.Fatalf("ListImages = %v, want %v", images, want)
	}

	frames, err := s.ListFrames(id)
	if err != nil {
		t.Fatalf("ListFrames: %v", err)
	}
	if !reflect.DeepEqual(frames, []string{"000001.jpg"}) {
		t.Fatalf("ListFrames = %v, want only the canonical frame", frames)
	}
}

func TestLock_Serializes(t *testing.T) {
	s := newTestStore(t)
	id, _ := s.Ensure("")

	unlock := s.Lock(id)

	acquired := make(chan struct{})
	go func() {
		u := s.Lock(id)
		u()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock acquired while first still held")
	case <-time.After(20 * time.Millisecond):
	}

	unlock()
	<-acquired
}

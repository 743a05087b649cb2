package publish

import (
	"context"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func testGrantStore(t *testing.T) *GrantStore {
	t.Helper()
	return NewGrantStore(filepath.Join(t.TempDir(), "tokens", "youtube_tokens.json"), nil)
}

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access-abc",
		RefreshToken: "refresh-xyz",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}
}

func TestGrantStore_LoadMissing(t *testing.T) {
	g := testGrantStore(t)

	tok, err := g.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != nil {
		t.Fatalf("Load = %v, want nil for missing file", tok)
	}
}

func TestGrantStore_SaveLoad(t *testing.T) {
	g := testGrantStore(t)

	want := testToken()
	if err := g.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := g.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil || got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
		t.Fatalf("Load = %+v, want saved token", got)
	}
}

func TestGrantStore_EmptyTokenIsNoGrant(t *testing.T) {
	g := testGrantStore(t)

	if err := g.Save(&oauth2.Token{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	tok, err := g.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tok != nil {
		t.Fatalf("Load = %+v, want nil for empty token", tok)
	}
}

// fakeUploader substitutes the remote API.
type fakeUploader struct {
	id      string
	err     error
	lastReq Request
}

func (f *fakeUploader) Insert(ctx context.Context, client *http.Client, req Request) (string, error) {
	f.lastReq = req
	return f.id, f.err
}

func newTestPublisher(t *testing.T, grants *GrantStore, api uploader) *Publisher {
	t.Helper()
	p := NewPublisher("client-id", "client-secret", "http://127.0.0.1:8686/youtube/callback", grants, nil)
	if api != nil {
		p.api = api
	}
	return p
}

func TestAuthURL_Unconfigured(t *testing.T) {
	p := NewPublisher("", "", "", testGrantStore(t), nil)

	if p.Configured() {
		t.Fatal("Configured = true with empty credentials")
	}
	_, err := p.AuthURL()
	if err == nil || !strings.Contains(err.Error(), "YT_CLIENT_ID") {
		t.Fatalf("AuthURL error = %v, want credential remediation", err)
	}
}

func TestAuthURL_ContainsOfflineAccess(t *testing.T) {
	p := newTestPublisher(t, testGrantStore(t), nil)

	url, err := p.AuthURL()
	if err != nil {
		t.Fatalf("AuthURL: %v", err)
	}
	for _, part := range []string{"access_type=offline", "prompt=consent", "state="} {
		if !strings.Contains(url, part) {
			t.Errorf("AuthURL missing %q: %s", part, url)
		}
	}
}

func TestHandleCallback_StateMismatch(t *testing.T) {
	p := newTestPublisher(t, testGrantStore(t), nil)

	if _, err := p.AuthURL(); err != nil {
		t.Fatalf("AuthURL: %v", err)
	}

	err := p.HandleCallback(context.Background(), "some-code", "wrong-state")
	if !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("HandleCallback error = %v, want ErrStateMismatch", err)
	}
}

func TestHandleCallback_NoIssuedState(t *testing.T) {
	p := newTestPublisher(t, testGrantStore(t), nil)

	err := p.HandleCallback(context.Background(), "some-code", "anything")
	if !errors.Is(err, ErrStateMismatch) {
		t.Fatalf("HandleCallback error = %v, want ErrStateMismatch", err)
	}
}

func TestPublish_NoGrantNeedsAuthorization(t *testing.T) {
	p := newTestPublisher(t, testGrantStore(t), &fakeUploader{})

	res, err := p.Publish(context.Background(), Request{FilePath: "/tmp/v.mp4"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !res.NeedsAuthorization {
		t.Fatalf("Publish = %+v, want NeedsAuthorization", res)
	}
	if res.AuthorizationURL == "" {
		t.Error("NeedsAuthorization result lacks authorization URL")
	}
	if res.Published || res.Failed {
		t.Errorf("outcome flags not exclusive: %+v", res)
	}
}

func TestPublish_Success(t *testing.T) {
	grants := testGrantStore(t)
	if err := grants.Save(testToken()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fake := &fakeUploader{id: "remote-video-id"}
	p := newTestPublisher(t, grants, fake)

	res, err := p.Publish(context.Background(), Request{FilePath: "/tmp/v.mp4"})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !res.Published || res.VideoID != "remote-video-id" {
		t.Fatalf("Publish = %+v, want Published with remote id", res)
	}

	// Omitted fields fall back to the fixed defaults.
	if fake.lastReq.Title != "My Video" {
		t.Errorf("Title = %q, want My Video", fake.lastReq.Title)
	}
	if fake.lastReq.PrivacyStatus != "unlisted" {
		t.Errorf("PrivacyStatus = %q, want unlisted", fake.lastReq.PrivacyStatus)
	}
}

func TestPublish_RemoteFailure(t *testing.T) {
	grants := testGrantStore(t)
	if err := grants.Save(testToken()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fake := &fakeUploader{err: errors.New("quota exceeded")}
	p := newTestPublisher(t, grants, fake)

	res, err := p.Publish(context.Background(), Request{FilePath: "/tmp/v.mp4"})
	if err != nil {
		t.Fatalf("Publish returned transport error %v, want failure result", err)
	}
	if !res.Failed || !strings.Contains(res.Reason, "quota exceeded") {
		t.Fatalf("Publish = %+v, want Failed with reason", res)
	}
}

func TestPublish_KeepsCallerFields(t *testing.T) {
	grants := testGrantStore(t)
	if err := grants.Save(testToken()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fake := &fakeUploader{id: "id"}
	p := newTestPublisher(t, grants, fake)

	_, err := p.Publish(context.Background(), Request{
		FilePath:      "/tmp/v.mp4",
		Title:         "Holiday",
		Description:   "clips",
		Tags:          []string{"a", "b"},
		PrivacyStatus: "private",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if fake.lastReq.Title != "Holiday" || fake.lastReq.PrivacyStatus != "private" {
		t.Errorf("caller fields overwritten: %+v", fake.lastReq)
	}
	if len(fake.lastReq.Tags) != 2 {
		t.Errorf("Tags = %v", fake.lastReq.Tags)
	}
}

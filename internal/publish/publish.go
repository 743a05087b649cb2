// Package publish hands finished video artifacts to YouTube. A publish
// attempt has exactly three outcomes: published with the remote id,
// authorization required with the URL to visit, or failed with the
// underlying reason. Authorization itself is a separate redirect flow the
// caller completes out of band.
package publish

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	youtube "google.golang.org/api/youtube/v3"

	"github.com/slidecast/slidecast-server/internal/logging"
)

const (
	defaultTitle   = "My Video"
	defaultPrivacy = "unlisted"
)

// ErrStateMismatch means the callback carried a state token that was never
// issued, or one already consumed.
var ErrStateMismatch = errors.New("invalid state parameter")

// Request describes one publish attempt.
type Request struct {
	FilePath      string
	Title         string
	Description   string
	Tags          []string
	PrivacyStatus string
}

// Result is the outcome of one publish attempt. Exactly one of Published,
// NeedsAuthorization, or Failed is set.
type Result struct {
	Published          bool   `json:"published"`
	VideoID            string `json:"videoId,omitempty"`
	NeedsAuthorization bool   `json:"needsAuthorization,omitempty"`
	AuthorizationURL   string `json:"authorizationUrl,omitempty"`
	Failed             bool   `json:"failed,omitempty"`
	Reason             string `json:"reason,omitempty"`
}

// uploader is the remote API contract; tests substitute a fake.
type uploader interface {
	Insert(ctx context.Context, client *http.Client, req Request) (string, error)
}

// Publisher drives the OAuth flow and upload attempts against one
// installation-wide grant.
type Publisher struct {
	oauth  *oauth2.Config
	grants *GrantStore
	api    uploader
	logger *slog.Logger

	mu    sync.Mutex
	state string // last issued CSRF state, consumed by the callback
}

func NewPublisher(clientID, clientSecret, redirectURI string, grants *GrantStore, logger *slog.Logger) *Publisher {
	return &Publisher{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{youtube.YoutubeUploadScope},
			Endpoint:     google.Endpoint,
		},
		grants: grants,
		api:    youtubeUploader{},
		logger: logger,
	}
}

// Configured reports whether the OAuth client credentials are present.
func (p *Publisher) Configured() bool {
	return p.oauth.ClientID != "" && p.oauth.ClientSecret != "" && p.oauth.RedirectURL != ""
}

// AuthURL issues a fresh authorization redirect target with a new CSRF
// state token.
func (p *Publisher) AuthURL() (string, error) {
	if !p.Configured() {
		return "", fmt.Errorf("missing YouTube OAuth configuration: set YT_CLIENT_ID, YT_CLIENT_SECRET, YT_REDIRECT_URI")
	}

	state, err := newState()
	if err != nil {
		return "", err
	}

	p.mu.Lock()
	p.state = state
	p.mu.Unlock()

	return p.oauth.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// HandleCallback exchanges the authorization code and persists the grant.
// The state parameter must match the last issued one.
func (p *Publisher) HandleCallback(ctx context.Context, code, state string) error {
	if !p.Configured() {
		return fmt.Errorf("missing YouTube OAuth configuration: set YT_CLIENT_ID, YT_CLIENT_SECRET, YT_REDIRECT_URI")
	}
	if code == "" {
		return fmt.Errorf("missing authorization code")
	}

	p.mu.Lock()
	expected := p.state
	p.state = ""
	p.mu.Unlock()

	if expected == "" || state != expected {
		return ErrStateMismatch
	}

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	if err := p.grants.Save(tok); err != nil {
		return err
	}

	if p.logger != nil {
		p.logger.Info("authorization grant stored",
			"access_token", logging.SanitizeToken(tok.AccessToken))
	}
	return nil
}

// Publish attempts one upload. No stored grant means the caller must
// authorize first; any remote failure is reported without retry.
func (p *Publisher) Publish(ctx context.Context, req Request) (Result, error) {
	if req.Title == "" {
		req.Title = defaultTitle
	}
	if req.PrivacyStatus == "" {
		req.PrivacyStatus = defaultPrivacy
	}

	tok, err := p.grants.Load()
	if err != nil {
		return Result{}, err
	}
	if tok == nil {
		authURL, err := p.AuthURL()
		if err != nil {
			return Result{}, err
		}
		return Result{NeedsAuthorization: true, AuthorizationURL: authURL}, nil
	}

	// Keep rotated tokens: the source persists whatever refresh produces.
	src := &savingTokenSource{
		src:    p.oauth.TokenSource(ctx, tok),
		grants: p.grants,
		last:   tok,
		logger: p.logger,
	}
	client := oauth2.NewClient(ctx, src)

	remoteID, err := p.api.Insert(ctx, client, req)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("publish attempt failed", "error", err)
		}
		return Result{Failed: true, Reason: err.Error()}, nil
	}

	if p.logger != nil {
		p.logger.Info("video published", "remote_id", remoteID, "privacy", req.PrivacyStatus)
	}
	return Result{Published: true, VideoID: remoteID}, nil
}

// savingTokenSource persists tokens whenever the wrapped source rotates
// them, so a refreshed grant survives process restarts.
type savingTokenSource struct {
	src    oauth2.TokenSource
	grants *GrantStore
	logger *slog.Logger

	mu   sync.Mutex
	last *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	rotated := s.last == nil || tok.AccessToken != s.last.AccessToken
	s.last = tok
	s.mu.Unlock()

	if rotated {
		if err := s.grants.Save(tok); err != nil && s.logger != nil {
			s.logger.Warn("failed to persist refreshed grant", "error", err)
		}
	}
	return tok, nil
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

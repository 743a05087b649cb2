package publish

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// GrantStore persists the installation-wide authorization grant as a single
// JSON file. Load-at-use, write-after-refresh, one writer at a time.
type GrantStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

func NewGrantStore(path string, logger *slog.Logger) *GrantStore {
	return &GrantStore{path: path, logger: logger}
}

// Load reads the current grant. A missing file means no grant yet and is not
// an error.
func (g *GrantStore) Load() (*oauth2.Token, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	data, err := os.ReadFile(g.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read grant: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse grant: %w", err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, nil
	}
	return &tok, nil
}

// Save replaces the persisted grant.
func (g *GrantStore) Save(tok *oauth2.Token) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(g.path), 0o700); err != nil {
		return fmt.Errorf("create tokens dir: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode grant: %w", err)
	}

	tmp := g.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write grant: %w", err)
	}
	if err := os.Rename(tmp, g.path); err != nil {
		return fmt.Errorf("replace grant: %w", err)
	}
	return nil
}

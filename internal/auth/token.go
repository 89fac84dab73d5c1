package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenFile persists the session token under a fixed path. Load precedence
// is MOONBOUND_TOKEN, then the file; Save and Clear only touch the file, so
// an env-provided token survives logout until the variable is unset.
type TokenFile struct {
	path string
}

// NewTokenFile returns the store backed by <dir>/token.
func NewTokenFile(dir string) *TokenFile {
	return &TokenFile{path: filepath.Join(dir, "token")}
}

// Load returns the persisted token, or "" when none exists.
func (f *TokenFile) Load() string {
	if tok := os.Getenv("MOONBOUND_TOKEN"); tok != "" {
		return tok
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// Save writes the token with owner-only permissions.
func (f *TokenFile) Save(tok string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("auth: create token dir: %w", err)
	}
	if err := os.WriteFile(f.path, []byte(tok), 0600); err != nil {
		return fmt.Errorf("auth: save token: %w", err)
	}
	return nil
}

// Clear removes the persisted token. A missing file is not an error.
func (f *TokenFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("auth: remove token: %w", err)
	}
	return nil
}

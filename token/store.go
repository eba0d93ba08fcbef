package token

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var (
	// ErrNotFound means no credential file exists at any candidate path
	ErrNotFound = errors.New("token file not found")
	// ErrInvalid means the credential file exists but is unusable
	ErrInvalid = errors.New("token file is invalid")
)

// Store locates and loads the Google OAuth credential file. The file is
// written by the OAuth callback and refreshed externally; everything else
// treats it as read-only.
type Store struct {
	candidates []string
}

// NewStore builds a store over the ordered candidate paths. An explicit
// path (from config) takes priority; the defaults cover running from the
// repo root or from a subdirectory.
func NewStore(explicit string) *Store {
	var candidates []string
	if explicit != "" {
		candidates = append(candidates, explicit)
	}
	candidates = append(candidates,
		"token.json",
		filepath.Join("..", "token.json"),
	)
	return &Store{candidates: candidates}
}

// Path returns the first candidate that exists, or the default location
// new tokens should be written to.
func (s *Store) Path() string {
	for _, p := range s.candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return s.candidates[0]
}

// Load reads and parses the credential file. It returns ErrNotFound when
// no candidate exists and ErrInvalid when the file cannot be parsed or has
// no access token. Callers must treat both as "re-authenticate via /auth"
// and must not proceed to Google API calls.
func (s *Store) Load() (*oauth2.Token, error) {
	var path string
	for _, p := range s.candidates {
		if _, err := os.Stat(p); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		return nil, ErrNotFound
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ErrNotFound
	}

	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, ErrInvalid
	}
	if tok.AccessToken == "" {
		return nil, ErrInvalid
	}
	return &tok, nil
}

// Save writes the credential file with owner-only permissions.
func (s *Store) Save(tok *oauth2.Token) error {
	raw, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path(), raw, 0600)
}

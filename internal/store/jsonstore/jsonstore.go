package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Makepad-fr/itemdesk/internal/session"
)

// JSON-backed session storage. Single file, human-readable, owner-only.

const (
	credFileName = "credentials.json"
	// TokenEnv overrides the file when set.
	TokenEnv = "ITEMDESK_TOKEN"
)

// Store keeps the session in <dir>/credentials.json.
type Store struct {
	dir    string
	getenv func(string) string

	mu sync.Mutex
	// envDropped is set once an env-provided token has been cleared, so a
	// token the server rejected is not picked up again by this process.
	envDropped bool
}

func New(dir string) *Store {
	return &Store{dir: dir, getenv: os.Getenv}
}

// Path is the credentials file location.
func (s *Store) Path() string { return filepath.Join(s.dir, credFileName) }

func (s *Store) Load() (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// 1) env override
	if !s.envDropped {
		if env := strings.TrimSpace(s.getenv(TokenEnv)); env != "" {
			return &session.Session{Token: session.StripBearer(env), Source: session.SourceEnv}, nil
		}
	}

	// 2) file
	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ss session.Session
	if err := json.Unmarshal(b, &ss); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ss.Token = session.StripBearer(ss.Token)
	if ss.Token == "" {
		return nil, nil
	}
	return &ss, nil
}

func (s *Store) Save(ss *session.Session) error {
	if ss == nil || strings.TrimSpace(ss.Token) == "" {
		return session.ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// ensure the dir exists with 0700
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	cp := *ss
	cp.Source = session.SourceFile
	b, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	// write to a temp file first so a crash never leaves half a token
	tmp := s.Path() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := os.Rename(tmp, s.Path()); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Clear removes the credentials file. An env token cannot be unset from
// here; it is ignored for the rest of the process instead.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.getenv(TokenEnv)) != "" {
		s.envDropped = true
	}
	if err := os.Remove(s.Path()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

// Package session holds the client's one piece of persisted state: the
// bearer token handed out at login.
package session

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// Sources a session can come from.
const (
	SourceFile = "file"
	SourceEnv  = "env"
)

var (
	// ErrNoSession is returned by the guard when nobody is logged in.
	ErrNoSession = errors.New("not logged in")
	// ErrEmptyToken is returned when saving a blank token.
	ErrEmptyToken = errors.New("empty token")
)

// Session is the authenticated state. ExpiresAt is informational: the
// client never rejects a token on its own, the server does.
type Session struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved it
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT exp)
}

// New builds a file session for token, stripping a "Bearer " prefix and
// picking the expiry up from the token when it is a JWT.
func New(token string) (*Session, error) {
	token = StripBearer(strings.TrimSpace(token))
	if token == "" {
		return nil, ErrEmptyToken
	}
	s := &Session{Token: token, Source: SourceFile, CreatedAt: time.Now()}
	if c, err := ParseClaims(token); err == nil && c.ExpiresAt != nil {
		exp := *c.ExpiresAt
		s.ExpiresAt = &exp
	}
	return s, nil
}

// Store persists the session between runs. Load returns (nil, nil) when
// nobody is logged in.
type Store interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

// Token returns the stored token, or "" when there is none.
func Token(st Store) (string, error) {
	s, err := st.Load()
	if err != nil || s == nil {
		return "", err
	}
	return s.Token, nil
}

// MemoryStore keeps the session in process. Used by tests and by the dev
// tooling that does not want to touch the user's credentials file.
type MemoryStore struct {
	mu sync.Mutex
	s  *Session
}

func NewMemoryStore(s *Session) *MemoryStore { return &MemoryStore{s: s} }

func (m *MemoryStore) Load() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemoryStore) Save(s *Session) error {
	if s == nil || strings.TrimSpace(s.Token) == "" {
		return ErrEmptyToken
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.s = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}

// StripBearer removes a leading "Bearer " (any case).
func StripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}

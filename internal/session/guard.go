package session

import "strings"

// Guard gates protected views on the presence of a token. It does not look
// at expiry: a stale token passes until the server answers 401.
type Guard struct {
	Store Store
}

func NewGuard(st Store) Guard { return Guard{Store: st} }

// Check returns the current session or ErrNoSession.
func (g Guard) Check() (*Session, error) {
	s, err := g.Store.Load()
	if err != nil {
		return nil, err
	}
	if s == nil || strings.TrimSpace(s.Token) == "" {
		return nil, ErrNoSession
	}
	return s, nil
}

// Allowed is Check as a predicate. Read errors count as "not allowed".
func (g Guard) Allowed() bool {
	_, err := g.Check()
	return err == nil
}

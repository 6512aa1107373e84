package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return tok
}

func TestNewStripsBearerAndReadsExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.MapClaims{"sub": "42", "exp": exp.Unix()})

	s, err := New("  Bearer " + tok)
	require.NoError(t, err)
	require.Equal(t, tok, s.Token)
	require.Equal(t, SourceFile, s.Source)
	require.NotNil(t, s.ExpiresAt)
	require.True(t, exp.Equal(*s.ExpiresAt))
}

func TestNewOpaqueToken(t *testing.T) {
	s, err := New("abc")
	require.NoError(t, err)
	require.Equal(t, "abc", s.Token)
	require.Nil(t, s.ExpiresAt)

	_, err = New("bearer   ")
	require.ErrorIs(t, err, ErrEmptyToken)
}

func TestMemoryStore(t *testing.T) {
	st := NewMemoryStore(nil)
	s, err := st.Load()
	require.NoError(t, err)
	require.Nil(t, s)

	require.ErrorIs(t, st.Save(&Session{}), ErrEmptyToken)
	require.NoError(t, st.Save(&Session{Token: "abc"}))

	tok, err := Token(st)
	require.NoError(t, err)
	require.Equal(t, "abc", tok)

	require.NoError(t, st.Clear())
	tok, err = Token(st)
	require.NoError(t, err)
	require.Empty(t, tok)
}

func TestGuard(t *testing.T) {
	st := NewMemoryStore(nil)
	g := NewGuard(st)

	_, err := g.Check()
	require.ErrorIs(t, err, ErrNoSession)
	require.False(t, g.Allowed())

	// Expired tokens still pass; the server decides.
	stale := signed(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, st.Save(&Session{Token: stale}))
	s, err := g.Check()
	require.NoError(t, err)
	require.Equal(t, stale, s.Token)
	require.True(t, g.Allowed())
}

func TestParseClaims(t *testing.T) {
	tok := signed(t, jwt.MapClaims{
		"sub":   "7",
		"email": "a@b.com",
		"name":  "Alice",
		"iss":   "itemdesk-dev",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	})
	c, err := ParseClaims(tok)
	require.NoError(t, err)
	require.Equal(t, "7", c.Subject)
	require.Equal(t, "a@b.com", c.Email)
	require.Equal(t, "Alice", c.Name)
	require.Equal(t, "itemdesk-dev", c.Issuer)
	require.True(t, c.Expired(time.Now()))

	_, err = ParseClaims("not-a-jwt")
	require.ErrorIs(t, err, ErrOpaqueToken)
}

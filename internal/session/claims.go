package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken means the token is not a JWT and cannot be introspected.
var ErrOpaqueToken = errors.New("opaque token")

// Claims is what whoami and status can show about a JWT session. The
// signature is not checked; only the server can do that.
type Claims struct {
	Subject   string
	Email     string
	Name      string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
	Raw       jwt.MapClaims
}

// ParseClaims decodes the payload of a JWT without verifying it.
func ParseClaims(token string) (*Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(StripBearer(token), mc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOpaqueToken, err)
	}
	c := &Claims{Raw: mc}
	c.Subject, _ = mc.GetSubject()
	c.Issuer, _ = mc.GetIssuer()
	if exp, err := mc.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		c.ExpiresAt = &t
	}
	if iat, err := mc.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		c.IssuedAt = &t
	}
	c.Email, _ = mc["email"].(string)
	c.Name, _ = mc["name"].(string)
	return c, nil
}

// Expired reports whether the JWT exp lies in the past. Display only.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

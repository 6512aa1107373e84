package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/Makepad-fr/itemdesk/internal/model"
)

// ErrNoToken is returned when a login answer carries no token.
var ErrNoToken = errors.New("login response has no token")

// Login posts the credentials and returns the server's answer. Storing the
// token is left to the caller.
func (c *Client) Login(ctx context.Context, cred model.Credentials) (model.LoginResult, error) {
	var res model.LoginResult
	if err := c.do(ctx, http.MethodPost, "/auth/login", cred, &res); err != nil {
		return model.LoginResult{}, err
	}
	if res.Token == "" {
		return model.LoginResult{}, ErrNoToken
	}
	return res, nil
}

func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	return c.do(ctx, http.MethodPost, "/auth/register", reg, nil)
}

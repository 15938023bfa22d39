package api

import (
	"context"
	"net/http"
	"time"

	"github.com/pquerna/otp/totp"

	terrors "tradegate/internal/errors"
	"tradegate/internal/gateway"
	"tradegate/internal/session"
)

// Signup registers a new account and stores the returned token pair, so a
// fresh signup is immediately logged in.
func (c *Client) Signup(ctx context.Context, email, password string) (session.Tokens, error) {
	tokens, err := gateway.Call[session.Tokens](ctx, c.gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   "/auth/signup",
		Body:   map[string]string{"email": email, "password": password},
	}, tokenPairSchema)
	if err != nil {
		return session.Tokens{}, terrors.Wrap(err, "signup failed")
	}

	if err := c.gw.Tokens().Set(tokens); err != nil {
		return session.Tokens{}, terrors.Wrap(err, "signup succeeded but session could not be stored")
	}
	return tokens, nil
}

// Login authenticates with email and password and stores the returned token
// pair. The signin endpoint takes form-encoded OAuth2 password-grant fields,
// with the email in the username field.
func (c *Client) Login(ctx context.Context, email, password string) (session.Tokens, error) {
	tokens, err := gateway.Call[session.Tokens](ctx, c.gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   "/auth/signin",
		Form:   map[string]string{"username": email, "password": password},
	}, tokenPairSchema)
	if err != nil {
		return session.Tokens{}, terrors.Wrap(err, "login failed")
	}

	if err := c.gw.Tokens().Set(tokens); err != nil {
		return session.Tokens{}, terrors.Wrap(err, "login succeeded but session could not be stored")
	}
	return tokens, nil
}

// RequestOTP asks the backend to issue a one-time password for the account.
func (c *Client) RequestOTP(ctx context.Context, email string) error {
	_, err := c.gw.Do(ctx, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   "/auth/request-otp",
		Body:   map[string]string{"email": email},
	}, messageSchema)
	if err != nil {
		return terrors.Wrap(err, "otp request failed")
	}
	return nil
}

// LoginWithOTP completes the passwordless flow with a one-time password and
// stores the returned token pair.
func (c *Client) LoginWithOTP(ctx context.Context, email, otp string) (session.Tokens, error) {
	tokens, err := gateway.Call[session.Tokens](ctx, c.gw, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   "/auth/otp-login",
		Body:   map[string]string{"email": email, "otp": otp},
	}, tokenPairSchema)
	if err != nil {
		return session.Tokens{}, terrors.Wrap(err, "otp login failed")
	}

	if err := c.gw.Tokens().Set(tokens); err != nil {
		return session.Tokens{}, terrors.Wrap(err, "otp verified but session could not be stored")
	}
	return tokens, nil
}

// AutoLogin runs the passwordless flow end to end for accounts provisioned
// with a TOTP secret: it requests an OTP, mints the current code from the
// secret, and completes the login without any interactive prompt.
func (c *Client) AutoLogin(ctx context.Context, email, totpSecret string) (session.Tokens, error) {
	if err := c.RequestOTP(ctx, email); err != nil {
		return session.Tokens{}, err
	}

	code, err := totp.GenerateCode(totpSecret, time.Now())
	if err != nil {
		return session.Tokens{}, terrors.Wrap(err, "failed to generate TOTP code")
	}
	return c.LoginWithOTP(ctx, email, code)
}

// Logout invalidates the refresh token on the backend, then clears the
// local session. The backend takes the refresh token as a scalar query
// parameter. Local cleanup happens even when the backend call fails, so a
// logged-out client never keeps a usable token pair around.
func (c *Client) Logout(ctx context.Context) error {
	tokens, ok := c.gw.Tokens().Get()
	if !ok {
		return c.gw.Tokens().Clear()
	}

	_, callErr := c.gw.Do(ctx, gateway.Descriptor{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Query:  map[string]string{"refresh_token": tokens.Refresh},
	}, nil)

	if err := c.gw.Tokens().Clear(); err != nil {
		return terrors.Wrap(err, "failed to clear session")
	}
	if callErr != nil {
		return terrors.Wrap(callErr, "logout request failed")
	}
	return nil
}

// Authenticated reports whether a session token pair is currently stored.
func (c *Client) Authenticated() bool {
	_, ok := c.gw.Tokens().Get()
	return ok
}

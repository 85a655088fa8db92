package auth

import (
	"context"
	"errors"
	"fmt"

	"filevault/internal/metrics"
	"filevault/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// ErrUnauthenticated covers both unknown users and wrong passwords.
var ErrUnauthenticated = errors.New("invalid credentials")

// Identity is the authenticated caller of a single request.
type Identity struct {
	Username string
	IsAdmin  bool
}

const (
	identityContextKey     = "auth_identity"
	verificationContextKey = "auth_verification"
)

type verification struct {
	identity Identity
	err      error
}

type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (store.User, error)
}

type Authenticator struct {
	users  UserLookup
	scheme PasswordScheme
}

func NewAuthenticator(users UserLookup, scheme PasswordScheme) *Authenticator {
	if scheme == nil {
		scheme = PlainScheme{}
	}
	return &Authenticator{
		users:  users,
		scheme: scheme,
	}
}

func (a *Authenticator) Scheme() PasswordScheme {
	return a.scheme
}

func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	if username == "" {
		return Identity{}, ErrUnauthenticated
	}
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		if store.IsNotFound(err) {
			return Identity{}, ErrUnauthenticated
		}
		return Identity{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.Username != username || !a.scheme.Verify(user.Password, password) {
		return Identity{}, ErrUnauthenticated
	}
	return Identity{Username: user.Username, IsAdmin: user.IsAdmin}, nil
}

// Verify authenticates the credentials of the request in c. The outcome is
// cached on c, so later calls for the same request do not hit the user
// directory or the password scheme again.
func (a *Authenticator) Verify(c echo.Context, username, password string) (Identity, error) {
	if v, ok := c.Get(verificationContextKey).(verification); ok {
		return v.identity, v.err
	}
	identity, err := a.Authenticate(c.Request().Context(), username, password)
	c.Set(verificationContextKey, verification{identity: identity, err: err})
	return identity, err
}

// Middleware enforces HTTP Basic credentials and binds the Identity to the request.
func (a *Authenticator) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return middleware.BasicAuthWithConfig(middleware.BasicAuthConfig{
		Realm: "filevault",
		Validator: func(username, password string, c echo.Context) (bool, error) {
			identity, err := a.Verify(c, username, password)
			if err != nil {
				metrics.RecordAuthAttempt(false)
				if errors.Is(err, ErrUnauthenticated) {
					return false, nil
				}
				return false, err
			}
			metrics.RecordAuthAttempt(true)
			c.Set(identityContextKey, identity)
			return true, nil
		},
	})(next)
}

func GetIdentity(c echo.Context) (Identity, bool) {
	raw := c.Get(identityContextKey)
	if raw == nil {
		return Identity{}, false
	}
	identity, ok := raw.(Identity)
	return identity, ok
}

// Package session resolves the operator session for a request and decides
// whether a route may render.
package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

// CookieName is the cookie carrying the session token
const CookieName = "session"

// State is the tri-state of a session
type State int

const (
	// Loading means the session could not be resolved yet
	Loading State = iota
	Authenticated
	Anonymous
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	}
	return "unknown"
}

// Session is the resolved session passed explicitly to handlers
type Session struct {
	State State
	User  *models.User
	Token string
}

// LoadingSession returns a session that is still resolving
func LoadingSession() Session { return Session{State: Loading} }

// AnonymousSession returns a session with no user
func AnonymousSession() Session { return Session{State: Anonymous} }

// AuthenticatedSession returns a session for user
func AuthenticatedSession(user *models.User, token string) Session {
	return Session{State: Authenticated, User: user, Token: token}
}

// OwnerID returns the signed-in user's ID, empty unless authenticated
func (s Session) OwnerID() string {
	if s.State != Authenticated || s.User == nil {
		return ""
	}
	return s.User.ID
}

// Decision is the outcome of gating a route
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	ShowLoading
)

// Gate decides what a route renders. Ungated routes are always allowed.
func Gate(s Session, gated bool) Decision {
	if !gated {
		return Allow
	}
	switch s.State {
	case Authenticated:
		return Allow
	case Anonymous:
		return RedirectLogin
	default:
		return ShowLoading
	}
}

type contextKey struct{}

// WithSession stores s in ctx
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or a loading session
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(contextKey{}).(Session); ok {
		return s
	}
	return LoadingSession()
}

// TokenFromRequest reads a bearer token, falling back to the session cookie
func TokenFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Resolver turns request tokens into sessions
type Resolver struct {
	auth    gateway.Authenticator
	timeout time.Duration
}

// NewResolver creates a resolver; timeout bounds each lookup
func NewResolver(auth gateway.Authenticator, timeout time.Duration) *Resolver {
	return &Resolver{auth: auth, timeout: timeout}
}

// Resolve looks up token. Missing, unknown or expired tokens are anonymous;
// a backend failure or timeout leaves the session loading.
func (r *Resolver) Resolve(ctx context.Context, token string) Session {
	if token == "" {
		return AnonymousSession()
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	user, err := r.auth.CurrentUser(ctx, token)
	switch {
	case err == nil:
		return AuthenticatedSession(user, token)
	case errors.Is(err, gateway.ErrInvalidCredentials),
		errors.Is(err, gateway.ErrSessionExpired),
		errors.Is(err, gateway.ErrNotFound):
		return AnonymousSession()
	default:
		return LoadingSession()
	}
}

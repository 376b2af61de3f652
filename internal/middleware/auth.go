package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Dan9191/todo-service/internal/common"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// SessionCookie is the cookie name accepted as an alternative to the
// Authorization header.
const SessionCookie = "session"

type ctxKey string

const (
	sessionKey ctxKey = "session"
	expiresKey ctxKey = "sessionExpires"
)

// Permission is what a route requires from the caller.
type Permission int

const (
	Authenticated Permission = iota
	Public
	Admin
)

// Rule binds a route path template, and everything below it, to a permission.
type Rule struct {
	Path       string
	Permission Permission
}

// DefaultRules is the routing-to-permission table of the service. Routes not
// listed require an authenticated caller.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/signup", Permission: Public},
		{Path: "/signin", Permission: Public},
		{Path: "/users", Permission: Admin},
	}
}

// Authenticator turns a session token into verified session claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.SessionClaims, time.Time, error)
}

// Policy enforces the permission table on matched routes.
type Policy struct {
	rules []Rule
	auth  Authenticator
	log   *logrus.Logger
}

// NewPolicy builds the policy once at start-up.
func NewPolicy(auth Authenticator, log *logrus.Logger, rules []Rule) *Policy {
	return &Policy{rules: rules, auth: auth, log: log}
}

// PermissionFor returns the permission required by a route path template.
func (p *Policy) PermissionFor(pathTemplate string) Permission {
	for _, rule := range p.rules {
		if pathTemplate == rule.Path || strings.HasPrefix(pathTemplate, rule.Path+"/") {
			return rule.Permission
		}
	}
	return Authenticated
}

// Middleware is a mux middleware; it relies on the route already being matched.
func (p *Policy) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		perm := Authenticated
		if route := mux.CurrentRoute(r); route != nil {
			if tpl, err := route.GetPathTemplate(); err == nil {
				perm = p.PermissionFor(tpl)
			}
		}
		if perm == Public {
			next.ServeHTTP(w, r)
			return
		}

		token := tokenFromRequest(r)
		if token == "" {
			http.Error(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		session, expires, err := p.auth.Authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrInvalidToken) {
				http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
				return
			}
			p.log.Errorf("Failed to authenticate request: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		if perm == Admin && !session.Has(models.AuthorityAdmin) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session, expires)))
	})
}

// WithSession stores verified session claims in ctx.
func WithSession(ctx context.Context, session models.SessionClaims, expires time.Time) context.Context {
	ctx = context.WithValue(ctx, sessionKey, session)
	return context.WithValue(ctx, expiresKey, expires)
}

// SessionFromContext returns the session stored by the policy middleware.
func SessionFromContext(ctx context.Context) (models.SessionClaims, time.Time, bool) {
	session, ok := ctx.Value(sessionKey).(models.SessionClaims)
	if !ok || session.Username == "" {
		return models.SessionClaims{}, time.Time{}, false
	}
	expires, _ := ctx.Value(expiresKey).(time.Time)
	return session, expires, true
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

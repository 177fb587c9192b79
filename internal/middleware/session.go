package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hongminglow/forum-be/internal/auth"
	"github.com/hongminglow/forum-be/internal/logging"
	"github.com/hongminglow/forum-be/internal/models"
	"github.com/hongminglow/forum-be/internal/session"
)

// SessionResolver maps a session token to an identity.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) models.Identity
}

// BearerParser extracts the session token from a bearer JWT.
type BearerParser interface {
	SessionToken(bearer string) (string, error)
}

// Session resolves the caller's identity on every request and stores it, together with the
// cookie carrier, in the request context.
type Session struct {
	store    *session.Store
	resolver SessionResolver
	bearer   BearerParser
	logger   *slog.Logger
}

// NewSession creates the middleware. A nil bearer parser disables Authorization headers.
func NewSession(store *session.Store, resolver SessionResolver, bearer BearerParser, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Session{store: store, resolver: resolver, bearer: bearer, logger: logger}
}

// Handler wraps next. It never rejects a request; unresolvable callers continue as Anonymous.
func (m *Session) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		carrier, err := m.store.Load(r)
		if err != nil {
			m.logger.DebugContext(r.Context(), "discarding unreadable session cookie", "error", err)
		}

		token := carrier.Token()
		if bearer, ok := bearerToken(r); ok && m.bearer != nil {
			token, err = m.bearer.SessionToken(bearer)
			if err != nil {
				m.logger.DebugContext(r.Context(), "rejecting bearer token", logging.ErrorAttrs(err)...)
				token = ""
			}
		}

		identity := m.resolver.ResolveSession(r.Context(), token)

		ctx := auth.WithIdentity(r.Context(), identity)
		ctx = session.WithCarrier(ctx, carrier)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, value, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	return strings.TrimSpace(value), true
}

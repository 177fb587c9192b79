// Package session carries the opaque session token in an HMAC-signed cookie.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
)

const tokenKey = "token"

// Store loads and saves signed cookie sessions.
type Store struct {
	cookies *sessions.CookieStore
	name    string
}

// NewStore creates a cookie store signed with secret. Cookies are HttpOnly and SameSite=Lax.
func NewStore(secret, cookieName string, maxAge time.Duration, secure bool) *Store {
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	cookies.MaxAge(cookies.Options.MaxAge)
	return &Store{cookies: cookies, name: cookieName}
}

// Load returns the carrier for the request's cookie. A missing, expired or forged cookie
// yields an empty carrier; the error only reports why the cookie was discarded.
func (s *Store) Load(r *http.Request) (*Carrier, error) {
	sess, err := s.cookies.Get(r, s.name)
	if err != nil {
		sess.Values = map[any]any{}
		sess.IsNew = true
	}
	return &Carrier{session: sess, request: r, maxAge: s.cookies.Options.MaxAge}, err
}

// Carrier is the per-request view of a cookie session.
type Carrier struct {
	session *sessions.Session
	request *http.Request
	maxAge  int
}

// Token returns the session token held by the cookie, or "".
func (c *Carrier) Token() string {
	token, _ := c.session.Values[tokenKey].(string)
	return token
}

// SetToken replaces the token and keeps the cookie alive for the configured max age.
func (c *Carrier) SetToken(token string) {
	c.session.Values[tokenKey] = token
	c.session.Options.MaxAge = c.maxAge
}

// Clear drops the token and expires the cookie on the next Save.
func (c *Carrier) Clear() {
	delete(c.session.Values, tokenKey)
	c.session.Options.MaxAge = -1
}

// Save writes the Set-Cookie header. Call it before writing the response body.
func (c *Carrier) Save(w http.ResponseWriter) error {
	return c.session.Save(c.request, w)
}

type carrierKey struct{}

// WithCarrier returns a copy of ctx carrying c.
func WithCarrier(ctx context.Context, c *Carrier) context.Context {
	return context.WithValue(ctx, carrierKey{}, c)
}

// FromContext returns the carrier stored by WithCarrier.
func FromContext(ctx context.Context) (*Carrier, bool) {
	c, ok := ctx.Value(carrierKey{}).(*Carrier)
	return c, ok
}

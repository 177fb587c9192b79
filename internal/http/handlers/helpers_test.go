package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/forum-be/internal/auth"
	"github.com/hongminglow/forum-be/internal/middleware"
	"github.com/hongminglow/forum-be/internal/session"
)

type testEnv struct {
	server *httptest.Server
	store  *memStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	svc := auth.NewService(store, auth.NewBcryptHasher(bcrypt.MinCost), nil, nil)
	tokens := auth.NewTokenManager("0123456789abcdef0123456789abcdef", "forum-test", time.Hour)
	cookies := session.NewStore("fedcba9876543210fedcba9876543210", "session", time.Hour, false)

	mux := http.NewServeMux()
	NewAuthHandler(svc, tokens, nil).Register(mux)
	NewPostsHandler(store, nil).Register(mux)
	NewHealthHandler(time.Now(), store).Register(mux)

	srv := httptest.NewServer(middleware.NewSession(cookies, svc, tokens, nil).Handler(mux))
	t.Cleanup(srv.Close)
	return &testEnv{server: srv, store: store}
}

// client returns a browser-like client with its own cookie jar.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), "body: %s", body)
	return env
}

func (e *testEnv) postForm(t *testing.T, c *http.Client, path string, form url.Values) envelope {
	t.Helper()
	resp, err := c.PostForm(e.server.URL+path, form)
	require.NoError(t, err)
	return decodeEnvelope(t, resp)
}

func (e *testEnv) postJSON(t *testing.T, c *http.Client, path, body, bearer string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	return decodeEnvelope(t, resp)
}

func (e *testEnv) get(t *testing.T, c *http.Client, path, bearer string) envelope {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := c.Do(req)
	require.NoError(t, err)
	return decodeEnvelope(t, resp)
}

func unmarshalData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

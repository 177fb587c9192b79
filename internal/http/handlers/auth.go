package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hongminglow/forum-be/internal/auth"
	"github.com/hongminglow/forum-be/internal/http/respond"
	"github.com/hongminglow/forum-be/internal/logging"
	"github.com/hongminglow/forum-be/internal/models"
	"github.com/hongminglow/forum-be/internal/models/dto"
	"github.com/hongminglow/forum-be/internal/session"
	"github.com/hongminglow/forum-be/internal/storage"
)

// Authenticator is the subset of auth.Service the handlers drive.
type Authenticator interface {
	Register(ctx context.Context, username, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (models.User, error)
	Logout(ctx context.Context, userID int64) error
}

// BearerIssuer signs bearer tokens for API clients.
type BearerIssuer interface {
	Generate(user models.User) (string, error)
}

// AuthHandler owns the register, login, logout and me endpoints.
type AuthHandler struct {
	auth   Authenticator
	tokens BearerIssuer
	logger *slog.Logger
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authenticator Authenticator, tokens BearerIssuer, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = logging.Discard()
	}
	return &AuthHandler{auth: authenticator, tokens: tokens, logger: logger}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/login", h.handleLogin)
	mux.HandleFunc("/logout", h.handleLogout)
	mux.HandleFunc("/me", h.handleMe)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req dto.RegisterRequest
	err := decodeBody(w, r, &req, func(form url.Values) {
		req.Username = form.Get("username")
		req.Password = form.Get("password")
		req.PasswordConfirm = form.Get("password_confirm")
	})
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	username := strings.TrimSpace(req.Username)
	switch {
	case username == "":
		respond.Error(w, http.StatusBadRequest, "Username is required.")
		return
	case req.Password == "" || req.PasswordConfirm == "":
		respond.Error(w, http.StatusBadRequest, "Password is required")
		return
	case req.Password != req.PasswordConfirm:
		respond.Error(w, http.StatusBadRequest, "Passwords must match")
		return
	}

	user, err := h.auth.Register(r.Context(), username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			respond.Error(w, http.StatusConflict, "Username already taken")
		case errors.Is(err, auth.ErrInvalidInput):
			respond.Error(w, http.StatusBadRequest, "Username and password are required")
		default:
			logging.LogError(h.logger, "register failed", err)
			respond.Error(w, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	h.startSession(w, r, http.StatusCreated, "User successfully registered", user)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req dto.LoginRequest
	err := decodeBody(w, r, &req, func(form url.Values) {
		req.Username = form.Get("username")
		req.Password = form.Get("password")
	})
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Please provide a username and password")
		return
	}

	user, err := h.auth.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		logging.LogError(h.logger, "login failed", err)
		respond.Error(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	h.startSession(w, r, http.StatusOK, "Successfully logged in", user)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	identity := auth.IdentityFromContext(r.Context())
	if err := h.auth.Logout(r.Context(), identity.ID); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logging.LogError(h.logger, "logout failed", err)
		respond.Error(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	if carrier, ok := session.FromContext(r.Context()); ok {
		carrier.Clear()
		if err := carrier.Save(w); err != nil {
			logging.LogError(h.logger, "clear session cookie failed", err)
		}
	}
	respond.JSON(w, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respond.Error(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", auth.IdentityFromContext(r.Context()))
}

// startSession stores the new token in the cookie and returns a bearer wrapping it.
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, status int, message string, user models.User) {
	bearer, err := h.tokens.Generate(user)
	if err != nil {
		logging.LogError(h.logger, "issue bearer token failed", err)
		respond.Error(w, http.StatusInternalServerError, "failed to start session")
		return
	}

	if carrier, ok := session.FromContext(r.Context()); ok {
		carrier.SetToken(user.SessionToken)
		if err := carrier.Save(w); err != nil {
			logging.LogError(h.logger, "save session cookie failed", err)
			respond.Error(w, http.StatusInternalServerError, "failed to start session")
			return
		}
	}

	respond.JSON(w, status, message, dto.SessionResponse{Token: bearer, User: user.Identity()})
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/hongminglow/forum-be/internal/logging"
	"github.com/hongminglow/forum-be/internal/metrics"
	"github.com/hongminglow/forum-be/internal/models"
	"github.com/hongminglow/forum-be/internal/storage"
)

// Service provides registration, login, logout and session resolution.
type Service struct {
	users   storage.UserStore
	hasher  PasswordHasher
	logger  *slog.Logger
	metrics *metrics.Auth
}

// NewService creates a Service. A nil logger discards output; nil metrics are not recorded.
func NewService(users storage.UserStore, hasher PasswordHasher, logger *slog.Logger, m *metrics.Auth) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		users:   users,
		hasher:  hasher,
		logger:  logger.With("component", "auth"),
		metrics: m,
	}
}

// Register creates a user and starts a session for it.
// The returned user carries the new plaintext session token.
func (s *Service) Register(ctx context.Context, username, password string) (models.User, error) {
	if err := validateInput(username, password); err != nil {
		s.metrics.Attempt("register", metrics.ResultRejected)
		return models.User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.metrics.Attempt("register", metrics.ResultError)
		return models.User{}, oops.Code("AUTH_REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	user, err := s.users.Insert(ctx, username, hash)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			s.metrics.Attempt("register", metrics.ResultRejected)
			s.logger.InfoContext(ctx, "registration rejected: username taken", "username", username)
			return models.User{}, oops.Code("AUTH_USERNAME_TAKEN").
				With("username", username).
				Wrap(fmt.Errorf("%w: %w", ErrUsernameTaken, err))
		}
		s.metrics.Attempt("register", metrics.ResultError)
		return models.User{}, oops.Code("AUTH_REGISTER_FAILED").With("operation", "insert user").Wrap(err)
	}

	user, err = s.startSession(ctx, user)
	if err != nil {
		s.metrics.Attempt("register", metrics.ResultError)
		return models.User{}, err
	}

	s.metrics.Attempt("register", metrics.ResultSuccess)
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login verifies credentials and rotates the user's session token.
// Unknown usernames and wrong passwords fail with the same error after the same amount of hashing work.
func (s *Service) Login(ctx context.Context, username, password string) (models.User, error) {
	if err := validateInput(username, password); err != nil {
		s.metrics.Attempt("login", metrics.ResultRejected)
		return models.User{}, err
	}

	user, lookupErr := s.users.FindByUsername(ctx, username)

	var targetHash string
	exists := lookupErr == nil
	switch {
	case exists:
		targetHash = user.PasswordHash
	case errors.Is(lookupErr, storage.ErrNotFound):
		targetHash = s.hasher.DummyHash()
	default:
		s.metrics.Attempt("login", metrics.ResultError)
		return models.User{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "find user by username").
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && exists {
		s.metrics.Attempt("login", metrics.ResultError)
		return models.User{}, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("user_id", user.ID).
			Wrap(verifyErr)
	}
	if !exists || !valid {
		s.metrics.Attempt("login", metrics.ResultRejected)
		return models.User{}, invalidCredentials()
	}

	user, err := s.startSession(ctx, user)
	if err != nil {
		s.metrics.Attempt("login", metrics.ResultError)
		return models.User{}, err
	}

	s.metrics.Attempt("login", metrics.ResultSuccess)
	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return user, nil
}

// Logout clears the user's session token. Logging out the anonymous identity is a no-op.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	if userID == models.AnonymousID {
		return nil
	}
	if err := s.users.ClearToken(ctx, userID); err != nil {
		s.metrics.Attempt("logout", metrics.ResultError)
		return oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "clear session token").
			With("user_id", userID).
			Wrap(err)
	}
	s.metrics.Attempt("logout", metrics.ResultSuccess)
	s.logger.InfoContext(ctx, "user logged out", "user_id", userID)
	return nil
}

// ResolveSession maps a session token to its user. Empty, unknown or unresolvable tokens
// yield models.Anonymous; store failures are logged and never returned.
func (s *Service) ResolveSession(ctx context.Context, token string) models.Identity {
	if token == "" {
		s.metrics.Resolved(metrics.ResultAnonymous)
		return models.Anonymous
	}

	user, err := s.users.FindByToken(ctx, HashSessionToken(token))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.metrics.Resolved(metrics.ResultError)
			s.logger.WarnContext(ctx, "session resolution failed; continuing as anonymous", logging.ErrorAttrs(err)...)
		} else {
			s.metrics.Resolved(metrics.ResultAnonymous)
		}
		return models.Anonymous
	}

	s.metrics.Resolved(metrics.ResultUser)
	return user.Identity()
}

// startSession issues a fresh token, replacing whatever token the user held.
func (s *Service) startSession(ctx context.Context, user models.User) (models.User, error) {
	token, hash, err := GenerateSessionToken()
	if err != nil {
		return models.User{}, oops.Code("AUTH_SESSION_FAILED").With("operation", "generate session token").Wrap(err)
	}
	if err := s.users.UpdateToken(ctx, user.ID, hash); err != nil {
		return models.User{}, oops.Code("AUTH_SESSION_FAILED").
			With("operation", "persist session token").
			With("user_id", user.ID).
			Wrap(err)
	}
	user.SessionToken = token
	return user, nil
}

func validateInput(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return oops.Code("AUTH_INVALID_INPUT").Wrap(ErrInvalidInput)
	}
	return nil
}

func invalidCredentials() error {
	return oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
}

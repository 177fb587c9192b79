package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/hongminglow/forum-be/internal/models"
	"github.com/hongminglow/forum-be/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.UserStore = (*Store)(nil)
	_ storage.PostStore = (*Store)(nil)
	_ storage.Pinger    = (*Store)(nil)
)

// DefaultQueryTimeout bounds a single statement when no timeout is configured.
const DefaultQueryTimeout = 3 * time.Second

// pool is the subset of *pgxpool.Pool used by Store; pgxmock satisfies it in tests.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Store provides Postgres-backed persistence for users and posts.
type Store struct {
	pool         pool
	queryTimeout time.Duration
}

// Options tunes connection and query behaviour.
type Options struct {
	QueryTimeout   time.Duration
	ConnectRetries uint64
}

// New wraps an existing pool. A non-positive timeout falls back to DefaultQueryTimeout.
func New(p pool, queryTimeout time.Duration) *Store {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &Store{pool: p, queryTimeout: queryTimeout}
}

// Open connects to databaseURL, retrying the initial ping with exponential backoff.
func Open(ctx context.Context, databaseURL string, opts Options) (*Store, *pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, nil, oops.Code("STORE_CONFIG_INVALID").Wrapf(err, "parse database url")
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, nil, oops.Code("STORE_CONNECT_FAILED").Wrapf(err, "connect to database")
	}

	backoff := retry.WithMaxRetries(opts.ConnectRetries, retry.NewExponential(200*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		p.Close()
		return nil, nil, oops.Code("STORE_CONNECT_FAILED").
			With("retries", opts.ConnectRetries).
			Wrapf(err, "ping database")
	}

	return New(p, opts.QueryTimeout), p, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping checks that the database answers within the query timeout.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

const userColumns = `id, username, password_hash, created_at, updated_at`

// FindByUsername fetches a user by exact username.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, classify("find user by username", err)
	}
	return user, nil
}

// FindByToken fetches the user currently holding the given session token digest.
func (s *Store) FindByToken(ctx context.Context, tokenHash string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE session_token_hash = $1`, tokenHash)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, classify("find user by token", err)
	}
	return user, nil
}

// Insert creates a user row. The username UNIQUE constraint decides races between concurrent registrations.
func (s *Store) Insert(ctx context.Context, username, passwordHash string) (models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row := s.pool.QueryRow(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING `+userColumns, username, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		return models.User{}, classify("insert user", err)
	}
	return user, nil
}

// UpdateToken replaces the stored session token digest, invalidating any previous token.
func (s *Store) UpdateToken(ctx context.Context, userID int64, tokenHash string) error {
	return s.setToken(ctx, "update session token",
		`UPDATE users SET session_token_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, tokenHash)
}

// ClearToken removes the stored session token digest.
func (s *Store) ClearToken(ctx context.Context, userID int64) error {
	return s.setToken(ctx, "clear session token",
		`UPDATE users SET session_token_hash = NULL, updated_at = NOW() WHERE id = $1`,
		userID)
}

func (s *Store) setToken(ctx context.Context, op, query string, userID int64, args ...any) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return classify(op, err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("STORE_NOT_FOUND").
			With("operation", op).
			With("user_id", userID).
			Wrap(storage.ErrNotFound)
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	return user, err
}

// classify maps driver errors onto the storage sentinels.
func classify(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return oops.Code("STORE_NOT_FOUND").With("operation", op).Wrap(storage.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("STORE_ALREADY_EXISTS").
			With("operation", op).
			With("constraint", pgErr.ConstraintName).
			Wrap(storage.ErrAlreadyExists)
	}
	return unavailable(op, err)
}

func unavailable(op string, err error) error {
	return oops.Code("STORE_UNAVAILABLE").
		With("operation", op).
		With("timeout", errors.Is(err, context.DeadlineExceeded)).
		Wrap(fmt.Errorf("%w: %w", storage.ErrUnavailable, err))
}

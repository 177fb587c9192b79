package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/forum-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUnavailable indicates the store could not be reached or did not answer in time.
var ErrUnavailable = errors.New("store unavailable")

// UserStore captures persistence operations needed by the auth service.
// Token arguments are digests of session tokens, never the tokens themselves.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByToken(ctx context.Context, tokenHash string) (models.User, error)
	Insert(ctx context.Context, username, passwordHash string) (models.User, error)
	UpdateToken(ctx context.Context, userID int64, tokenHash string) error
	ClearToken(ctx context.Context, userID int64) error
}

// PostStore captures persistence operations for forum posts.
type PostStore interface {
	CreatePost(ctx context.Context, authorID int64, title, body string) (models.Post, error)
	ListPosts(ctx context.Context, limit int) ([]models.Post, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

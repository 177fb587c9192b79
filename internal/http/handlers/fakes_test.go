package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hongminglow/forum-be/internal/models"
	"github.com/hongminglow/forum-be/internal/storage"
)

// memStore is an in-memory UserStore and PostStore.
type memStore struct {
	mu     sync.Mutex
	users  []models.User
	tokens map[int64]string
	posts  []models.Post
	down   bool
}

func newMemStore() *memStore {
	return &memStore{tokens: map[int64]string{}}
}

func (s *memStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return models.User{}, storage.ErrUnavailable
	}
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *memStore) FindByToken(_ context.Context, tokenHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return models.User{}, storage.ErrUnavailable
	}
	for _, u := range s.users {
		if h := s.tokens[u.ID]; h != "" && h == tokenHash {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *memStore) Insert(_ context.Context, username, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	now := time.Now()
	u := models.User{ID: int64(len(s.users) + 1), Username: username, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	s.users = append(s.users, u)
	return u, nil
}

func (s *memStore) UpdateToken(_ context.Context, userID int64, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if userID < 1 || int(userID) > len(s.users) {
		return storage.ErrNotFound
	}
	s.tokens[userID] = tokenHash
	return nil
}

func (s *memStore) ClearToken(ctx context.Context, userID int64) error {
	return s.UpdateToken(ctx, userID, "")
}

func (s *memStore) CreatePost(_ context.Context, authorID int64, title, body string) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return models.Post{}, storage.ErrUnavailable
	}
	p := models.Post{
		ID:        int64(len(s.posts) + 1),
		AuthorID:  authorID,
		Author:    s.users[authorID-1].Username,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now(),
	}
	s.posts = append(s.posts, p)
	return p, nil
}

func (s *memStore) ListPosts(_ context.Context, limit int) ([]models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return nil, storage.ErrUnavailable
	}
	out := append([]models.Post{}, s.posts...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return storage.ErrUnavailable
	}
	return nil
}

func (s *memStore) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

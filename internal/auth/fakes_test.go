package auth

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hongminglow/forum-be/internal/models"
	"github.com/hongminglow/forum-be/internal/storage"
)

// memUserStore is an in-memory storage.UserStore enforcing the same uniqueness rules as Postgres.
type memUserStore struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]*memUser
	tokenLookup int
}

type memUser struct {
	user      models.User
	tokenHash string
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[int64]*memUser{}}
}

func (s *memUserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.user.Username == username {
			return u.user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *memUserStore) FindByToken(_ context.Context, tokenHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenLookup++
	for _, u := range s.users {
		if u.tokenHash != "" && u.tokenHash == tokenHash {
			return u.user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *memUserStore) Insert(_ context.Context, username, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.user.Username == username {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.nextID++
	now := time.Now()
	user := models.User{ID: s.nextID, Username: username, PasswordHash: passwordHash, CreatedAt: now, UpdatedAt: now}
	s.users[user.ID] = &memUser{user: user}
	return user, nil
}

func (s *memUserStore) UpdateToken(_ context.Context, userID int64, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return storage.ErrNotFound
	}
	u.tokenHash = tokenHash
	return nil
}

func (s *memUserStore) ClearToken(ctx context.Context, userID int64) error {
	return s.UpdateToken(ctx, userID, "")
}

func (s *memUserStore) lookups() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokenLookup
}

func (s *memUserStore) storedUser(id int64) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id].user
}

// mockUserStore is a testify mock for injecting store faults.
type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) FindByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserStore) FindByToken(ctx context.Context, tokenHash string) (models.User, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserStore) Insert(ctx context.Context, username, passwordHash string) (models.User, error) {
	args := m.Called(ctx, username, passwordHash)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *mockUserStore) UpdateToken(ctx context.Context, userID int64, tokenHash string) error {
	return m.Called(ctx, userID, tokenHash).Error(0)
}

func (m *mockUserStore) ClearToken(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

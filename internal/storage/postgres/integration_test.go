//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/hongminglow/forum-be/internal/logging"
	"github.com/hongminglow/forum-be/internal/storage"
	"github.com/hongminglow/forum-be/internal/storage/postgres"
)

var testStore *postgres.Store

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("forum_test"),
		tcpostgres.WithUsername("forum"),
		tcpostgres.WithPassword("forum"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		panic("failed to start postgres container: " + err.Error())
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to get connection string: " + err.Error())
	}

	store, pool, err := postgres.Open(ctx, connStr, postgres.Options{QueryTimeout: 5 * time.Second, ConnectRetries: 5})
	if err != nil {
		_ = container.Terminate(ctx)
		panic("failed to open store: " + err.Error())
	}
	if err := postgres.Migrate(ctx, pool, logging.Discard()); err != nil {
		store.Close()
		_ = container.Terminate(ctx)
		panic("failed to run migrations: " + err.Error())
	}
	testStore = store

	code := m.Run()
	store.Close()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestStore_ConcurrentInsertSameUsername(t *testing.T) {
	ctx := context.Background()
	username := fmt.Sprintf("racer_%d", time.Now().UnixNano())

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = testStore.Insert(ctx, username, "hash")
		}()
	}
	wg.Wait()

	var created, duplicates int
	for _, err := range errs {
		switch {
		case err == nil:
			created++
		case assert.ErrorIs(t, err, storage.ErrAlreadyExists):
			duplicates++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, duplicates)
}

func TestStore_TokenLifecycle(t *testing.T) {
	ctx := context.Background()
	user, err := testStore.Insert(ctx, fmt.Sprintf("token_%d", time.Now().UnixNano()), "hash")
	require.NoError(t, err)

	require.NoError(t, testStore.UpdateToken(ctx, user.ID, "digest-1"))
	found, err := testStore.FindByToken(ctx, "digest-1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	require.NoError(t, testStore.UpdateToken(ctx, user.ID, "digest-2"))
	_, err = testStore.FindByToken(ctx, "digest-1")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, testStore.ClearToken(ctx, user.ID))
	_, err = testStore.FindByToken(ctx, "digest-2")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, testStore.UpdateToken(ctx, 1<<40, "digest-3"), storage.ErrNotFound)
}

func TestStore_Posts(t *testing.T) {
	ctx := context.Background()
	user, err := testStore.Insert(ctx, fmt.Sprintf("author_%d", time.Now().UnixNano()), "hash")
	require.NoError(t, err)

	post, err := testStore.CreatePost(ctx, user.ID, "hello", "world")
	require.NoError(t, err)
	assert.Equal(t, user.Username, post.Author)

	posts, err := testStore.ListPosts(ctx, 50)
	require.NoError(t, err)
	require.NotEmpty(t, posts)
	assert.Equal(t, post.ID, posts[0].ID)
}

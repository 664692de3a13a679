//go:build integration
// +build integration

package pgstore

import (
	"context"
	"testing"
	"time"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) *Postgres {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pg, err := Connect(ctx, connStr, 10*time.Second)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })
	return pg
}

func TestPostgresRepositories(t *testing.T) {
	ctx := context.Background()
	pg := setupTestDB(t)
	posts := pg.Posts()
	users := pg.Users()

	author := models.NewIdentity("u1")
	post := &models.Post{Title: "A", Content: "B", Category: "tech", Status: models.StatusDraft, Author: author}
	require.NoError(t, posts.Create(ctx, post))
	require.NoError(t, posts.Create(ctx, &models.Post{Title: "P", Content: "C", Status: models.StatusPublished, Author: models.NewIdentity("u2")}))

	t.Run("find", func(t *testing.T) {
		mine, err := posts.Find(ctx, models.PostFilter{Author: author})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, post.ID, mine[0].ID)

		published, err := posts.Find(ctx, models.PostFilter{Status: models.StatusPublished})
		require.NoError(t, err)
		require.Len(t, published, 1)
	})

	t.Run("update clears omitted fields", func(t *testing.T) {
		post.Apply(models.PostFields{Title: "A2", Content: "B2", Status: models.StatusPublished})
		require.NoError(t, posts.Update(ctx, post))

		got, err := posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "A2", got.Title)
		assert.Empty(t, got.Category)
		assert.Equal(t, models.StatusPublished, got.Status)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, posts.Delete(ctx, post.ID))
		_, err := posts.GetByID(ctx, post.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		assert.ErrorIs(t, posts.Delete(ctx, post.ID), repositories.ErrNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := posts.GetByID(ctx, "nope")
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("users upsert", func(t *testing.T) {
		require.NoError(t, users.Upsert(ctx, &models.User{ID: author, Name: "Ada", Email: "ada@example.com"}))
		require.NoError(t, users.Upsert(ctx, &models.User{ID: author, Name: "Ada L", Email: "ada@example.com"}))

		got, err := users.GetByIDs(ctx, []models.Identity{author})
		require.NoError(t, err)
		assert.Equal(t, "Ada L", got[author].Name)
	})
}

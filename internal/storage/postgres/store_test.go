package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/UkralStul/wikikisan-service/internal/domain"
	"github.com/UkralStul/wikikisan-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

// newTestStore поднимает хранилище на in-memory SQLite, схема та же, что и в PostgreSQL.
func newTestStore(t *testing.T) *Store {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	store, err := NewWithDialector(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := store.db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { _ = store.Close() })
	return store
}

var base = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newPost(id, category string, offset time.Duration) *domain.Post {
	return &domain.Post{
		ID:        id,
		Title:     "Post " + id,
		Content:   "Some content for " + id,
		Type:      domain.PostTypeTip,
		Category:  category,
		Language:  "te",
		Tags:      []string{"paddy", "kharif"},
		Author:    domain.Author{Name: "Tester", Role: "farmer"},
		Comments:  []*domain.Comment{},
		CreatedAt: base.Add(offset),
	}
}

func TestStore_InsertAndGetPost(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertFront(ctx, newPost("p1", "crops", 0)))

	got, err := store.GetPostByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Post p1", got.Title)
	assert.Equal(t, []string{"paddy", "kharif"}, got.Tags)
	assert.Equal(t, "Tester", got.Author.Name)
	assert.Nil(t, got.Author.ProfilePicture)
	assert.Equal(t, 0, got.ReactionCount)
	assert.Empty(t, got.Comments)

	_, err = store.GetPostByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = store.InsertFront(ctx, newPost("p1", "market", time.Second))
	assert.ErrorIs(t, err, storage.ErrDuplicateID)
}

func TestStore_ListPosts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertFront(ctx, newPost("a", "crops", 0)))
	require.NoError(t, store.InsertFront(ctx, newPost("b", "market", time.Second)))
	require.NoError(t, store.InsertFront(ctx, newPost("c", "crops", 2*time.Second)))

	all, err := store.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID)
	assert.Equal(t, "a", all[2].ID)

	crops, err := store.ListPosts(ctx, "crops")
	require.NoError(t, err)
	require.Len(t, crops, 2)
	assert.Equal(t, "c", crops[0].ID)
	assert.Equal(t, "a", crops[1].ID)
}

func TestStore_IncrementReaction(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertFront(ctx, newPost("p1", "crops", 0)))

	n, err := store.IncrementReaction(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.IncrementReaction(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.IncrementReaction(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_Comments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.InsertFront(ctx, newPost("p1", "crops", 0)))
	require.NoError(t, store.InsertFront(ctx, newPost("p2", "crops", time.Second)))

	for i := 0; i < 2; i++ {
		_, err := store.AddComment(ctx, "p1", &domain.Comment{
			ID:        fmt.Sprintf("c%d", i),
			Author:    "Lakshmi",
			Content:   "Try neem oil spray",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	_, err := store.AddComment(ctx, "p1", &domain.Comment{ID: "c0", Author: "x", Content: "dup", CreatedAt: base})
	assert.ErrorIs(t, err, storage.ErrDuplicateID)

	_, err = store.AddComment(ctx, "missing", &domain.Comment{ID: "c9", Author: "x", Content: "orphan", CreatedAt: base})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := store.GetPostByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CommentCount)
	require.Len(t, got.Comments, 2)
	assert.Equal(t, "c0", got.Comments[0].ID)

	byPost, err := store.GetCommentsByPostIDs(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	assert.Len(t, byPost["p1"], 2)
	assert.Empty(t, byPost["p2"])
}

package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/UkralStul/wikikisan-service/internal/domain"
	"github.com/UkralStul/wikikisan-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPost(id, category string) *domain.Post {
	return &domain.Post{
		ID:        id,
		Title:     "Post " + id,
		Content:   "Some content for " + id,
		Type:      domain.PostTypeQuestion,
		Category:  category,
		Language:  "en",
		Tags:      []string{},
		Author:    domain.Author{Name: "Tester", Role: "farmer"},
		Comments:  []*domain.Comment{},
		CreatedAt: time.Now().UTC(),
	}
}

// newTestStore создает хранилище и один пост для тестов
func newTestStore(t *testing.T) (storage.Storage, *domain.Post) {
	store := New()
	post := newPost("post-1", "crops")
	require.NoError(t, store.InsertFront(context.Background(), post))
	return store, post
}

func TestStore_InsertAndGetPost(t *testing.T) {
	store, post := newTestStore(t)
	ctx := context.Background()

	retrieved, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, retrieved.Title)
	assert.Equal(t, 0, retrieved.ReactionCount)
	assert.Empty(t, retrieved.Comments)

	_, err = store.GetPostByID(ctx, "non-existent-id")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_InsertFront_DuplicateID(t *testing.T) {
	store, post := newTestStore(t)

	err := store.InsertFront(context.Background(), newPost(post.ID, "market"))
	assert.ErrorIs(t, err, storage.ErrDuplicateID)

	all, err := store.ListPosts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestStore_ListPosts_NewestFirstAndFilter(t *testing.T) {
	store := New()
	ctx := context.Background()

	require.NoError(t, store.InsertFront(ctx, newPost("a", "crops")))
	require.NoError(t, store.InsertFront(ctx, newPost("b", "market")))
	require.NoError(t, store.InsertFront(ctx, newPost("c", "crops")))

	all, err := store.ListPosts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{all[0].ID, all[1].ID, all[2].ID})

	crops, err := store.ListPosts(ctx, "crops")
	require.NoError(t, err)
	require.Len(t, crops, 2)
	assert.Equal(t, "c", crops[0].ID)
	assert.Equal(t, "a", crops[1].ID)
}

func TestStore_ReturnsSnapshots(t *testing.T) {
	store, post := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	got.ReactionCount = 100
	got.Tags = append(got.Tags, "mutated")

	again, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.ReactionCount)
	assert.Empty(t, again.Tags)
}

func TestStore_IncrementReaction(t *testing.T) {
	store, post := newTestStore(t)
	ctx := context.Background()

	n, err := store.IncrementReaction(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = store.IncrementReaction(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = store.IncrementReaction(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_IncrementReaction_Concurrent(t *testing.T) {
	store, post := newTestStore(t)
	ctx := context.Background()

	const callers = 64
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			_, err := store.IncrementReaction(ctx, post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, callers, got.ReactionCount)
}

func TestStore_AddComment(t *testing.T) {
	store, post := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.AddComment(ctx, post.ID, &domain.Comment{
			ID:      fmt.Sprintf("c-%d", i),
			Author:  "Ravi",
			Content: "some comment",
		})
		require.NoError(t, err)
	}

	_, err := store.AddComment(ctx, post.ID, &domain.Comment{ID: "c-0", Author: "Ravi", Content: "dup"})
	assert.ErrorIs(t, err, storage.ErrDuplicateID)

	_, err = store.AddComment(ctx, "missing", &domain.Comment{ID: "x", Author: "Ravi", Content: "orphan"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := store.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.CommentCount)

	byPost, err := store.GetCommentsByPostIDs(ctx, []string{post.ID, "missing"})
	require.NoError(t, err)
	require.Len(t, byPost[post.ID], 3)
	assert.Equal(t, "c-0", byPost[post.ID][0].ID)
	assert.Equal(t, "c-2", byPost[post.ID][2].ID)
	assert.Empty(t, byPost["missing"])
}

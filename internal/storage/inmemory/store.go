package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/UkralStul/wikikisan-service/internal/domain"
	"github.com/UkralStul/wikikisan-service/internal/storage"
)

// Store реализует интерфейс Storage в памяти.
// Все изменения идут под одной блокировкой на запись; чтения возвращают копии.
type Store struct {
	mu    sync.RWMutex
	posts []*domain.Post          // от новых к старым
	byID  map[string]*domain.Post // индекс по id
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		byID: make(map[string]*domain.Post),
	}
}

// === Post Methods ===

func (s *Store) InsertFront(ctx context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[post.ID]; ok {
		return fmt.Errorf("post %s: %w", post.ID, storage.ErrDuplicateID)
	}

	stored := post.Clone()
	s.posts = append([]*domain.Post{stored}, s.posts...)
	s.byID[stored.ID] = stored
	return nil
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	return post.Clone(), nil
}

func (s *Store) ListPosts(ctx context.Context, category string) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if category != "" && p.Category != category {
			continue
		}
		result = append(result, p.Clone())
	}
	return result, nil
}

func (s *Store) IncrementReaction(ctx context.Context, id string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.byID[id]
	if !ok {
		return 0, fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	post.ReactionCount++
	return post.ReactionCount, nil
}

// === Comment Methods ===

func (s *Store) AddComment(ctx context.Context, postID string, comment *domain.Comment) (*domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.byID[postID]
	if !ok {
		return nil, fmt.Errorf("post with id %s: %w", postID, storage.ErrNotFound)
	}
	for _, c := range post.Comments {
		if c.ID == comment.ID {
			return nil, fmt.Errorf("comment %s: %w", comment.ID, storage.ErrDuplicateID)
		}
	}

	stored := *comment
	stored.PostID = postID
	post.Comments = append(post.Comments, &stored)
	post.CommentCount = len(post.Comments)

	out := stored
	return &out, nil
}

// === Dataloader Methods ===

func (s *Store) GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make(map[string][]*domain.Comment, len(postIDs))
	for _, id := range postIDs {
		post, ok := s.byID[id]
		if !ok {
			results[id] = []*domain.Comment{}
			continue
		}
		comments := make([]*domain.Comment, len(post.Comments))
		for i, c := range post.Comments {
			cc := *c
			comments[i] = &cc
		}
		results[id] = comments
	}
	return results, nil
}

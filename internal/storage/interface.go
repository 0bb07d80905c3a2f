package storage

import (
	"context"
	"errors"

	"github.com/UkralStul/wikikisan-service/internal/domain"
)

var (
	// ErrNotFound возвращается, когда пост с указанным id отсутствует.
	ErrNotFound = errors.New("post not found")
	// ErrDuplicateID возвращается при попытке вставить пост или комментарий с уже занятым id.
	ErrDuplicateID = errors.New("duplicate id")
)

// Storage определяет контракт для хранилищ ленты.
type Storage interface {
	// InsertFront добавляет полностью собранный пост в начало ленты.
	InsertFront(ctx context.Context, post *domain.Post) error
	GetPostByID(ctx context.Context, id string) (*domain.Post, error)
	// ListPosts возвращает посты от новых к старым; пустая категория - все посты.
	ListPosts(ctx context.Context, category string) ([]*domain.Post, error)
	IncrementReaction(ctx context.Context, id string) (int, error)

	AddComment(ctx context.Context, postID string, comment *domain.Comment) (*domain.Comment, error)

	// Метод для Dataloader'а: комментарии от старых к новым.
	GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error)
}

package dataloader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/UkralStul/wikikisan-service/internal/domain"
	"github.com/UkralStul/wikikisan-service/internal/storage"
	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("dataloaders")

// Loaders содержит все дата-лоадеры приложения.
type Loaders struct {
	CommentsByPostID *dataloader.Loader
}

// NewLoaders создает лоадеры поверх хранилища.
func NewLoaders(store storage.Storage) *Loaders {
	// Батч-функция: один вызов хранилища на все ключи
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		postIDs := make([]string, len(keys))
		for i, key := range keys {
			postIDs[i] = key.String()
		}

		commentsMap, err := store.GetCommentsByPostIDs(ctx, postIDs)
		if err != nil {
			// В случае ошибки, возвращаем ее для всех ключей
			results := make([]*dataloader.Result, len(keys))
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Формируем результат в том же порядке, что и ключи
		results := make([]*dataloader.Result, len(keys))
		for i, postID := range postIDs {
			comments := commentsMap[postID]
			if comments == nil {
				comments = []*domain.Comment{}
			}
			results[i] = &dataloader.Result{Data: comments}
		}
		return results
	}

	return &Loaders{
		CommentsByPostID: dataloader.NewBatchedLoader(batchFn,
			dataloader.WithWait(time.Millisecond),
			dataloader.WithCache(&dataloader.NoCache{}),
		),
	}
}

// Middleware для внедрения лоадеров в контекст запроса.
func Middleware(store storage.Storage, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithLoaders(r.Context(), NewLoaders(store))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithLoaders кладет лоадеры в контекст.
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, key, l)
}

// For извлекает лоадеры из контекста; nil, если их там нет.
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(key).(*Loaders)
	return l
}

// LoadComments загружает комментарии для набора постов одним батчем.
func (l *Loaders) LoadComments(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	keys := dataloader.NewKeysFromStrings(postIDs)
	values, errs := l.CommentsByPostID.LoadMany(ctx, keys)()

	result := make(map[string][]*domain.Comment, len(postIDs))
	for i, id := range postIDs {
		if len(errs) > i && errs[i] != nil {
			return nil, fmt.Errorf("load comments for post %s: %w", id, errs[i])
		}
		comments, ok := values[i].([]*domain.Comment)
		if !ok {
			return nil, fmt.Errorf("load comments for post %s: unexpected type %T", id, values[i])
		}
		result[id] = comments
	}
	return result, nil
}

package community

import (
	"context"
	"fmt"
	"time"

	"github.com/UkralStul/wikikisan-service/internal/dataloader"
	"github.com/UkralStul/wikikisan-service/internal/domain"
	"github.com/UkralStul/wikikisan-service/internal/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeedWindow определяет, какой срез отфильтрованной ленты отдается при limit.
type FeedWindow string

const (
	// FeedWindowLegacyTail берет последние limit элементов списка "от новых к старым",
	// то есть самые старые limit постов. Совместимо с исходным API.
	FeedWindowLegacyTail FeedWindow = "legacy_tail"
	// FeedWindowNewest берет первые limit элементов, то есть самые новые посты.
	FeedWindowNewest FeedWindow = "newest"
)

// Valid сообщает, известен ли режим.
func (w FeedWindow) Valid() bool {
	return w == FeedWindowLegacyTail || w == FeedWindowNewest
}

// DefaultTrendingTags - заглушка блока популярных тегов.
func DefaultTrendingTags() []domain.TrendingTag {
	return []domain.TrendingTag{
		{Tag: "chilli", Count: 42},
		{Tag: "gadwal", Count: 28},
		{Tag: "organic", Count: 15},
	}
}

// Options - зависимости и настройки сервиса ленты.
type Options struct {
	DefaultAuthor    domain.Author
	StrictCategories bool
	FeedWindow       FeedWindow
	TrendingTags     []domain.TrendingTag

	Now    func() time.Time
	NewID  func() string
	Logger *zap.Logger
}

// Service реализует операции ленты сообщества поверх Storage.
type Service struct {
	store     storage.Storage
	hub       *Hub
	validator Validator
	author    domain.Author
	window    FeedWindow
	trending  []domain.TrendingTag
	now       func() time.Time
	newID     func() string
	log       *zap.Logger
}

// NewService собирает сервис; незаданные опции получают значения по умолчанию.
func NewService(store storage.Storage, hub *Hub, opts Options) *Service {
	if hub == nil {
		hub = NewHub(16)
	}
	if opts.DefaultAuthor.Name == "" {
		opts.DefaultAuthor = domain.Author{Name: "Medhansh Reddy", Role: "farmer"}
	}
	if opts.DefaultAuthor.Role == "" {
		opts.DefaultAuthor.Role = "farmer"
	}
	if !opts.FeedWindow.Valid() {
		opts.FeedWindow = FeedWindowLegacyTail
	}
	if opts.TrendingTags == nil {
		opts.TrendingTags = DefaultTrendingTags()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Service{
		store:     store,
		hub:       hub,
		validator: Validator{StrictCategories: opts.StrictCategories},
		author:    opts.DefaultAuthor,
		window:    opts.FeedWindow,
		trending:  opts.TrendingTags,
		now:       opts.Now,
		newID:     opts.NewID,
		log:       opts.Logger,
	}
}

// Hub возвращает хаб событий сервиса.
func (s *Service) Hub() *Hub { return s.hub }

// CreatePost валидирует ввод, собирает пост и кладет его в начало ленты.
func (s *Service) CreatePost(ctx context.Context, in PostInput) (*domain.Post, error) {
	in, err := s.validator.ValidatePost(in)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		ID:        s.newID(),
		Title:     in.Title,
		Content:   in.Content,
		Type:      in.Type,
		Category:  in.Category,
		Language:  in.Language,
		Tags:      append([]string{}, in.Tags...),
		Author:    s.author,
		Comments:  []*domain.Comment{},
		CreatedAt: s.now(),
	}
	if err := s.store.InsertFront(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.log.Info("post created",
		zap.String("id", post.ID),
		zap.String("type", string(post.Type)),
		zap.String("category", post.Category))
	s.hub.Publish(Event{Type: EventPostCreated, PostID: post.ID, Post: post.Clone()})
	return post, nil
}

// FindPost возвращает пост вместе с комментариями.
func (s *Service) FindPost(ctx context.Context, id string) (*domain.Post, error) {
	return s.store.GetPostByID(ctx, id)
}

// GetFeed отдает ленту с фильтром по категории ("" или "all" - без фильтра).
func (s *Service) GetFeed(ctx context.Context, category string, limit int) ([]*domain.Post, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}
	if category == domain.AllCategories {
		category = ""
	}

	posts, err := s.store.ListPosts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	if posts == nil {
		posts = []*domain.Post{}
	}

	if len(posts) > limit {
		switch s.window {
		case FeedWindowNewest:
			posts = posts[:limit]
		default:
			posts = posts[len(posts)-limit:]
		}
	}

	if err := s.attachComments(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// React увеличивает счетчик реакций; тип реакции не сохраняется.
func (s *Service) React(ctx context.Context, postID, reactionType string) (int, error) {
	if reactionType == "" {
		reactionType = "like"
	}
	count, err := s.store.IncrementReaction(ctx, postID)
	if err != nil {
		return 0, err
	}

	s.log.Debug("reaction added",
		zap.String("post_id", postID),
		zap.String("reaction", reactionType),
		zap.Int("count", count))
	s.hub.Publish(Event{Type: EventReaction, PostID: postID, Count: count})
	return count, nil
}

// AddComment добавляет комментарий в конец обсуждения поста.
func (s *Service) AddComment(ctx context.Context, postID string, in CommentInput) (*domain.Comment, error) {
	in, err := s.validator.ValidateComment(in)
	if err != nil {
		return nil, err
	}

	comment, err := s.store.AddComment(ctx, postID, &domain.Comment{
		ID:        s.newID(),
		Author:    in.Author,
		Content:   in.Content,
		CreatedAt: s.now(),
		IsAnswer:  in.IsAnswer,
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(Event{Type: EventCommentAdded, PostID: postID, Comment: comment})
	return comment, nil
}

// TrendingTags возвращает фиксированный набор тегов, состояние ленты не учитывается.
func (s *Service) TrendingTags() []domain.TrendingTag {
	return append([]domain.TrendingTag(nil), s.trending...)
}

// attachComments подгружает комментарии через Dataloader запроса (или разовый, если его нет).
func (s *Service) attachComments(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}
	loaders := dataloader.For(ctx)
	if loaders == nil {
		loaders = dataloader.NewLoaders(s.store)
	}

	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	comments, err := loaders.LoadComments(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}
	for _, p := range posts {
		p.Comments = comments[p.ID]
	}
	return nil
}

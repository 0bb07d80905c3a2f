package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/UkralStul/wikikisan-service/internal/domain"
	"github.com/UkralStul/wikikisan-service/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage поверх gorm (PostgreSQL в проде).
type Store struct {
	db *gorm.DB
}

// New создает новый экземпляр хранилища PostgreSQL.
func New(dsn string, logLevel logger.LogLevel) (*Store, error) {
	return NewWithDialector(postgres.Open(dsn), logLevel)
}

// NewWithDialector открывает хранилище поверх любого диалекта gorm и выполняет миграцию.
func NewWithDialector(dialector gorm.Dialector, logLevel logger.LogLevel) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Post{}, &domain.Comment{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close закрывает пул соединений.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// === Post Methods ===

func (s *Store) InsertFront(ctx context.Context, post *domain.Post) error {
	// "Начало ленты" задается сортировкой по created_at, поэтому здесь обычная вставка.
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Post{}).Where("id = ?", post.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("post %s: %w", post.ID, storage.ErrDuplicateID)
		}

		row := post.Clone()
		row.Comments = nil
		return tx.Omit("Comments").Create(row).Error
	})
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	err := s.db.WithContext(ctx).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, mapNotFound(id, err)
	}
	normalize(&post)
	return &post, nil
}

// ListPosts не подгружает комментарии: лента получает их через Dataloader.
func (s *Store) ListPosts(ctx context.Context, category string) ([]*domain.Post, error) {
	var posts []*domain.Post
	query := s.db.WithContext(ctx).Order("created_at DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&posts).Error; err != nil {
		return nil, err
	}
	for _, p := range posts {
		normalize(p)
	}
	return posts, nil
}

func (s *Store) IncrementReaction(ctx context.Context, id string) (int, error) {
	var post domain.Post
	// Используем транзакцию, чтобы прочитать именно наше новое значение
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Post{}).
			Where("id = ?", id).
			UpdateColumn("reaction_count", gorm.Expr("reaction_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
		}
		return tx.Select("reaction_count").First(&post, "id = ?", id).Error
	})
	if err != nil {
		return 0, err
	}
	return post.ReactionCount, nil
}

// === Comment Methods ===

func (s *Store) AddComment(ctx context.Context, postID string, comment *domain.Comment) (*domain.Comment, error) {
	row := *comment
	row.PostID = postID

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Select("id").First(&post, "id = ?", postID).Error; err != nil {
			return mapNotFound(postID, err)
		}

		var count int64
		if err := tx.Model(&domain.Comment{}).Where("id = ?", row.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("comment %s: %w", row.ID, storage.ErrDuplicateID)
		}

		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Post{}).
			Where("id = ?", postID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// === Dataloader Method ===

func (s *Store) GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	var comments []*domain.Comment
	// Загружаем комментарии для всех постов одним запросом
	err := s.db.WithContext(ctx).
		Where("post_id IN ?", postIDs).
		Order("post_id, created_at ASC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string][]*domain.Comment, len(postIDs))
	for _, id := range postIDs {
		result[id] = []*domain.Comment{}
	}
	for _, c := range comments {
		result[c.PostID] = append(result[c.PostID], c)
	}
	return result, nil
}

func mapNotFound(id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	return err
}

// normalize заменяет nil-срезы пустыми, чтобы JSON был [] вместо null.
func normalize(p *domain.Post) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Comments == nil {
		p.Comments = []*domain.Comment{}
	}
}

package mongo

import (
	"context"
	"errors"
	"fmt"

	"github.com/UkralStul/wikikisan-service/internal/domain"
	"github.com/UkralStul/wikikisan-service/internal/storage"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const postsCollection = "posts"

// Store реализует интерфейс Storage поверх MongoDB: комментарии хранятся внутри документа поста.
type Store struct {
	client *mongo.Client
	posts  *mongo.Collection
}

// New подключается к MongoDB, проверяет соединение и создает уникальный индекс по id.
func New(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(1))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	posts := client.Database(database).Collection(postsCollection)
	_, err = posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &Store{client: client, posts: posts}, nil
}

// Close закрывает соединение с MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// === Post Methods ===

func (s *Store) InsertFront(ctx context.Context, post *domain.Post) error {
	doc := post.Clone()
	_, err := s.posts.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("post %s: %w", post.ID, storage.ErrDuplicateID)
	}
	return err
}

func (s *Store) GetPostByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	if err := s.posts.FindOne(ctx, bson.M{"id": id}).Decode(&post); err != nil {
		return nil, mapNotFound(id, err)
	}
	normalize(&post)
	return &post, nil
}

func (s *Store) ListPosts(ctx context.Context, category string) ([]*domain.Post, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	cur, err := s.posts.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}

	posts := []*domain.Post{}
	if err := cur.All(ctx, &posts); err != nil {
		return nil, err
	}
	for _, p := range posts {
		normalize(p)
	}
	return posts, nil
}

func (s *Store) IncrementReaction(ctx context.Context, id string) (int, error) {
	var post domain.Post
	err := s.posts.FindOneAndUpdate(ctx,
		bson.M{"id": id},
		bson.M{"$inc": bson.M{"reactionCount": 1}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetProjection(bson.M{"reactionCount": 1}),
	).Decode(&post)
	if err != nil {
		return 0, mapNotFound(id, err)
	}
	return post.ReactionCount, nil
}

// === Comment Methods ===

func (s *Store) AddComment(ctx context.Context, postID string, comment *domain.Comment) (*domain.Comment, error) {
	row := *comment
	row.PostID = postID

	// $ne по comments.id не дает добавить комментарий с уже занятым id
	res, err := s.posts.UpdateOne(ctx,
		bson.M{"id": postID, "comments.id": bson.M{"$ne": row.ID}},
		bson.M{
			"$push": bson.M{"comments": row},
			"$inc":  bson.M{"commentCount": 1},
		},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		n, err := s.posts.CountDocuments(ctx, bson.M{"id": postID})
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, fmt.Errorf("post with id %s: %w", postID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("comment %s: %w", row.ID, storage.ErrDuplicateID)
	}
	return &row, nil
}

// === Dataloader Method ===

func (s *Store) GetCommentsByPostIDs(ctx context.Context, postIDs []string) (map[string][]*domain.Comment, error) {
	cur, err := s.posts.Find(ctx,
		bson.M{"id": bson.M{"$in": postIDs}},
		options.Find().SetProjection(bson.M{"id": 1, "comments": 1}),
	)
	if err != nil {
		return nil, err
	}

	var docs []domain.Post
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make(map[string][]*domain.Comment, len(postIDs))
	for _, id := range postIDs {
		result[id] = []*domain.Comment{}
	}
	for _, d := range docs {
		for _, c := range d.Comments {
			c.PostID = d.ID
			result[d.ID] = append(result[d.ID], c)
		}
	}
	return result, nil
}

func mapNotFound(id string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("post with id %s: %w", id, storage.ErrNotFound)
	}
	return err
}

func normalize(p *domain.Post) {
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Comments == nil {
		p.Comments = []*domain.Comment{}
	}
}

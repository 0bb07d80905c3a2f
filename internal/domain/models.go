package domain

import "time"

// PostType перечисляет допустимые типы постов сообщества.
type PostType string

const (
	PostTypeQuestion     PostType = "question"
	PostTypeDiscussion   PostType = "discussion"
	PostTypeTip          PostType = "tip"
	PostTypeProblem      PostType = "problem"
	PostTypeSuccessStory PostType = "success_story"
)

// PostTypes возвращает все известные типы постов в порядке отображения.
func PostTypes() []PostType {
	return []PostType{PostTypeQuestion, PostTypeDiscussion, PostTypeTip, PostTypeProblem, PostTypeSuccessStory}
}

// Valid сообщает, является ли t одним из известных типов.
func (t PostType) Valid() bool {
	for _, known := range PostTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Categories - строгий набор категорий (используется при strict_categories).
var Categories = []string{"crops", "livestock", "market", "weather", "general"}

// AllCategories - значение фильтра ленты, означающее "без фильтра".
const AllCategories = "all"

// Author описывает автора поста.
type Author struct {
	Name           string  `json:"name" bson:"name" yaml:"name" gorm:"type:varchar(255);not null"`
	Role           string  `json:"role" bson:"role" yaml:"role" gorm:"type:varchar(64);not null;default:farmer"`
	ProfilePicture *string `json:"profilePicture" bson:"profilePicture,omitempty" yaml:"profile_picture" gorm:"type:text"`
}

// Post представляет пост в ленте сообщества.
type Post struct {
	ID            string     `json:"id" bson:"id" gorm:"type:varchar(36);primaryKey"`
	Title         string     `json:"title" bson:"title" gorm:"type:varchar(100);not null"`
	Content       string     `json:"content" bson:"content" gorm:"type:text;not null"`
	Type          PostType   `json:"type" bson:"type" gorm:"type:varchar(32);not null"`
	Category      string     `json:"category" bson:"category" gorm:"type:varchar(64);not null;index"`
	Language      string     `json:"language" bson:"language" gorm:"type:varchar(16);not null"`
	Tags          []string   `json:"tags" bson:"tags" gorm:"type:text;serializer:json"`
	Author        Author     `json:"author" bson:"author" gorm:"embedded;embeddedPrefix:author_"`
	Views         int        `json:"views" bson:"views" gorm:"not null;default:0"`
	ReactionCount int        `json:"reactionCount" bson:"reactionCount" gorm:"not null;default:0"`
	CommentCount  int        `json:"commentCount" bson:"commentCount" gorm:"not null;default:0"`
	Comments      []*Comment `json:"comments" bson:"comments" gorm:"foreignKey:PostID"`
	CreatedAt     time.Time  `json:"createdAt" bson:"createdAt" gorm:"not null;index"`
	IsResolved    bool       `json:"isResolved" bson:"isResolved" gorm:"not null;default:false"`
}

// Comment представляет комментарий к посту.
type Comment struct {
	ID        string    `json:"id" bson:"id" gorm:"type:varchar(36);primaryKey"`
	PostID    string    `json:"-" bson:"-" gorm:"type:varchar(36);not null;index"`
	Author    string    `json:"author" bson:"author" gorm:"type:varchar(255);not null"`
	Content   string    `json:"content" bson:"content" gorm:"type:varchar(2000);not null"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt" gorm:"not null"`
	IsAnswer  bool      `json:"isAnswer" bson:"isAnswer" gorm:"not null;default:false"`
}

// TrendingTag - одна запись блока популярных тегов.
type TrendingTag struct {
	Tag   string `json:"_id" yaml:"tag"`
	Count int    `json:"count" yaml:"count"`
}

// Clone возвращает глубокую копию поста, чтобы вызывающий код не менял состояние хранилища.
func (p *Post) Clone() *Post {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	if cp.Tags == nil {
		cp.Tags = []string{}
	}
	if p.Author.ProfilePicture != nil {
		pic := *p.Author.ProfilePicture
		cp.Author.ProfilePicture = &pic
	}
	cp.Comments = make([]*Comment, len(p.Comments))
	for i, c := range p.Comments {
		cc := *c
		cp.Comments[i] = &cc
	}
	return &cp
}

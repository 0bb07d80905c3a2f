package community

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/UkralStul/wikikisan-service/internal/domain"
)

const (
	minTitleLen      = 5
	maxTitleLen      = 100
	minContentLen    = 10
	maxCommentLen    = 2000
	defaultLanguage  = "en"
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// PostInput - сырые поля запроса на создание поста.
type PostInput struct {
	Title    string          `json:"title"`
	Content  string          `json:"content"`
	Type     domain.PostType `json:"type"`
	Category string          `json:"category"`
	Language string          `json:"language"`
	Tags     []string        `json:"tags"`
}

// CommentInput - сырые поля запроса на добавление комментария.
type CommentInput struct {
	Author   string `json:"author"`
	Content  string `json:"content"`
	IsAnswer bool   `json:"isAnswer"`
}

// ValidationError описывает невалидные поля: имя поля -> сообщение.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator проверяет входные данные ленты.
type Validator struct {
	// StrictCategories включает строгий набор категорий domain.Categories.
	StrictCategories bool
}

// ValidatePost проверяет поля поста и подставляет значения по умолчанию.
func (v Validator) ValidatePost(in PostInput) (PostInput, error) {
	fields := make(map[string]string)

	if n := utf8.RuneCountInString(in.Title); n < minTitleLen || n > maxTitleLen {
		fields["title"] = fmt.Sprintf("title must be between %d and %d characters", minTitleLen, maxTitleLen)
	}
	if utf8.RuneCountInString(in.Content) < minContentLen {
		fields["content"] = fmt.Sprintf("content must be at least %d characters", minContentLen)
	}
	if !in.Type.Valid() {
		fields["type"] = fmt.Sprintf("type must be one of %v", domain.PostTypes())
	}
	switch {
	case strings.TrimSpace(in.Category) == "":
		fields["category"] = "category is required"
	case v.StrictCategories && !isKnownCategory(in.Category):
		fields["category"] = fmt.Sprintf("category must be one of %v", domain.Categories)
	}

	if len(fields) > 0 {
		return PostInput{}, &ValidationError{Fields: fields}
	}

	if in.Language == "" {
		in.Language = defaultLanguage
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}
	return in, nil
}

// ValidateComment проверяет поля комментария.
func (v Validator) ValidateComment(in CommentInput) (CommentInput, error) {
	fields := make(map[string]string)

	if strings.TrimSpace(in.Author) == "" {
		fields["author"] = "author is required"
	}
	switch {
	case strings.TrimSpace(in.Content) == "":
		fields["content"] = "comment content cannot be empty"
	case utf8.RuneCountInString(in.Content) > maxCommentLen:
		fields["content"] = "comment content is too long"
	}

	if len(fields) > 0 {
		return CommentInput{}, &ValidationError{Fields: fields}
	}
	return in, nil
}

// ValidateLimit проверяет размер страницы ленты.
func ValidateLimit(limit int) error {
	if limit <= 0 || limit > MaxFeedLimit {
		return &ValidationError{Fields: map[string]string{
			"limit": fmt.Sprintf("limit must be greater than 0 and at most %d", MaxFeedLimit),
		}}
	}
	return nil
}

func isKnownCategory(c string) bool {
	for _, known := range domain.Categories {
		if c == known {
			return true
		}
	}
	return false
}

package community

import (
	"errors"
	"strings"
	"testing"

	"github.com/UkralStul/wikikisan-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() PostInput {
	return PostInput{
		Title:    "Best organic pesticide?",
		Content:  "I am seeing white spots on my chilli leaves.",
		Type:     domain.PostTypeQuestion,
		Category: "crops",
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Fields
}

func TestValidatePost_TitleBounds(t *testing.T) {
	v := Validator{}

	in := validInput()
	in.Title = "abcd"
	_, err := v.ValidatePost(in)
	assert.Contains(t, fieldsOf(t, err), "title")

	in.Title = "abcde"
	_, err = v.ValidatePost(in)
	assert.NoError(t, err)

	in.Title = strings.Repeat("a", 100)
	_, err = v.ValidatePost(in)
	assert.NoError(t, err)

	in.Title = strings.Repeat("a", 101)
	_, err = v.ValidatePost(in)
	assert.Contains(t, fieldsOf(t, err), "title")
}

func TestValidatePost_TitleCountsCharacters(t *testing.T) {
	in := validInput()
	// 100 символов телугу - это 300 байт
	in.Title = strings.Repeat("వ", 100)
	_, err := Validator{}.ValidatePost(in)
	assert.NoError(t, err)
}

func TestValidatePost_Content(t *testing.T) {
	in := validInput()
	in.Content = "too short"
	_, err := Validator{}.ValidatePost(in)
	assert.Contains(t, fieldsOf(t, err), "content")

	in.Content = "long enough"
	_, err = Validator{}.ValidatePost(in)
	assert.NoError(t, err)
}

func TestValidatePost_Type(t *testing.T) {
	for _, typ := range domain.PostTypes() {
		in := validInput()
		in.Type = typ
		_, err := Validator{}.ValidatePost(in)
		assert.NoError(t, err, typ)
	}

	in := validInput()
	in.Type = "rant"
	_, err := Validator{}.ValidatePost(in)
	assert.Contains(t, fieldsOf(t, err), "type")
}

func TestValidatePost_Category(t *testing.T) {
	in := validInput()
	in.Category = "horticulture"
	_, err := Validator{}.ValidatePost(in)
	assert.NoError(t, err, "live endpoint accepts any non-empty category")

	_, err = Validator{StrictCategories: true}.ValidatePost(in)
	assert.Contains(t, fieldsOf(t, err), "category")

	in.Category = "  "
	_, err = Validator{}.ValidatePost(in)
	assert.Contains(t, fieldsOf(t, err), "category")
}

func TestValidatePost_Defaults(t *testing.T) {
	out, err := Validator{}.ValidatePost(validInput())
	require.NoError(t, err)
	assert.Equal(t, "en", out.Language)
	assert.NotNil(t, out.Tags)
	assert.Empty(t, out.Tags)
}

func TestValidatePost_ReportsAllFields(t *testing.T) {
	_, err := Validator{}.ValidatePost(PostInput{})
	fields := fieldsOf(t, err)
	assert.Len(t, fields, 4)
	assert.Equal(t, "validation failed: category: category is required; "+
		"content: content must be at least 10 characters; "+
		"title: title must be between 5 and 100 characters; "+
		"type: type must be one of [question discussion tip problem success_story]", err.Error())
}

func TestValidateComment(t *testing.T) {
	_, err := Validator{}.ValidateComment(CommentInput{Author: "Ravi", Content: "Use neem oil"})
	assert.NoError(t, err)

	_, err = Validator{}.ValidateComment(CommentInput{Author: "", Content: "  "})
	fields := fieldsOf(t, err)
	assert.Contains(t, fields, "author")
	assert.Equal(t, "comment content cannot be empty", fields["content"])

	_, err = Validator{}.ValidateComment(CommentInput{Author: "Ravi", Content: strings.Repeat("a", 2001)})
	assert.Equal(t, "comment content is too long", fieldsOf(t, err)["content"])
}

func TestValidateLimit(t *testing.T) {
	assert.NoError(t, ValidateLimit(1))
	assert.NoError(t, ValidateLimit(100))
	assert.Contains(t, fieldsOf(t, ValidateLimit(0)), "limit")
	assert.Contains(t, fieldsOf(t, ValidateLimit(101)), "limit")
}

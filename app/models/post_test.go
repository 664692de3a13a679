package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostValidation(t *testing.T) {
	author := NewIdentity("user-1")
	tests := []struct {
		name    string
		post    *Post
		wantErr bool
	}{
		{
			name: "valid post",
			post: &Post{
				Title:   "Valid Title",
				Content: "Some content",
				Status:  StatusDraft,
				Author:  author,
			},
			wantErr: false,
		},
		{
			name: "empty category is allowed",
			post: &Post{
				Title:   "Valid Title",
				Content: "Some content",
				Status:  StatusPublished,
				Author:  author,
			},
			wantErr: false,
		},
		{
			name: "missing title",
			post: &Post{
				Content: "Some content",
				Status:  StatusDraft,
				Author:  author,
			},
			wantErr: true,
		},
		{
			name: "title too long",
			post: &Post{
				Title:   strings.Repeat("a", 201),
				Content: "Some content",
				Status:  StatusDraft,
				Author:  author,
			},
			wantErr: true,
		},
		{
			name: "missing content",
			post: &Post{
				Title:  "Valid Title",
				Status: StatusDraft,
				Author: author,
			},
			wantErr: true,
		},
		{
			name: "unknown status",
			post: &Post{
				Title:   "Valid Title",
				Content: "Some content",
				Status:  Status("archived"),
				Author:  author,
			},
			wantErr: true,
		},
		{
			name: "missing author",
			post: &Post{
				Title:   "Valid Title",
				Content: "Some content",
				Status:  StatusDraft,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.post.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostBeforeCreate(t *testing.T) {
	post := &Post{Title: "Test Post", Content: "Test Content"}

	assert.True(t, post.CreatedAt.IsZero())
	post.BeforeCreate()
	assert.False(t, post.CreatedAt.IsZero())
	assert.Equal(t, post.CreatedAt, post.UpdatedAt)
}

func TestPostApplyReplacesAllFields(t *testing.T) {
	post := &Post{
		Title:    "Old",
		Content:  "Old content",
		Category: "tech",
		Status:   StatusPublished,
		Author:   NewIdentity("user-1"),
	}

	post.Apply(PostFields{Title: "New", Status: StatusDraft})

	assert.Equal(t, "New", post.Title)
	assert.Empty(t, post.Content)
	assert.Empty(t, post.Category)
	assert.Equal(t, StatusDraft, post.Status)
	assert.True(t, post.Author.Equal(NewIdentity("user-1")))
}

func TestPostSetImage(t *testing.T) {
	post := &Post{}
	post.SetImage("")
	assert.Nil(t, post.ImagePath)

	post.SetImage("https://cdn.example.com/a.png")
	require.NotNil(t, post.ImagePath)
	assert.Equal(t, "https://cdn.example.com/a.png", *post.ImagePath)
}

func TestPostJSON(t *testing.T) {
	post := &Post{ID: "p1", Title: "A", Content: "B", Status: StatusDraft, Author: NewIdentity("u1")}

	data, err := json.Marshal(post)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, "u1", out["author"])
	assert.Nil(t, out["imagePath"])
	assert.NotContains(t, out, "authorSummary")
}

func TestPostFilterMatches(t *testing.T) {
	mine := &Post{Author: NewIdentity("u1"), Status: StatusDraft}
	theirs := &Post{Author: NewIdentity("u2"), Status: StatusPublished}

	byAuthor := PostFilter{Author: NewIdentity("u1")}
	assert.True(t, byAuthor.Matches(mine))
	assert.False(t, byAuthor.Matches(theirs))

	published := PostFilter{Status: StatusPublished}
	assert.False(t, published.Matches(mine))
	assert.True(t, published.Matches(theirs))

	assert.True(t, PostFilter{}.Matches(mine))
}

func TestUserValidation(t *testing.T) {
	valid := &User{ID: NewIdentity("u1"), Name: "Ada", Email: "ada@example.com"}
	assert.NoError(t, valid.Validate())

	noID := &User{Name: "Ada", Email: "ada@example.com"}
	assert.Error(t, noID.Validate())

	badEmail := &User{ID: NewIdentity("u1"), Name: "Ada", Email: "not-an-email"}
	assert.Error(t, badEmail.Validate())
}

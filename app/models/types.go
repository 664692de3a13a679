package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Status is the publication state of a post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Post represents a blog post owned by a single author.
type Post struct {
	ID            string         `json:"id"`
	Title         string         `json:"title" validate:"required,max=200"`
	Content       string         `json:"content" validate:"required"`
	Category      string         `json:"category" validate:"max=100"`
	Status        Status         `json:"status" validate:"required,oneof=draft published"`
	ImagePath     *string        `json:"imagePath"`
	Author        Identity       `json:"author"`
	AuthorSummary *AuthorSummary `json:"authorSummary,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// AuthorSummary is the denormalized author attached to listed posts.
type AuthorSummary struct {
	ID    Identity `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
}

// User is a profile in the identity store.
type User struct {
	ID    Identity `json:"id"`
	Name  string   `json:"name" validate:"required,max=100"`
	Email string   `json:"email" validate:"required,email"`
}

// PostFields are the client-writable fields of a post.
type PostFields struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Category string `json:"category"`
	Status   Status `json:"status"`
}

// PostFilter selects posts in a repository Find. Zero fields match anything.
type PostFilter struct {
	Author Identity
	Status Status
}

// Matches reports whether p satisfies the filter.
func (f PostFilter) Matches(p *Post) bool {
	if !f.Author.IsZero() && !f.Author.Equal(p.Author) {
		return false
	}
	if f.Status != "" && f.Status != p.Status {
		return false
	}
	return true
}

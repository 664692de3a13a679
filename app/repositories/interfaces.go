package repositories

import (
	"context"
	"errors"

	"postboard/app/models"
)

var (
	ErrNotFound = errors.New("record not found")
)

// PostRepository defines the interface for post data access
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	Find(ctx context.Context, filter models.PostFilter) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
}

// UserRepository is the identity store used to expand post authors.
type UserRepository interface {
	GetByIDs(ctx context.Context, ids []models.Identity) (map[models.Identity]*models.User, error)
	Upsert(ctx context.Context, user *models.User) error
}

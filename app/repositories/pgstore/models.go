package pgstore

import (
	"time"

	"postboard/app/models"
)

type postModel struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	Title     string    `gorm:"column:title;not null"`
	Content   string    `gorm:"column:content;not null"`
	Category  string    `gorm:"column:category"`
	Status    string    `gorm:"column:status;not null;index"`
	ImagePath *string   `gorm:"column:image_path"`
	AuthorID  string    `gorm:"column:author_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (postModel) TableName() string { return "posts" }

type userModel struct {
	ID    string `gorm:"column:id;primaryKey"`
	Name  string `gorm:"column:name"`
	Email string `gorm:"column:email"`
}

func (userModel) TableName() string { return "users" }

func postModelFromEntity(post *models.Post) postModel {
	return postModel{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Category:  post.Category,
		Status:    string(post.Status),
		ImagePath: post.ImagePath,
		AuthorID:  post.Author.String(),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func (m postModel) toEntity() *models.Post {
	return &models.Post{
		ID:        m.ID,
		Title:     m.Title,
		Content:   m.Content,
		Category:  m.Category,
		Status:    models.Status(m.Status),
		ImagePath: m.ImagePath,
		Author:    models.NewIdentity(m.AuthorID),
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}

func (m userModel) toEntity() *models.User {
	return &models.User{
		ID:    models.NewIdentity(m.ID),
		Name:  m.Name,
		Email: m.Email,
	}
}

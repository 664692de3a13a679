package pgstore

import (
	"context"
	"errors"
	"time"

	"postboard/app/models"
	"postboard/app/repositories"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository implements repositories.PostRepository on the posts table.
type PostRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()
	post.ID = uuid.NewString()
	post.BeforeCreate()
	row := postModelFromEntity(post)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()
	if _, err := uuid.Parse(id); err != nil {
		return nil, repositories.ErrNotFound
	}
	var row postModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.toEntity(), nil
}

func (r *PostRepository) Find(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()
	tx := r.db.WithContext(ctx).Model(&postModel{})
	if !filter.Author.IsZero() {
		tx = tx.Where("author_id = ?", filter.Author.String())
	}
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}

	var rows []postModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.toEntity())
	}
	return posts, nil
}

// Update writes every mutable column, so cleared fields are stored as empty.
func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()
	if _, err := uuid.Parse(post.ID); err != nil {
		return repositories.ErrNotFound
	}
	post.BeforeUpdate()
	row := postModelFromEntity(post)

	result := r.db.WithContext(ctx).
		Model(&postModel{}).
		Where("id = ?", post.ID).
		Select("title", "content", "category", "status", "image_path", "updated_at").
		Updates(&row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()
	if _, err := uuid.Parse(id); err != nil {
		return repositories.ErrNotFound
	}
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&postModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// UserRepository reads author profiles from the users table.
type UserRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []models.Identity) (map[models.Identity]*models.User, error) {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()
	users := make(map[models.Identity]*models.User)
	unique := repositories.UniqueIdentities(ids)
	if len(unique) == 0 {
		return users, nil
	}

	raw := make([]string, 0, len(unique))
	for _, id := range unique {
		raw = append(raw, id.String())
	}
	var rows []userModel
	if err := r.db.WithContext(ctx).Where("id IN ?", raw).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		user := row.toEntity()
		users[user.ID] = user
	}
	return users, nil
}

func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	ctx, cancel := bounded(ctx, r.timeout)
	defer cancel()
	row := userModel{ID: user.ID.String(), Name: user.Name, Email: user.Email}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email"}),
	}).Create(&row).Error
}

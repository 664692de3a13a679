package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"postboard/app/blob"
	"postboard/app/models"
	"postboard/app/repositories"
)

// Image is an optional upload attached to a create or update.
type Image struct {
	Filename string
	Data     []byte
}

// PostService applies the visibility and ownership rules for posts.
type PostService struct {
	postRepo repositories.PostRepository
	userRepo repositories.UserRepository
	blobs    blob.Store
	logger   *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository, userRepo repositories.UserRepository, blobs blob.Store, logger *slog.Logger) *PostService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		blobs:    blobs,
		logger:   logger,
	}
}

// List returns the caller's own posts in any status, or every published
// post for anonymous callers.
func (s *PostService) List(ctx context.Context, caller models.Identity) ([]*models.Post, error) {
	filter := models.PostFilter{Status: models.StatusPublished}
	if !caller.IsZero() {
		filter = models.PostFilter{Author: caller}
	}

	posts, err := s.postRepo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	s.attachAuthors(ctx, posts)
	return posts, nil
}

// attachAuthors fills AuthorSummary from the identity store. A failing
// identity store leaves summaries empty instead of failing the listing.
func (s *PostService) attachAuthors(ctx context.Context, posts []*models.Post) {
	if s.userRepo == nil || len(posts) == 0 {
		return
	}
	ids := make([]models.Identity, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.Author)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		s.logger.Warn("author lookup failed",
			"event", "author_summary_degraded",
			"posts", len(posts),
			"error", err,
		)
		return
	}
	for _, p := range posts {
		if u, ok := users[p.Author]; ok {
			p.AuthorSummary = u.Summary()
		}
	}
}

// Create stores a new post owned by caller.
func (s *PostService) Create(ctx context.Context, caller models.Identity, fields models.PostFields, image *Image) (*models.Post, error) {
	if caller.IsZero() {
		return nil, ErrAuthenticationRequired
	}

	post := &models.Post{Author: caller}
	post.Apply(fields)
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.attachImage(ctx, post, image); err != nil {
		return nil, err
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.logger.Info("post created",
		"event", "post_created",
		"post_id", post.ID,
		"author", caller.String(),
		"status", string(post.Status),
	)
	return post, nil
}

// Update replaces every writable field of a post owned by caller. The image
// is replaced only when a new one is supplied.
func (s *PostService) Update(ctx context.Context, caller models.Identity, id string, fields models.PostFields, image *Image) (*models.Post, error) {
	post, err := s.ownedPost(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	post.Apply(fields)
	if err := post.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	if err := s.attachImage(ctx, post, image); err != nil {
		return nil, err
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	s.logger.Info("post updated",
		"event", "post_updated",
		"post_id", post.ID,
		"author", caller.String(),
		"status", string(post.Status),
	)
	return post, nil
}

// Delete permanently removes a post owned by caller.
func (s *PostService) Delete(ctx context.Context, caller models.Identity, id string) error {
	post, err := s.ownedPost(ctx, caller, id)
	if err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post: %w", err)
	}
	s.logger.Info("post deleted",
		"event", "post_deleted",
		"post_id", post.ID,
		"author", caller.String(),
	)
	return nil
}

// ownedPost runs the shared authenticate, lookup, ownership sequence.
func (s *PostService) ownedPost(ctx context.Context, caller models.Identity, id string) (*models.Post, error) {
	if caller.IsZero() {
		return nil, ErrAuthenticationRequired
	}

	post, err := s.postRepo.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	if !post.Author.Equal(caller) {
		return nil, ErrForbidden
	}
	return post, nil
}

func (s *PostService) attachImage(ctx context.Context, post *models.Post, image *Image) error {
	if image == nil {
		return nil
	}
	if s.blobs == nil {
		return fmt.Errorf("%w: no media store configured", ErrUpload)
	}
	uri, err := s.blobs.Upload(ctx, blob.Object{Filename: image.Filename, Data: image.Data})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpload, err)
	}
	post.SetImage(uri)
	return nil
}

package models

import (
	"errors"
	"time"
)

// Validate checks if the post meets all validation requirements
func (p *Post) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}

	if p.Author.IsZero() {
		return errors.New("author is required")
	}

	return nil
}

// BeforeCreate sets up any necessary fields before creation
func (p *Post) BeforeCreate() {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt
}

// BeforeUpdate bumps the modification time.
func (p *Post) BeforeUpdate() {
	p.UpdatedAt = time.Now().UTC()
}

// Apply overwrites every client-writable field. Fields missing from the
// request are cleared, not kept.
func (p *Post) Apply(fields PostFields) {
	p.Title = fields.Title
	p.Content = fields.Content
	p.Category = fields.Category
	p.Status = fields.Status
}

// SetImage records the URI of an uploaded image.
func (p *Post) SetImage(uri string) {
	if uri == "" {
		return
	}
	p.ImagePath = &uri
}

// Summary builds the author summary for a user profile.
func (u *User) Summary() *AuthorSummary {
	return &AuthorSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Validate checks the user profile fields.
func (u *User) Validate() error {
	if u.ID.IsZero() {
		return errors.New("user id is required")
	}
	return validate.Struct(u)
}

package mongostore

import (
	"time"

	"postboard/app/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type postDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Category  string             `bson:"category"`
	Status    string             `bson:"status"`
	ImagePath *string            `bson:"imagePath"`
	Author    interface{}        `bson:"author"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

type userDocument struct {
	ID    interface{} `bson:"_id"`
	Name  string      `bson:"name"`
	Email string      `bson:"email"`
}

// idValue stores hex ids as ObjectIDs so references written by other
// clients (mongoose refs) keep matching. Anything else is kept as a string.
func idValue(id models.Identity) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id.String()); err == nil {
		return oid
	}
	return id.String()
}

func identityFrom(v interface{}) models.Identity {
	switch t := v.(type) {
	case primitive.ObjectID:
		return models.NewIdentity(t.Hex())
	case string:
		return models.NewIdentity(t)
	default:
		return models.Identity{}
	}
}

func postDocumentFrom(post *models.Post) postDocument {
	doc := postDocument{
		Title:     post.Title,
		Content:   post.Content,
		Category:  post.Category,
		Status:    string(post.Status),
		ImagePath: post.ImagePath,
		Author:    idValue(post.Author),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	if oid, err := primitive.ObjectIDFromHex(post.ID); err == nil {
		doc.ID = oid
	}
	return doc
}

func (d postDocument) toModel() *models.Post {
	return &models.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Category:  d.Category,
		Status:    models.Status(d.Status),
		ImagePath: d.ImagePath,
		Author:    identityFrom(d.Author),
		CreatedAt: d.CreatedAt.UTC(),
		UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func (d userDocument) toModel() *models.User {
	return &models.User{
		ID:    identityFrom(d.ID),
		Name:  d.Name,
		Email: d.Email,
	}
}

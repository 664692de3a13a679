package mongostore

import (
	"context"
	"errors"

	"postboard/app/models"
	"postboard/app/repositories"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository implements repositories.PostRepository on a mongo collection.
type PostRepository struct {
	coll *mongo.Collection
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	post.BeforeCreate()
	doc := postDocumentFrom(post)
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	post.ID = doc.ID.Hex()
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repositories.ErrNotFound
	}
	var doc postDocument
	err = r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.toModel(), nil
}

func (r *PostRepository) Find(ctx context.Context, filter models.PostFilter) ([]*models.Post, error) {
	query := bson.M{}
	if !filter.Author.IsZero() {
		query["author"] = idValue(filter.Author)
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}

	cursor, err := r.coll.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, doc.toModel())
	}
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	oid, err := primitive.ObjectIDFromHex(post.ID)
	if err != nil {
		return repositories.ErrNotFound
	}
	post.BeforeUpdate()
	doc := postDocumentFrom(post)

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repositories.ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// UserRepository reads author profiles from the users collection.
type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) GetByIDs(ctx context.Context, ids []models.Identity) (map[models.Identity]*models.User, error) {
	users := make(map[models.Identity]*models.User)
	unique := repositories.UniqueIdentities(ids)
	if len(unique) == 0 {
		return users, nil
	}

	values := make(bson.A, 0, len(unique))
	for _, id := range unique {
		values = append(values, idValue(id))
	}
	opts := options.Find().SetProjection(bson.M{"name": 1, "email": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": values}}, opts)
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, doc := range docs {
		user := doc.toModel()
		users[user.ID] = user
	}
	return users, nil
}

func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	id := idValue(user.ID)
	update := bson.M{"$set": bson.M{"name": user.Name, "email": user.Email}}
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	return err
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/postlane/postlane/internal/model"
)

var ErrPostNotFound = errors.New("post not found")

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	ByID(ctx context.Context, id string) (*model.Post, error)
	ListByUser(ctx context.Context, userID string, query model.PostListQuery) ([]model.Post, int64, error)
	UpdateByID(ctx context.Context, id, title, text string) (*model.Post, error)
	DeleteByID(ctx context.Context, id string) error
}

type postRepository struct {
	col *mongo.Collection
}

func NewPostRepository(database *mongo.Database) PostRepository {
	return &postRepository{col: database.Collection("posts")}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}
	now := time.Now()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, post)
	return err
}

func (r *postRepository) ByID(ctx context.Context, id string) (*model.Post, error) {
	post := &model.Post{}
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *postRepository) ListByUser(ctx context.Context, userID string, query model.PostListQuery) ([]model.Post, int64, error) {
	filter := bson.M{"userId": userID}
	if query.Title != "" {
		filter["title"] = bson.M{"$regex": query.Title, "$options": "i"}
	}

	order := 1
	if query.Desc {
		order = -1
	}
	orderBy := query.OrderBy
	if orderBy == "" {
		orderBy = "createdAt"
	}

	skip := int64(query.Limit) * int64(query.Page-1)
	opts := options.Find().
		SetSort(bson.D{{Key: orderBy, Value: order}}).
		SetLimit(int64(query.Limit)).
		SetSkip(skip)

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	var posts []model.Post
	err = cursor.All(ctx, &posts)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return posts, total, nil
}

func (r *postRepository) UpdateByID(ctx context.Context, id, title, text string) (*model.Post, error) {
	set := bson.M{"updatedAt": time.Now()}
	if title != "" {
		set["title"] = title
	}
	if text != "" {
		set["text"] = text
	}

	post := &model.Post{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (r *postRepository) DeleteByID(ctx context.Context, id string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

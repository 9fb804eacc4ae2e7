package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/postlane/postlane/internal/model"
)

// OldPasswordRepository keeps the per-user history of retired password hashes.
type OldPasswordRepository interface {
	Create(ctx context.Context, oldPassword *model.OldPassword) error
	ByUser(ctx context.Context, userID string) ([]model.OldPassword, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type oldPasswordRepository struct {
	col *mongo.Collection
}

func NewOldPasswordRepository(database *mongo.Database) OldPasswordRepository {
	return &oldPasswordRepository{col: database.Collection("oldPasswords")}
}

func (r *oldPasswordRepository) Create(ctx context.Context, oldPassword *model.OldPassword) error {
	if oldPassword.ID == "" {
		oldPassword.ID = uuid.New().String()
	}
	if oldPassword.CreatedAt.IsZero() {
		oldPassword.CreatedAt = time.Now()
	}

	_, err := r.col.InsertOne(ctx, oldPassword)
	return err
}

func (r *oldPasswordRepository) ByUser(ctx context.Context, userID string) ([]model.OldPassword, error) {
	cursor, err := r.col.Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, err
	}

	var history []model.OldPassword
	err = cursor.All(ctx, &history)
	if err != nil {
		return nil, err
	}
	return history, nil
}

func (r *oldPasswordRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

func (r *oldPasswordRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

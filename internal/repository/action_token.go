package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/postlane/postlane/internal/model"
)

var ErrActionTokenNotFound = errors.New("action token not found")

// ActionTokenRepository persists single-use tokens. ByToken returning
// ErrActionTokenNotFound means the token was consumed (or never issued), no
// matter what the JWT itself says.
type ActionTokenRepository interface {
	Create(ctx context.Context, actionToken *model.ActionToken) error
	ByToken(ctx context.Context, tokenString string) (*model.ActionToken, error)
	DeleteByToken(ctx context.Context, tokenString string) error
	DeleteByUserAndKind(ctx context.Context, userID, kind string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteOlderThan(ctx context.Context, kind string, cutoff time.Time) (int64, error)
}

type actionTokenRepository struct {
	col *mongo.Collection
}

func NewActionTokenRepository(database *mongo.Database) ActionTokenRepository {
	return &actionTokenRepository{col: database.Collection("actionTokens")}
}

func (r *actionTokenRepository) Create(ctx context.Context, actionToken *model.ActionToken) error {
	if actionToken.ID == "" {
		actionToken.ID = uuid.New().String()
	}
	if actionToken.CreatedAt.IsZero() {
		actionToken.CreatedAt = time.Now()
	}

	_, err := r.col.InsertOne(ctx, actionToken)
	return err
}

func (r *actionTokenRepository) ByToken(ctx context.Context, tokenString string) (*model.ActionToken, error) {
	actionToken := &model.ActionToken{}
	err := r.col.FindOne(ctx, bson.M{"token": tokenString}).Decode(actionToken)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrActionTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return actionToken, nil
}

func (r *actionTokenRepository) DeleteByToken(ctx context.Context, tokenString string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"token": tokenString})
	return err
}

func (r *actionTokenRepository) DeleteByUserAndKind(ctx context.Context, userID, kind string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID, "kind": kind})
	return err
}

func (r *actionTokenRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

func (r *actionTokenRepository) DeleteOlderThan(ctx context.Context, kind string, cutoff time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"kind": kind, "createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

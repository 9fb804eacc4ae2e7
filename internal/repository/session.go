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

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists issued token pairs. A pair is live while its row
// exists; all delete operations are idempotent.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	ByAccessToken(ctx context.Context, accessToken string) (*model.Session, error)
	ByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error)
	DeleteByAccessToken(ctx context.Context, accessToken string) error
	DeleteByRefreshToken(ctx context.Context, refreshToken string) error
	DeleteByUser(ctx context.Context, userID string) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type sessionRepository struct {
	col *mongo.Collection
}

func NewSessionRepository(database *mongo.Database) SessionRepository {
	return &sessionRepository{col: database.Collection("sessions")}
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	now := time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, session)
	return err
}

func (r *sessionRepository) ByAccessToken(ctx context.Context, accessToken string) (*model.Session, error) {
	return r.findOne(ctx, bson.M{"accessToken": accessToken})
}

func (r *sessionRepository) ByRefreshToken(ctx context.Context, refreshToken string) (*model.Session, error) {
	return r.findOne(ctx, bson.M{"refreshToken": refreshToken})
}

func (r *sessionRepository) findOne(ctx context.Context, filter bson.M) (*model.Session, error) {
	session := &model.Session{}
	err := r.col.FindOne(ctx, filter).Decode(session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (r *sessionRepository) DeleteByAccessToken(ctx context.Context, accessToken string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"accessToken": accessToken})
	return err
}

func (r *sessionRepository) DeleteByRefreshToken(ctx context.Context, refreshToken string) error {
	_, err := r.col.DeleteOne(ctx, bson.M{"refreshToken": refreshToken})
	return err
}

func (r *sessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.col.DeleteMany(ctx, bson.M{"userId": userID})
	return err
}

func (r *sessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

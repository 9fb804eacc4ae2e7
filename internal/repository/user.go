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

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, query model.UserListQuery) ([]model.User, int64, error)
	UpdateProfile(ctx context.Context, id, name string, age int) (*model.User, error)
	SetPassword(ctx context.Context, id, passwordHash string) error
	SetVerified(ctx context.Context, id string) error
	SoftDeleteByID(ctx context.Context, id string) error
	Restore(ctx context.Context, id, passwordHash string) error
	InactiveSince(ctx context.Context, cutoff time.Time) ([]model.User, error)
}

type userRepository struct {
	col *mongo.Collection
}

func NewUserRepository(database *mongo.Database) UserRepository {
	return &userRepository{col: database.Collection("users")}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (r *userRepository) ByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// ByEmail returns soft-deleted users too; callers branch on IsDeleted.
func (r *userRepository) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	user := &model.User{}
	err := r.col.FindOne(ctx, filter).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) List(ctx context.Context, query model.UserListQuery) ([]model.User, int64, error) {
	filter := bson.M{"isDeleted": false}

	if query.Name != "" {
		filter["name"] = bson.M{"$regex": query.Name, "$options": "i"}
	}

	switch {
	case query.Age > 0:
		filter["age"] = query.Age
	case query.MinAge > 0 && query.MaxAge > 0:
		filter["age"] = bson.M{"$gte": query.MinAge, "$lte": query.MaxAge}
	case query.MinAge > 0:
		filter["age"] = bson.M{"$gte": query.MinAge}
	case query.MaxAge > 0:
		filter["age"] = bson.M{"$lte": query.MaxAge}
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

	var users []model.User
	err = cursor.All(ctx, &users)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id, name string, age int) (*model.User, error) {
	set := bson.M{"updatedAt": time.Now()}
	if name != "" {
		set["name"] = name
	}
	if age > 0 {
		set["age"] = age
	}

	user := &model.User{}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *userRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{"password": passwordHash})
}

func (r *userRepository) SetVerified(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"isVerified": true})
}

func (r *userRepository) SoftDeleteByID(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"isDeleted": true, "deletedAt": time.Now()})
}

// Restore reactivates a soft-deleted account with a freshly hashed password.
func (r *userRepository) Restore(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{
		"password":  passwordHash,
		"isDeleted": false,
		"deletedAt": nil,
	})
}

func (r *userRepository) updateByID(ctx context.Context, id string, set bson.M) error {
	set["updatedAt"] = time.Now()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

// InactiveSince returns active users whose last update predates cutoff.
// Feeds the old-visit reminder sweep.
func (r *userRepository) InactiveSince(ctx context.Context, cutoff time.Time) ([]model.User, error) {
	cursor, err := r.col.Find(ctx, bson.M{
		"isDeleted": false,
		"updatedAt": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return nil, err
	}

	var users []model.User
	err = cursor.All(ctx, &users)
	if err != nil {
		return nil, err
	}
	return users, nil
}

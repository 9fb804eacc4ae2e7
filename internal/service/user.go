package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/postlane/postlane/internal/apperror"
	"github.com/postlane/postlane/internal/model"
	"github.com/postlane/postlane/internal/repository"
)

// UserService covers the user directory and self-service profile operations.
type UserService struct {
	users        repository.UserRepository
	sessions     repository.SessionRepository
	actionTokens repository.ActionTokenRepository
}

func NewUserService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	actionTokens repository.ActionTokenRepository,
) *UserService {
	return &UserService{
		users:        users,
		sessions:     sessions,
		actionTokens: actionTokens,
	}
}

// List returns a page of active users. Soft-deleted accounts never appear.
func (s *UserService) List(ctx context.Context, query model.UserListQuery) ([]model.User, int64, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 || query.Limit > 100 {
		query.Limit = 10
	}

	users, total, err := s.users.List(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ByID resolves one active user. Soft-deleted accounts read as absent.
func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsDeleted {
		return nil, apperror.ErrUserNotFound
	}
	return user, nil
}

type UpdateProfileInput struct {
	Name string
	Age  int
}

// UpdateProfile changes the caller's mutable profile fields. Email and
// password go through the auth flows instead.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*model.User, error) {
	user, err := s.users.UpdateProfile(ctx, userID, in.Name, in.Age)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete soft-deletes the caller's account and revokes everything that could
// act on its behalf: live sessions and outstanding action tokens. The row
// survives so AccountRestore can bring it back.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	err := s.users.SoftDeleteByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}

	err = s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	err = s.actionTokens.DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to revoke action tokens: %w", err)
	}

	slog.Info("user soft-deleted", "user_id", userID)
	return nil
}

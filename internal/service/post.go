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

// PostService owns the posts of verified users. Every mutation checks that
// the caller owns the post; reads are scoped per user.
type PostService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository) *PostService {
	return &PostService{posts: posts, users: users}
}

type PostInput struct {
	Title string
	Text  string
}

// ListByUser returns a page of the given user's posts. The owner must exist
// and be active.
func (s *PostService) ListByUser(ctx context.Context, userID string, query model.PostListQuery) ([]model.Post, int64, error) {
	err := s.activeUserOrErr(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 || query.Limit > 100 {
		query.Limit = 10
	}

	posts, total, err := s.posts.ListByUser(ctx, userID, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, total, nil
}

func (s *PostService) Create(ctx context.Context, userID string, in PostInput) (*model.Post, error) {
	post := &model.Post{
		Title:  in.Title,
		Text:   in.Text,
		UserID: userID,
	}
	err := s.posts.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	slog.Info("post created", "post_id", post.ID, "user_id", userID)
	return post, nil
}

func (s *PostService) ByID(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperror.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Update edits a post the caller owns. Editing someone else's post is
// forbidden rather than absent: the post id was valid.
func (s *PostService) Update(ctx context.Context, id, userID string, in PostInput) (*model.Post, error) {
	err := s.ownedOrErr(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	post, err := s.posts.UpdateByID(ctx, id, in.Title, in.Text)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return nil, apperror.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, id, userID string) error {
	err := s.ownedOrErr(ctx, id, userID)
	if err != nil {
		return err
	}

	err = s.posts.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	slog.Info("post deleted", "post_id", id, "user_id", userID)
	return nil
}

func (s *PostService) ownedOrErr(ctx context.Context, id, userID string) error {
	post, err := s.posts.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return apperror.ErrPostNotFound
		}
		return fmt.Errorf("failed to get post: %w", err)
	}
	if post.UserID != userID {
		return apperror.ErrForbiddenPostAccess
	}
	return nil
}

func (s *PostService) activeUserOrErr(ctx context.Context, userID string) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsDeleted {
		return apperror.ErrUserNotFound
	}
	return nil
}

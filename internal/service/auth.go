package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/postlane/postlane/internal/apperror"
	"github.com/postlane/postlane/internal/model"
	"github.com/postlane/postlane/internal/password"
	"github.com/postlane/postlane/internal/repository"
	"github.com/postlane/postlane/internal/token"
)

// AuthService orchestrates the credential and session lifecycle: sign-up and
// sign-in, token rotation and revocation, the password history policy, and
// the verify/forgot/restore action flows.
type AuthService struct {
	users        repository.UserRepository
	sessions     repository.SessionRepository
	actionTokens repository.ActionTokenRepository
	oldPasswords repository.OldPasswordRepository
	hasher       password.Hasher
	codec        *token.Codec
	email        EmailSender
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	actionTokens repository.ActionTokenRepository,
	oldPasswords repository.OldPasswordRepository,
	hasher password.Hasher,
	codec *token.Codec,
	email EmailSender,
) *AuthService {
	return &AuthService{
		users:        users,
		sessions:     sessions,
		actionTokens: actionTokens,
		oldPasswords: oldPasswords,
		hasher:       hasher,
		codec:        codec,
		email:        email,
	}
}

type SignUpInput struct {
	Name     string
	Email    string
	Age      int
	Password string
}

// SignUp creates an unverified account, opens its first session and emails a
// verify-email action token. An active account with the same email fails
// ErrEmailAlreadyInUse; a soft-deleted one signals that restore is available
// instead of creating a duplicate.
func (s *AuthService) SignUp(ctx context.Context, in SignUpInput) (*model.User, token.Pair, error) {
	existing, err := s.users.ByEmail(ctx, in.Email)
	if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
		return nil, token.Pair{}, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		if existing.IsDeleted {
			return nil, token.Pair{}, apperror.ErrAccountRestorable
		}
		return nil, token.Pair{}, apperror.ErrEmailAlreadyInUse
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, token.Pair{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Name:         in.Name,
		Email:        in.Email,
		Age:          in.Age,
		PasswordHash: hash,
	}
	err = s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, token.Pair{}, apperror.ErrEmailAlreadyInUse
		}
		return nil, token.Pair{}, fmt.Errorf("failed to create user: %w", err)
	}

	pair, err := s.openSession(ctx, payloadFor(user))
	if err != nil {
		return nil, token.Pair{}, err
	}

	actionToken, err := s.issueActionToken(ctx, user, token.KindVerifyEmail, model.ActionKindVerifyEmail)
	if err != nil {
		return nil, token.Pair{}, err
	}

	err = s.email.Send(ctx, EmailWelcome, user.Email, EmailContext{Name: user.Name, ActionToken: actionToken})
	if err != nil {
		// User and tokens stay persisted; only the delivery failure surfaces.
		slog.Error("welcome email delivery failed", "error", err, "user_id", user.ID)
		return nil, token.Pair{}, apperror.ErrEmailDelivery
	}

	slog.Info("user signed up", "user_id", user.ID)
	return user, pair, nil
}

// SignIn verifies credentials and opens a new session. Unknown email and
// wrong password both report ErrInvalidCredentials so accounts cannot be
// enumerated.
func (s *AuthService) SignIn(ctx context.Context, email, plaintext string) (*model.User, token.Pair, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, token.Pair{}, apperror.ErrInvalidCredentials
		}
		return nil, token.Pair{}, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsDeleted {
		return nil, token.Pair{}, apperror.ErrAccountRestorable
	}

	if !s.hasher.Compare(plaintext, user.PasswordHash) {
		return nil, token.Pair{}, apperror.ErrInvalidCredentials
	}

	pair, err := s.openSession(ctx, payloadFor(user))
	if err != nil {
		return nil, token.Pair{}, err
	}

	slog.Info("user signed in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh rotates a session: the presented refresh token's pair is deleted
// and a fresh pair is issued from the verified payload. A pair that is
// already gone (concurrent logout) does not fail the rotation.
func (s *AuthService) Refresh(ctx context.Context, payload token.Payload, refreshToken string) (token.Pair, error) {
	err := s.sessions.DeleteByRefreshToken(ctx, refreshToken)
	if err != nil {
		return token.Pair{}, fmt.Errorf("failed to revoke session: %w", err)
	}

	return s.openSession(ctx, payload)
}

// Logout revokes the session holding the presented access token and notifies
// the user by email. Revoking an already-gone session is not an error.
func (s *AuthService) Logout(ctx context.Context, accessToken string, payload token.Payload) error {
	err := s.sessions.DeleteByAccessToken(ctx, accessToken)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}

	return s.sendLogoutEmail(ctx, payload.UserID)
}

// LogoutAll revokes every session of the user.
func (s *AuthService) LogoutAll(ctx context.Context, payload token.Payload) error {
	err := s.sessions.DeleteByUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	return s.sendLogoutEmail(ctx, payload.UserID)
}

// ForgotPassword emails a reset token to the account, if one exists. Unknown
// or deleted accounts are silently skipped so the endpoint reveals nothing.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			slog.Info("forgot password requested for unknown email", "email", email)
			return nil
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsDeleted {
		slog.Info("forgot password requested for deleted account", "user_id", user.ID)
		return nil
	}

	actionToken, err := s.issueActionToken(ctx, user, token.KindForgotPassword, model.ActionKindForgotPassword)
	if err != nil {
		return err
	}

	err = s.email.Send(ctx, EmailForgotPassword, user.Email, EmailContext{ActionToken: actionToken})
	if err != nil {
		slog.Error("forgot password email delivery failed", "error", err, "user_id", user.ID)
		return apperror.ErrEmailDelivery
	}
	return nil
}

// ForgotPasswordSet consumes a forgot-password token and sets a new password.
// The previous hash is archived first and every session is revoked.
func (s *AuthService) ForgotPasswordSet(ctx context.Context, newPassword, tokenString string, payload token.Payload) error {
	err := s.actionTokenConsumableOrErr(ctx, tokenString)
	if err != nil {
		return err
	}

	user, err := s.passwordUniqueOrErr(ctx, newPassword, payload.UserID)
	if err != nil {
		return err
	}

	err = s.rotatePassword(ctx, user, newPassword)
	if err != nil {
		return err
	}

	err = s.actionTokens.DeleteByToken(ctx, tokenString)
	if err != nil {
		return fmt.Errorf("failed to consume action token: %w", err)
	}

	err = s.sessions.DeleteByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("password reset", "user_id", user.ID)
	return nil
}

// Verify flips the account to verified and clears outstanding verify-email
// tokens. Verification is one-way.
func (s *AuthService) Verify(ctx context.Context, payload token.Payload) error {
	err := s.users.SetVerified(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return fmt.Errorf("failed to verify user: %w", err)
	}

	err = s.actionTokens.DeleteByUserAndKind(ctx, payload.UserID, model.ActionKindVerifyEmail)
	if err != nil {
		return fmt.Errorf("failed to clear verify tokens: %w", err)
	}

	slog.Info("email verified", "user_id", payload.UserID)
	return nil
}

// ChangePassword replaces the password after checking the old one and the
// reuse policy, then forces re-login everywhere.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string, payload token.Payload) error {
	user, err := s.passwordUniqueOrErr(ctx, newPassword, payload.UserID)
	if err != nil {
		return err
	}

	if !s.hasher.Compare(oldPassword, user.PasswordHash) {
		return apperror.ErrIncorrectPassword
	}

	err = s.rotatePassword(ctx, user, newPassword)
	if err != nil {
		return err
	}

	err = s.sessions.DeleteByUser(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("password changed", "user_id", user.ID)
	return nil
}

// AccountRestore emails a restore token to a previously registered account.
// Unlike ForgotPassword this reports an unknown email: restore is only
// reachable by someone claiming a specific prior account.
func (s *AuthService) AccountRestore(ctx context.Context, email string) error {
	user, err := s.users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrInvalidEmail
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	actionToken, err := s.issueActionToken(ctx, user, token.KindAccountRestore, model.ActionKindAccountRestore)
	if err != nil {
		return err
	}

	err = s.email.Send(ctx, EmailAccountRestore, user.Email, EmailContext{ActionToken: actionToken})
	if err != nil {
		slog.Error("account restore email delivery failed", "error", err, "user_id", user.ID)
		return apperror.ErrEmailDelivery
	}
	return nil
}

// AccountRestoreSet reactivates a soft-deleted account with a fresh password
// and a clean password history, consuming the restore token and revoking any
// leftover sessions.
func (s *AuthService) AccountRestoreSet(ctx context.Context, newPassword, tokenString string, payload token.Payload) error {
	err := s.actionTokenConsumableOrErr(ctx, tokenString)
	if err != nil {
		return err
	}

	err = s.oldPasswords.DeleteByUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to clear password history: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.users.Restore(ctx, payload.UserID, hash)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return fmt.Errorf("failed to restore user: %w", err)
	}

	err = s.actionTokens.DeleteByToken(ctx, tokenString)
	if err != nil {
		return fmt.Errorf("failed to consume action token: %w", err)
	}

	err = s.sessions.DeleteByUser(ctx, payload.UserID)
	if err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	slog.Info("account restored", "user_id", payload.UserID)
	return nil
}

// ResendVerifyEmail reissues the verify-email token for an unverified
// account, invalidating any earlier ones.
func (s *AuthService) ResendVerifyEmail(ctx context.Context, payload token.Payload) error {
	user, err := s.users.ByID(ctx, payload.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsVerified {
		return apperror.ErrAlreadyVerified
	}

	err = s.actionTokens.DeleteByUserAndKind(ctx, user.ID, model.ActionKindVerifyEmail)
	if err != nil {
		return fmt.Errorf("failed to clear verify tokens: %w", err)
	}

	actionToken, err := s.issueActionToken(ctx, user, token.KindVerifyEmail, model.ActionKindVerifyEmail)
	if err != nil {
		return err
	}

	err = s.email.Send(ctx, EmailWelcome, user.Email, EmailContext{Name: user.Name, ActionToken: actionToken})
	if err != nil {
		slog.Error("verification email delivery failed", "error", err, "user_id", user.ID)
		return apperror.ErrEmailDelivery
	}
	return nil
}

// openSession issues a token pair and persists it as a live session.
func (s *AuthService) openSession(ctx context.Context, payload token.Payload) (token.Pair, error) {
	pair, err := s.codec.IssuePair(payload)
	if err != nil {
		return token.Pair{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	session := &model.Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		UserID:       payload.UserID,
	}
	err = s.sessions.Create(ctx, session)
	if err != nil {
		return token.Pair{}, fmt.Errorf("failed to persist session: %w", err)
	}

	return pair, nil
}

func (s *AuthService) issueActionToken(ctx context.Context, user *model.User, kind token.Kind, modelKind string) (string, error) {
	actionToken, err := s.codec.IssueAction(payloadFor(user), kind)
	if err != nil {
		return "", fmt.Errorf("failed to issue action token: %w", err)
	}

	err = s.actionTokens.Create(ctx, &model.ActionToken{
		Token:  actionToken,
		Kind:   modelKind,
		UserID: user.ID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to persist action token: %w", err)
	}

	return actionToken, nil
}

// actionTokenConsumableOrErr re-checks that the presented token is still
// persisted. The middleware already did, but the row may have been consumed
// by a concurrent request between the check and this call.
func (s *AuthService) actionTokenConsumableOrErr(ctx context.Context, tokenString string) error {
	_, err := s.actionTokens.ByToken(ctx, tokenString)
	if err != nil {
		if errors.Is(err, repository.ErrActionTokenNotFound) {
			return apperror.ErrInvalidToken
		}
		return fmt.Errorf("failed to check action token: %w", err)
	}
	return nil
}

// passwordUniqueOrErr enforces the reuse policy: the candidate must match
// neither the current hash nor any archived one. Returns the loaded user so
// callers skip a second lookup.
func (s *AuthService) passwordUniqueOrErr(ctx context.Context, newPassword, userID string) (*model.User, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if s.hasher.Compare(newPassword, user.PasswordHash) {
		return nil, apperror.ErrPasswordReused
	}

	history, err := s.oldPasswords.ByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load password history: %w", err)
	}
	for _, old := range history {
		if s.hasher.Compare(newPassword, old.PasswordHash) {
			return nil, apperror.ErrPasswordReused
		}
	}

	return user, nil
}

// rotatePassword archives the current hash and overwrites it with the new
// one. The two writes are not transactional; a crash in between leaves an
// extra history row, never a lost password.
func (s *AuthService) rotatePassword(ctx context.Context, user *model.User, newPassword string) error {
	err := s.oldPasswords.Create(ctx, &model.OldPassword{
		PasswordHash: user.PasswordHash,
		UserID:       user.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to archive password: %w", err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.users.SetPassword(ctx, user.ID, hash)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	return nil
}

func (s *AuthService) sendLogoutEmail(ctx context.Context, userID string) error {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	err = s.email.Send(ctx, EmailLogout, user.Email, EmailContext{Name: user.Name})
	if err != nil {
		slog.Error("logout email delivery failed", "error", err, "user_id", user.ID)
		return apperror.ErrEmailDelivery
	}
	return nil
}

func payloadFor(user *model.User) token.Payload {
	return token.Payload{
		UserID:     user.ID,
		Name:       user.Name,
		IsVerified: user.IsVerified,
	}
}

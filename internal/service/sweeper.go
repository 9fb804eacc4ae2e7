package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/postlane/postlane/internal/model"
	"github.com/postlane/postlane/internal/repository"
)

// SweeperConfig sets the retention windows the background sweeps enforce.
type SweeperConfig struct {
	Interval          time.Duration
	RefreshExpiry     time.Duration
	ForgotExpiry      time.Duration
	VerifyEmailExpiry time.Duration
	RestoreExpiry     time.Duration
	OldPasswordExpiry time.Duration
	OldVisitAfter     time.Duration
}

// Sweeper periodically prunes rows whose embedded JWTs have expired (sessions
// and action tokens), drops password history past its retention window, and
// emails users who have not been seen in a while. Each sweep job is isolated:
// one failing does not stop the others.
type Sweeper struct {
	cfg          SweeperConfig
	sessions     repository.SessionRepository
	actionTokens repository.ActionTokenRepository
	oldPasswords repository.OldPasswordRepository
	users        repository.UserRepository
	email        EmailSender
	now          func() time.Time
}

func NewSweeper(
	cfg SweeperConfig,
	sessions repository.SessionRepository,
	actionTokens repository.ActionTokenRepository,
	oldPasswords repository.OldPasswordRepository,
	users repository.UserRepository,
	email EmailSender,
) *Sweeper {
	return &Sweeper{
		cfg:          cfg,
		sessions:     sessions,
		actionTokens: actionTokens,
		oldPasswords: oldPasswords,
		users:        users,
		email:        email,
		now:          time.Now,
	}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// Call it in its own goroutine.
func (s *Sweeper) Run(ctx context.Context) {
	slog.Info("sweeper started", "interval", s.cfg.Interval)

	s.Sweep(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs all jobs once.
func (s *Sweeper) Sweep(ctx context.Context) {
	s.sweepSessions(ctx)
	s.sweepActionTokens(ctx)
	s.sweepOldPasswords(ctx)
	s.sweepOldVisits(ctx)
}

func (s *Sweeper) sweepSessions(ctx context.Context) {
	deleted, err := s.sessions.DeleteOlderThan(ctx, s.now().Add(-s.cfg.RefreshExpiry))
	if err != nil {
		slog.Error("session sweep failed", "error", err)
		return
	}
	slog.Info("session sweep done", "deleted", deleted)
}

func (s *Sweeper) sweepActionTokens(ctx context.Context) {
	kinds := []struct {
		kind string
		ttl  time.Duration
	}{
		{model.ActionKindForgotPassword, s.cfg.ForgotExpiry},
		{model.ActionKindVerifyEmail, s.cfg.VerifyEmailExpiry},
		{model.ActionKindAccountRestore, s.cfg.RestoreExpiry},
	}

	var deleted int64
	for _, k := range kinds {
		n, err := s.actionTokens.DeleteOlderThan(ctx, k.kind, s.now().Add(-k.ttl))
		if err != nil {
			slog.Error("action token sweep failed", "kind", k.kind, "error", err)
			continue
		}
		deleted += n
	}
	slog.Info("action token sweep done", "deleted", deleted)
}

func (s *Sweeper) sweepOldPasswords(ctx context.Context) {
	deleted, err := s.oldPasswords.DeleteOlderThan(ctx, s.now().Add(-s.cfg.OldPasswordExpiry))
	if err != nil {
		slog.Error("old password sweep failed", "error", err)
		return
	}
	slog.Info("old password sweep done", "deleted", deleted)
}

// sweepOldVisits reminds users whose accounts have gone quiet. Delivery
// failures are logged per user and never abort the batch.
func (s *Sweeper) sweepOldVisits(ctx context.Context) {
	users, err := s.users.InactiveSince(ctx, s.now().Add(-s.cfg.OldVisitAfter))
	if err != nil {
		slog.Error("old visit sweep failed", "error", err)
		return
	}

	var sent int
	for _, user := range users {
		err = s.email.Send(ctx, EmailOldVisit, user.Email, EmailContext{Name: user.Name})
		if err != nil {
			slog.Error("old visit email delivery failed", "error", err, "user_id", user.ID)
			continue
		}
		sent++
	}
	slog.Info("old visit sweep done", "reminded", sent)
}

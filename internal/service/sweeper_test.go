package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postlane/postlane/internal/model"
)

func newSweeperFixture() (*Sweeper, *memSessionRepo, *memActionTokenRepo, *memOldPasswordRepo, *memUserRepo, *fakeEmail) {
	sessions := newMemSessionRepo()
	actionTokens := newMemActionTokenRepo()
	oldPasswords := newMemOldPasswordRepo()
	users := newMemUserRepo()
	email := &fakeEmail{}

	cfg := SweeperConfig{
		Interval:          time.Hour,
		RefreshExpiry:     7 * 24 * time.Hour,
		ForgotExpiry:      time.Hour,
		VerifyEmailExpiry: 24 * time.Hour,
		RestoreExpiry:     time.Hour,
		OldPasswordExpiry: 90 * 24 * time.Hour,
		OldVisitAfter:     30 * 24 * time.Hour,
	}
	return NewSweeper(cfg, sessions, actionTokens, oldPasswords, users, email), sessions, actionTokens, oldPasswords, users, email
}

func TestSweepExpiredSessions(t *testing.T) {
	sweeper, sessions, _, _, _, _ := newSweeperFixture()
	ctx := context.Background()

	require.NoError(t, sessions.Create(ctx, &model.Session{AccessToken: "stale", RefreshToken: "stale-r", UserID: "u1"}))
	sessions.sessions[0].CreatedAt = time.Now().Add(-8 * 24 * time.Hour)
	require.NoError(t, sessions.Create(ctx, &model.Session{AccessToken: "live", RefreshToken: "live-r", UserID: "u1"}))

	sweeper.Sweep(ctx)

	require.Len(t, sessions.sessions, 1)
	assert.Equal(t, "live", sessions.sessions[0].AccessToken)
}

func TestSweepExpiredActionTokensPerKind(t *testing.T) {
	sweeper, _, actionTokens, _, _, _ := newSweeperFixture()
	ctx := context.Background()

	// Two hours old: past the forgot-password TTL, within the verify TTL.
	require.NoError(t, actionTokens.Create(ctx, &model.ActionToken{Token: "f", Kind: model.ActionKindForgotPassword, UserID: "u1"}))
	require.NoError(t, actionTokens.Create(ctx, &model.ActionToken{Token: "v", Kind: model.ActionKindVerifyEmail, UserID: "u1"}))
	for _, tok := range actionTokens.tokens {
		tok.CreatedAt = time.Now().Add(-2 * time.Hour)
	}

	sweeper.Sweep(ctx)

	require.Len(t, actionTokens.tokens, 1)
	assert.Equal(t, model.ActionKindVerifyEmail, actionTokens.tokens[0].Kind)
}

func TestSweepOldPasswords(t *testing.T) {
	sweeper, _, _, oldPasswords, _, _ := newSweeperFixture()
	ctx := context.Background()

	require.NoError(t, oldPasswords.Create(ctx, &model.OldPassword{PasswordHash: "stale", UserID: "u1"}))
	oldPasswords.rows[0].CreatedAt = time.Now().Add(-91 * 24 * time.Hour)
	require.NoError(t, oldPasswords.Create(ctx, &model.OldPassword{PasswordHash: "recent", UserID: "u1"}))

	sweeper.Sweep(ctx)

	require.Len(t, oldPasswords.rows, 1)
	assert.Equal(t, "recent", oldPasswords.rows[0].PasswordHash)
}

func TestSweepOldVisitReminders(t *testing.T) {
	sweeper, _, _, _, users, email := newSweeperFixture()
	ctx := context.Background()

	idle := &model.User{Name: "Alice", Email: "alice@example.com", Age: 30}
	require.NoError(t, users.Create(ctx, idle))
	users.users[idle.ID].UpdatedAt = time.Now().Add(-31 * 24 * time.Hour)

	active := &model.User{Name: "Bob", Email: "bob@example.com", Age: 40}
	require.NoError(t, users.Create(ctx, active))

	sweeper.Sweep(ctx)

	require.Len(t, email.sent, 1)
	assert.Equal(t, EmailOldVisit, email.sent[0].Kind)
	assert.Equal(t, "alice@example.com", email.sent[0].To)
}

func TestSweepRunStopsOnCancel(t *testing.T) {
	sweeper, _, _, _, _, _ := newSweeperFixture()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}

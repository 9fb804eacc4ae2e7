package ctxkeys

import (
	"context"

	"github.com/postlane/postlane/internal/token"
)

// contextKey is a type for context keys to avoid collisions
type contextKey string

const (
	PayloadKey      contextKey = "token_payload"
	AccessTokenKey  contextKey = "access_token"
	RefreshTokenKey contextKey = "refresh_token"
	ActionTokenKey  contextKey = "action_token"
)

func Payload(ctx context.Context) (token.Payload, bool) {
	payload, ok := ctx.Value(PayloadKey).(token.Payload)
	return payload, ok
}

func WithPayload(ctx context.Context, payload token.Payload) context.Context {
	return context.WithValue(ctx, PayloadKey, payload)
}

func AccessToken(ctx context.Context) string {
	t, _ := ctx.Value(AccessTokenKey).(string)
	return t
}

func WithAccessToken(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, AccessTokenKey, t)
}

func RefreshToken(ctx context.Context) string {
	t, _ := ctx.Value(RefreshTokenKey).(string)
	return t
}

func WithRefreshToken(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, RefreshTokenKey, t)
}

func ActionToken(ctx context.Context) string {
	t, _ := ctx.Value(ActionTokenKey).(string)
	return t
}

func WithActionToken(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, ActionTokenKey, t)
}

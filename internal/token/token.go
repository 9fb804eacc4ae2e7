// Package token signs and verifies the JWTs of the credential lifecycle:
// session pairs (access/refresh) and single-use action tokens (verify-email,
// forgot-password, account-restore). Each kind has its own secret and expiry,
// resolved through a map built once at construction.
package token

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Kind string

const (
	KindAccess         Kind = "access"
	KindRefresh        Kind = "refresh"
	KindForgotPassword Kind = "forgot_password"
	KindVerifyEmail    Kind = "verify_email"
	KindAccountRestore Kind = "account_restore"
)

var (
	ErrInvalidKind  = errors.New("invalid token kind")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Payload is embedded verbatim in every token and recovered on verify.
type Payload struct {
	UserID     string
	Name       string
	IsVerified bool
}

type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"userId"`
	Name       string `json:"name"`
	IsVerified bool   `json:"isVerified"`
}

// KindConfig holds the signing secret and lifetime of one token kind.
type KindConfig struct {
	Secret []byte
	TTL    time.Duration
}

type Codec struct {
	kinds map[Kind]KindConfig
	now   func() time.Time
}

func NewCodec(kinds map[Kind]KindConfig) *Codec {
	return &Codec{kinds: kinds, now: time.Now}
}

// IssuePair signs payload under the access and refresh configs.
func (c *Codec) IssuePair(payload Payload) (Pair, error) {
	accessToken, err := c.sign(payload, KindAccess)
	if err != nil {
		return Pair{}, err
	}
	refreshToken, err := c.sign(payload, KindRefresh)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// IssueAction signs payload under one of the three action kinds.
func (c *Codec) IssueAction(payload Payload, kind Kind) (string, error) {
	switch kind {
	case KindForgotPassword, KindVerifyEmail, KindAccountRestore:
		return c.sign(payload, kind)
	default:
		return "", ErrInvalidKind
	}
}

// Verify checks signature, expiry and kind and recovers the payload. Every
// failure surfaces as ErrInvalidToken; the underlying cause is only logged so
// signature/expiry details never reach clients.
func (c *Codec) Verify(tokenString string, kind Kind) (Payload, error) {
	cfg, ok := c.kinds[kind]
	if !ok {
		return Payload{}, ErrInvalidToken
	}

	cl := &claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, cl, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return cfg.Secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		slog.Debug("token verification failed", "kind", kind, "error", err)
		return Payload{}, ErrInvalidToken
	}
	if !parsed.Valid {
		return Payload{}, ErrInvalidToken
	}

	return Payload{UserID: cl.UserID, Name: cl.Name, IsVerified: cl.IsVerified}, nil
}

func (c *Codec) sign(payload Payload, kind Kind) (string, error) {
	cfg, ok := c.kinds[kind]
	if !ok {
		return "", ErrInvalidKind
	}

	// The jti keeps tokens unique even when two are signed for the same
	// payload within the same second.
	now := c.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.TTL)),
		},
		UserID:     payload.UserID,
		Name:       payload.Name,
		IsVerified: payload.IsVerified,
	})

	return t.SignedString(cfg.Secret)
}

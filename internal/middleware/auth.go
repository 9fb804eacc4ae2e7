package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/postlane/postlane/internal/apperror"
	"github.com/postlane/postlane/internal/ctxkeys"
	"github.com/postlane/postlane/internal/repository"
	"github.com/postlane/postlane/internal/token"
)

// Auth guards routes with the two-step token check: the JWT must verify for
// the expected kind AND its persisted row must still exist. A valid signature
// on a revoked token is worthless.
type Auth struct {
	codec        *token.Codec
	sessions     repository.SessionRepository
	actionTokens repository.ActionTokenRepository
}

func NewAuth(codec *token.Codec, sessions repository.SessionRepository, actionTokens repository.ActionTokenRepository) *Auth {
	return &Auth{codec: codec, sessions: sessions, actionTokens: actionTokens}
}

// CheckAccessToken authenticates the request with a bearer access token and
// stores the payload and raw token in the context.
func (a *Auth) CheckAccessToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, apperror.ErrUnauthenticated)
			return
		}

		payload, err := a.codec.Verify(raw, token.KindAccess)
		if err != nil {
			writeError(w, apperror.ErrInvalidToken)
			return
		}

		_, err = a.sessions.ByAccessToken(r.Context(), raw)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				writeError(w, apperror.ErrInvalidToken)
				return
			}
			writeError(w, err)
			return
		}

		ctx := ctxkeys.WithPayload(r.Context(), payload)
		ctx = ctxkeys.WithAccessToken(ctx, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CheckRefreshToken is the same gate for the refresh endpoint.
func (a *Auth) CheckRefreshToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, apperror.ErrUnauthenticated)
			return
		}

		payload, err := a.codec.Verify(raw, token.KindRefresh)
		if err != nil {
			writeError(w, apperror.ErrInvalidToken)
			return
		}

		_, err = a.sessions.ByRefreshToken(r.Context(), raw)
		if err != nil {
			if errors.Is(err, repository.ErrSessionNotFound) {
				writeError(w, apperror.ErrInvalidToken)
				return
			}
			writeError(w, err)
			return
		}

		ctx := ctxkeys.WithPayload(r.Context(), payload)
		ctx = ctxkeys.WithRefreshToken(ctx, raw)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CheckActionToken gates the single-use flows. The token travels in the JSON
// body as {"token": ...}; the body is restored so the handler can read the
// rest of it. The persisted row must match the expected kind too, so a
// verify-email token can never drive a password reset even if kinds shared a
// secret.
func (a *Auth) CheckActionToken(kind token.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := actionTokenFromBody(r)
			if !ok {
				writeError(w, apperror.ErrUnauthenticated)
				return
			}

			payload, err := a.codec.Verify(raw, kind)
			if err != nil {
				writeError(w, apperror.ErrInvalidToken)
				return
			}

			row, err := a.actionTokens.ByToken(r.Context(), raw)
			if err != nil {
				if errors.Is(err, repository.ErrActionTokenNotFound) {
					writeError(w, apperror.ErrInvalidToken)
					return
				}
				writeError(w, err)
				return
			}
			if row.Kind != string(kind) {
				writeError(w, apperror.ErrInvalidToken)
				return
			}

			ctx := ctxkeys.WithPayload(r.Context(), payload)
			ctx = ctxkeys.WithActionToken(ctx, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireVerified blocks unverified accounts. Runs after CheckAccessToken.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, ok := ctxkeys.Payload(r.Context())
		if !ok {
			writeError(w, apperror.ErrUnauthenticated)
			return
		}
		if !payload.IsVerified {
			writeError(w, apperror.ErrNotVerified)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// actionTokenFromBody pulls "token" out of the JSON body and rewinds the body
// for the next handler.
func actionTokenFromBody(r *http.Request) (string, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return "", false
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var body struct {
		Token string `json:"token"`
	}
	err = json.Unmarshal(raw, &body)
	if err != nil || body.Token == "" {
		return "", false
	}
	return body.Token, true
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return "", false
	}
	return raw, true
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperror.Status(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"message": apperror.Message(err)})
}

package handler

import (
	"net/http"

	"github.com/postlane/postlane/internal/apperror"
	"github.com/postlane/postlane/internal/ctxkeys"
	"github.com/postlane/postlane/internal/model"
	"github.com/postlane/postlane/internal/service"
	"github.com/postlane/postlane/internal/token"
	"github.com/postlane/postlane/internal/validation"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Password string `json:"password"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type setPasswordRequest struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type authResponse struct {
	User   *model.User `json:"user"`
	Tokens token.Pair  `json:"tokens"`
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	for _, err := range []error{
		validation.ValidateName(req.Name, true),
		validation.ValidateAge(req.Age, true),
		validation.ValidateEmail(req.Email),
		validation.ValidatePassword(req.Password),
	} {
		if err != nil {
			respondError(w, err)
			return
		}
	}

	user, pair, err := h.auth.SignUp(r.Context(), service.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Age:      req.Age,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{User: user, Tokens: pair})
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	user, pair, err := h.auth.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{User: user, Tokens: pair})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), payload, ctxkeys.RefreshToken(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, pair)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	err := h.auth.Logout(r.Context(), ctxkeys.AccessToken(r.Context()), payload)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	err := h.auth.LogoutAll(r.Context(), payload)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ForgotPassword answers 201 whether or not the email is registered.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	err = validation.ValidateEmail(req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	err = h.auth.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *AuthHandler) ForgotPasswordSet(w http.ResponseWriter, r *http.Request) {
	payload, req, err := h.setPasswordRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	err = h.auth.ForgotPasswordSet(r.Context(), req.Password, ctxkeys.ActionToken(r.Context()), payload)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	err := h.auth.Verify(r.Context(), payload)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	var req changePasswordRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	err = validation.ValidatePassword(req.NewPassword)
	if err != nil {
		respondError(w, err)
		return
	}

	err = h.auth.ChangePassword(r.Context(), req.OldPassword, req.NewPassword, payload)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) AccountRestore(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	err = validation.ValidateEmail(req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	err = h.auth.AccountRestore(r.Context(), req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *AuthHandler) AccountRestoreSet(w http.ResponseWriter, r *http.Request) {
	payload, req, err := h.setPasswordRequest(r)
	if err != nil {
		respondError(w, err)
		return
	}

	err = h.auth.AccountRestoreSet(r.Context(), req.Password, ctxkeys.ActionToken(r.Context()), payload)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	err := h.auth.ResendVerifyEmail(r.Context(), payload)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// setPasswordRequest is the shared decode+validate step of the two
// token-driven set-password endpoints.
func (h *AuthHandler) setPasswordRequest(r *http.Request) (token.Payload, setPasswordRequest, error) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		return token.Payload{}, setPasswordRequest{}, apperror.ErrUnauthenticated
	}

	var req setPasswordRequest
	err := decodeJSON(r, &req)
	if err != nil {
		return token.Payload{}, setPasswordRequest{}, err
	}

	err = validation.ValidatePassword(req.Password)
	if err != nil {
		return token.Payload{}, setPasswordRequest{}, err
	}

	return payload, req, nil
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/postlane/postlane/internal/apperror"
	"github.com/postlane/postlane/internal/ctxkeys"
	"github.com/postlane/postlane/internal/model"
	"github.com/postlane/postlane/internal/service"
	"github.com/postlane/postlane/internal/validation"
)

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type userListResponse struct {
	Data  []model.User `json:"data"`
	Total int64        `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}

type updateProfileRequest struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	query := model.UserListQuery{
		Page:    queryInt(r, "page"),
		Limit:   queryInt(r, "limit"),
		Name:    r.URL.Query().Get("name"),
		Age:     queryInt(r, "age"),
		MinAge:  queryInt(r, "minAge"),
		MaxAge:  queryInt(r, "maxAge"),
		OrderBy: r.URL.Query().Get("orderBy"),
		Desc:    r.URL.Query().Get("order") == "desc",
	}

	users, total, err := h.users.List(r.Context(), query)
	if err != nil {
		respondError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}

	respondJSON(w, http.StatusOK, userListResponse{
		Data:  users,
		Total: total,
		Page:  max(query.Page, 1),
		Limit: query.Limit,
	})
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	user, err := h.users.ByID(r.Context(), payload.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	var req updateProfileRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	for _, err := range []error{
		validation.ValidateName(req.Name, false),
		validation.ValidateAge(req.Age, false),
	} {
		if err != nil {
			respondError(w, err)
			return
		}
	}

	user, err := h.users.UpdateProfile(r.Context(), payload.UserID, service.UpdateProfileInput{
		Name: req.Name,
		Age:  req.Age,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	err := h.users.Delete(r.Context(), payload.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.ByID(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

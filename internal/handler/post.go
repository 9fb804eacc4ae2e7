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

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

type postRequest struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

type postListResponse struct {
	Data   []model.Post `json:"data"`
	UserID string       `json:"userId"`
	Total  int64        `json:"total"`
	Page   int          `json:"page"`
	Limit  int          `json:"limit"`
}

func (h *PostHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	query := model.PostListQuery{
		Page:    queryInt(r, "page"),
		Limit:   queryInt(r, "limit"),
		Title:   r.URL.Query().Get("title"),
		OrderBy: r.URL.Query().Get("orderBy"),
		Desc:    r.URL.Query().Get("order") == "desc",
	}

	posts, total, err := h.posts.ListByUser(r.Context(), userID, query)
	if err != nil {
		respondError(w, err)
		return
	}
	if posts == nil {
		posts = []model.Post{}
	}

	respondJSON(w, http.StatusOK, postListResponse{
		Data:   posts,
		UserID: userID,
		Total:  total,
		Page:   max(query.Page, 1),
		Limit:  query.Limit,
	})
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	var req postRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	for _, err := range []error{
		validation.ValidatePostTitle(req.Title, true),
		validation.ValidatePostText(req.Text, true),
	} {
		if err != nil {
			respondError(w, err)
			return
		}
	}

	post, err := h.posts.Create(r.Context(), payload.UserID, service.PostInput{
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	var req postRequest
	err := decodeJSON(r, &req)
	if err != nil {
		respondError(w, err)
		return
	}

	for _, err := range []error{
		validation.ValidatePostTitle(req.Title, false),
		validation.ValidatePostText(req.Text, false),
	} {
		if err != nil {
			respondError(w, err)
			return
		}
	}

	post, err := h.posts.Update(r.Context(), chi.URLParam(r, "postId"), payload.UserID, service.PostInput{
		Title: req.Title,
		Text:  req.Text,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	payload, ok := ctxkeys.Payload(r.Context())
	if !ok {
		respondError(w, apperror.ErrUnauthenticated)
		return
	}

	err := h.posts.Delete(r.Context(), chi.URLParam(r, "postId"), payload.UserID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olzhas-sembi/dating-backend/internal/domain/enums"
	"github.com/olzhas-sembi/dating-backend/internal/domain/model"
	identitysvc "github.com/olzhas-sembi/dating-backend/internal/services/identity"
	postssvc "github.com/olzhas-sembi/dating-backend/internal/services/posts"
	"github.com/olzhas-sembi/dating-backend/internal/transport/http/dto"
	httperrors "github.com/olzhas-sembi/dating-backend/internal/transport/http/errors"
)

type PostsHandler struct {
	service *postssvc.Service
}

func NewPostsHandler(service *postssvc.Service) *PostsHandler {
	return &PostsHandler{service: service}
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}

	var req dto.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	post, err := h.service.Create(r.Context(), caller.UserID, postssvc.CreateInput{
		Content:    req.Content,
		Images:     req.Images,
		Visibility: enums.PostVisibility(req.Visibility),
	})
	if err != nil {
		h.writePostError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, toPostResponse(post))
}

func (h *PostsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if _, ok := identitysvc.FromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}

	limit, offset := 0, 0
	for _, field := range []struct {
		name   string
		target *int
	}{
		{name: "limit", target: &limit},
		{name: "offset", target: &offset},
	} {
		raw := strings.TrimSpace(r.URL.Query().Get(field.name))
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			writeBadRequest(w, "VALIDATION_ERROR", field.name+" must be a non-negative integer")
			return
		}
		*field.target = value
	}

	page, err := h.service.Feed(r.Context(), limit, offset)
	if err != nil {
		h.writePostError(w, err)
		return
	}

	posts := make([]dto.PostResponse, 0, len(page))
	for _, post := range page {
		posts = append(posts, toPostResponse(post))
	}

	httperrors.Write(w, http.StatusOK, dto.PostFeedResponse{Posts: posts})
}

func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || postID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid post id")
		return
	}

	view, err := h.service.Get(r.Context(), caller.UserID, postID)
	if err != nil {
		h.writePostError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PostDetailResponse{
		PostResponse: toPostResponse(view.Post),
		LikedByMe:    view.Liked,
	})
}

func (h *PostsHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || postID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid post id")
		return
	}

	result, err := h.service.ToggleLike(r.Context(), caller.UserID, postID)
	if err != nil {
		h.writePostError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PostLikeResponse{
		Liked:      result.Liked,
		LikesCount: result.LikesCount,
	})
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := identitysvc.FromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "POST_SERVICE_UNAVAILABLE", "post service is unavailable")
		return
	}

	postID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || postID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid post id")
		return
	}

	if err := h.service.Delete(r.Context(), caller.UserID, postID); err != nil {
		h.writePostError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, struct {
		OK bool `json:"ok"`
	}{OK: true})
}

func (h *PostsHandler) writePostError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid post request")
	case errors.Is(err, postssvc.ErrNotFound):
		writeNotFound(w, "POST_NOT_FOUND", "post not found")
	case errors.Is(err, postssvc.ErrForbidden):
		writeForbidden(w, "FORBIDDEN", "only the author may delete a post")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process post request")
	}
}

func toPostResponse(post model.Post) dto.PostResponse {
	images := post.Images
	if images == nil {
		images = []string{}
	}

	return dto.PostResponse{
		ID:         post.ID,
		AuthorID:   post.AuthorID,
		Content:    post.Content,
		Images:     images,
		LikesCount: post.LikesCount,
		Visibility: string(post.Visibility),
		CreatedAt:  post.CreatedAt,
	}
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
	postssvc "github.com/ThisIsMahim/Upp-campus/internal/services/posts"
	"github.com/ThisIsMahim/Upp-campus/internal/transport/http/dto"
	httperrors "github.com/ThisIsMahim/Upp-campus/internal/transport/http/errors"
)

type PostsHandler struct {
	service *postssvc.Service
}

func NewPostsHandler(service *postssvc.Service) *PostsHandler {
	return &PostsHandler{service: service}
}

func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	var req dto.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	post, err := h.service.Create(r.Context(), identity.UserID, req.Content, req.ImageURL)
	if err != nil {
		handlePostsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, postResponse(post))
}

func (h *PostsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	limit := queryInt(r, "limit")
	offset := queryInt(r, "offset")

	feed, err := h.service.Feed(r.Context(), identity.UserID, limit, offset)
	if err != nil {
		handlePostsError(w, err)
		return
	}

	posts := make([]dto.PostResponse, 0, len(feed))
	for _, item := range feed {
		posts = append(posts, feedPostResponse(item))
	}

	httperrors.Write(w, http.StatusOK, dto.FeedResponse{
		Posts:  posts,
		Limit:  limit,
		Offset: offset,
	})
}

func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "postID"), identity.UserID); err != nil {
		handlePostsError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *PostsHandler) Like(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	postID := chi.URLParam(r, "postID")
	count, err := h.service.Like(r.Context(), postID, identity.UserID)
	if err != nil {
		handlePostsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LikeResponse{PostID: postID, LikeCount: count})
}

func (h *PostsHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	postID := chi.URLParam(r, "postID")
	count, err := h.service.Unlike(r.Context(), postID, identity.UserID)
	if err != nil {
		handlePostsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LikeResponse{PostID: postID, LikeCount: count})
}

func (h *PostsHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	var req dto.CreateCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	comment, err := h.service.AddComment(r.Context(), chi.URLParam(r, "postID"), identity.UserID, req.Content)
	if err != nil {
		handlePostsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, commentResponse(comment))
}

func (h *PostsHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	comments, err := h.service.ListComments(r.Context(), chi.URLParam(r, "postID"))
	if err != nil {
		handlePostsError(w, err)
		return
	}

	out := make([]dto.CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, commentResponse(comment))
	}

	httperrors.Write(w, http.StatusOK, dto.CommentsResponse{Comments: out})
}

func (h *PostsHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "POSTS_SERVICE_UNAVAILABLE", "posts service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	if err := h.service.DeleteComment(r.Context(), chi.URLParam(r, "commentID"), identity.UserID); err != nil {
		handlePostsError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func postResponse(post model.Post) dto.PostResponse {
	return dto.PostResponse{
		ID:        post.ID,
		UserID:    post.UserID,
		CampusID:  post.CampusID,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		CreatedAt: post.CreatedAt,
	}
}

func feedPostResponse(item model.FeedPost) dto.PostResponse {
	res := postResponse(item.Post)
	res.AuthorUsername = item.AuthorUsername
	res.AuthorAvatarURL = item.AuthorAvatarURL
	res.LikeCount = item.LikeCount
	res.CommentCount = item.CommentCount
	res.LikedByViewer = item.LikedByViewer
	return res
}

func commentResponse(comment model.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:             comment.ID,
		PostID:         comment.PostID,
		UserID:         comment.UserID,
		Content:        comment.Content,
		AuthorUsername: comment.AuthorUsername,
		CreatedAt:      comment.CreatedAt,
	}
}

func handlePostsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, postssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "post validation failed")
	case errors.Is(err, postssvc.ErrNoCampus):
		writeBadRequest(w, "NO_CAMPUS", "profile has no campus")
	case errors.Is(err, postssvc.ErrPostNotFound):
		writeNotFound(w, "POST_NOT_FOUND", "post not found")
	case errors.Is(err, postssvc.ErrCommentNotFound):
		writeNotFound(w, "COMMENT_NOT_FOUND", "comment not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func queryInt(r *http.Request, name string) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}

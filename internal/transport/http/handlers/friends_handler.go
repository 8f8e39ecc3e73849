package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
	friendssvc "github.com/ThisIsMahim/Upp-campus/internal/services/friends"
	"github.com/ThisIsMahim/Upp-campus/internal/transport/http/dto"
	httperrors "github.com/ThisIsMahim/Upp-campus/internal/transport/http/errors"
)

type FriendsHandler struct {
	service *friendssvc.Service
}

func NewFriendsHandler(service *friendssvc.Service) *FriendsHandler {
	return &FriendsHandler{service: service}
}

func (h *FriendsHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FRIENDS_SERVICE_UNAVAILABLE", "friends service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	var req dto.FriendRequestCreate
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.service.SendRequest(r.Context(), identity.UserID, req.ReceiverID)
	if err != nil {
		handleFriendsError(w, err)
		return
	}

	res := friendRequestResponse(result.Request)
	res.AutoAccepted = result.AutoAccepted
	httperrors.Write(w, http.StatusCreated, res)
}

func (h *FriendsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FRIENDS_SERVICE_UNAVAILABLE", "friends service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	req, err := h.service.Accept(r.Context(), chi.URLParam(r, "requestID"), identity.UserID)
	if err != nil {
		handleFriendsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, friendRequestResponse(req))
}

func (h *FriendsHandler) Decline(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FRIENDS_SERVICE_UNAVAILABLE", "friends service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	if err := h.service.Decline(r.Context(), chi.URLParam(r, "requestID"), identity.UserID); err != nil {
		handleFriendsError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FriendsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FRIENDS_SERVICE_UNAVAILABLE", "friends service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	friends, err := h.service.ListFriends(r.Context(), identity.UserID)
	if err != nil {
		handleFriendsError(w, err)
		return
	}

	out := make([]dto.FriendResponse, 0, len(friends))
	for _, friend := range friends {
		out = append(out, dto.FriendResponse{
			UserID:    friend.UserID,
			Username:  friend.Username,
			AvatarURL: friend.AvatarURL,
			CampusID:  friend.CampusID,
			Since:     friend.Since,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.FriendsResponse{Friends: out})
}

func (h *FriendsHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FRIENDS_SERVICE_UNAVAILABLE", "friends service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	incoming := r.URL.Query().Get("direction") != "outgoing"
	requests, err := h.service.ListPending(r.Context(), identity.UserID, incoming)
	if err != nil {
		handleFriendsError(w, err)
		return
	}

	out := make([]dto.FriendRequestResponse, 0, len(requests))
	for _, req := range requests {
		out = append(out, friendRequestResponse(req))
	}

	httperrors.Write(w, http.StatusOK, dto.FriendRequestsResponse{Requests: out})
}

func (h *FriendsHandler) Unfriend(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FRIENDS_SERVICE_UNAVAILABLE", "friends service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	if err := h.service.Unfriend(r.Context(), identity.UserID, chi.URLParam(r, "userID")); err != nil {
		handleFriendsError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func friendRequestResponse(req model.FriendRequest) dto.FriendRequestResponse {
	return dto.FriendRequestResponse{
		ID:         req.ID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Status:     string(req.Status),
		CreatedAt:  req.CreatedAt,
	}
}

func handleFriendsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, friendssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "friend request validation failed")
	case errors.Is(err, friendssvc.ErrSelfRequest):
		writeBadRequest(w, "SELF_REQUEST", "cannot friend yourself")
	case errors.Is(err, friendssvc.ErrUserNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, friendssvc.ErrRequestNotFound):
		writeNotFound(w, "REQUEST_NOT_FOUND", "friend request not found")
	case errors.Is(err, friendssvc.ErrAlreadyFriends):
		writeConflict(w, "ALREADY_FRIENDS", "users are already friends")
	case errors.Is(err, friendssvc.ErrDuplicate):
		writeConflict(w, "REQUEST_PENDING", "friend request already pending")
	case errors.Is(err, friendssvc.ErrNotReceiver):
		writeForbidden(w, "NOT_RECEIVER", "request belongs to another user")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

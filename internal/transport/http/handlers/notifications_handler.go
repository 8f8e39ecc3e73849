package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
	notifsvc "github.com/ThisIsMahim/Upp-campus/internal/services/notifications"
	"github.com/ThisIsMahim/Upp-campus/internal/transport/http/dto"
	httperrors "github.com/ThisIsMahim/Upp-campus/internal/transport/http/errors"
)

type NotificationsHandler struct {
	service *notifsvc.Service
}

func NewNotificationsHandler(service *notifsvc.Service) *NotificationsHandler {
	return &NotificationsHandler{service: service}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "NOTIFICATIONS_SERVICE_UNAVAILABLE", "notifications service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	notifications, err := h.service.List(r.Context(), identity.UserID, queryInt(r, "limit"))
	if err != nil {
		handleNotificationsError(w, err)
		return
	}

	unread, err := h.service.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		handleNotificationsError(w, err)
		return
	}

	out := make([]dto.NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, dto.NotificationResponse{
			ID:        n.ID,
			ActorID:   n.ActorID,
			Kind:      string(n.Kind),
			PostID:    n.PostID,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.NotificationsResponse{
		Notifications: out,
		UnreadCount:   unread,
	})
}

func (h *NotificationsHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "NOTIFICATIONS_SERVICE_UNAVAILABLE", "notifications service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	unread, err := h.service.UnreadCount(r.Context(), identity.UserID)
	if err != nil {
		handleNotificationsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UnreadCountResponse{UnreadCount: unread})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "NOTIFICATIONS_SERVICE_UNAVAILABLE", "notifications service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	var req dto.MarkReadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	marked, err := h.service.MarkRead(r.Context(), identity.UserID, req.IDs)
	if err != nil {
		handleNotificationsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{Marked: marked})
}

func handleNotificationsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, notifsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "notification request validation failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

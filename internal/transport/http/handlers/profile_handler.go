package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ThisIsMahim/Upp-campus/internal/domain/model"
	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
	profilessvc "github.com/ThisIsMahim/Upp-campus/internal/services/profiles"
	"github.com/ThisIsMahim/Upp-campus/internal/transport/http/dto"
	httperrors "github.com/ThisIsMahim/Upp-campus/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilessvc.Service
}

func NewProfileHandler(service *profilessvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILES_SERVICE_UNAVAILABLE", "profiles service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	profile, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile, true))
}

func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILES_SERVICE_UNAVAILABLE", "profiles service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	var req dto.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	profile, err := h.service.Update(r.Context(), identity.UserID, profilessvc.UpdateInput{
		Bio:       req.Bio,
		AvatarURL: req.AvatarURL,
		CampusID:  req.CampusID,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile, true))
}

// EnsureMe idempotently provisions the caller's profile row. Registration
// normally creates it; this covers sessions that arrived without one.
func (h *ProfileHandler) EnsureMe(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILES_SERVICE_UNAVAILABLE", "profiles service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	var req dto.EnsureProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	profile, err := h.service.Ensure(r.Context(), identity.UserID, profilessvc.EnsureInput{
		Username: req.Username,
		Email:    req.Email,
		Bio:      req.Bio,
		CampusID: req.CampusID,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile, true))
}

// ByUsername returns another user's public profile. The email stays private.
func (h *ProfileHandler) ByUsername(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILES_SERVICE_UNAVAILABLE", "profiles service is unavailable")
		return
	}

	username := chi.URLParam(r, "username")
	profile, err := h.service.GetByUsername(r.Context(), username)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile, false))
}

func profileResponse(profile model.Profile, includeEmail bool) dto.ProfileResponse {
	res := dto.ProfileResponse{
		UserID:    profile.UserID,
		Username:  profile.Username,
		Bio:       profile.Bio,
		AvatarURL: profile.AvatarURL,
		CampusID:  profile.CampusID,
		CreatedAt: profile.CreatedAt,
	}
	if includeEmail {
		res.Email = profile.Email
	}
	return res
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "profile validation failed")
	case errors.Is(err, profilessvc.ErrNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, profilessvc.ErrCampusNotFound):
		writeBadRequest(w, "CAMPUS_NOT_FOUND", "campus does not exist")
	case errors.Is(err, profilessvc.ErrUsernameTaken):
		writeConflict(w, "USERNAME_TAKEN", "username already taken")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
	campusessvc "github.com/ThisIsMahim/Upp-campus/internal/services/campuses"
	"github.com/ThisIsMahim/Upp-campus/internal/transport/http/dto"
	httperrors "github.com/ThisIsMahim/Upp-campus/internal/transport/http/errors"
)

type CampusesHandler struct {
	service *campusessvc.Service
}

func NewCampusesHandler(service *campusessvc.Service) *CampusesHandler {
	return &CampusesHandler{service: service}
}

func (h *CampusesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CAMPUSES_SERVICE_UNAVAILABLE", "campuses service is unavailable")
		return
	}

	campuses, err := h.service.List(r.Context())
	if err != nil {
		handleCampusesError(w, err)
		return
	}

	out := make([]dto.CampusResponse, 0, len(campuses))
	for _, campus := range campuses {
		out = append(out, dto.CampusResponse{
			ID:          campus.ID,
			Name:        campus.Name,
			ShortName:   campus.ShortName,
			Description: campus.Description,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.CampusesResponse{Campuses: out})
}

func (h *CampusesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CAMPUSES_SERVICE_UNAVAILABLE", "campuses service is unavailable")
		return
	}

	campus, err := h.service.Get(r.Context(), chi.URLParam(r, "campusID"))
	if err != nil {
		handleCampusesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CampusResponse{
		ID:          campus.ID,
		Name:        campus.Name,
		ShortName:   campus.ShortName,
		Description: campus.Description,
	})
}

func (h *CampusesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "CAMPUSES_SERVICE_UNAVAILABLE", "campuses service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	var req dto.CreateCampusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	campus, err := h.service.Create(r.Context(), identity.UserID, campusessvc.CreateInput{
		Name:        req.Name,
		ShortName:   req.ShortName,
		Description: req.Description,
	})
	if err != nil {
		handleCampusesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.CampusResponse{
		ID:          campus.ID,
		Name:        campus.Name,
		ShortName:   campus.ShortName,
		Description: campus.Description,
	})
}

func handleCampusesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, campusessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "campus request validation failed")
	case errors.Is(err, campusessvc.ErrNotFound):
		writeNotFound(w, "CAMPUS_NOT_FOUND", "campus not found")
	case errors.Is(err, campusessvc.ErrNameTaken):
		writeConflict(w, "CAMPUS_NAME_TAKEN", "campus name already exists")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

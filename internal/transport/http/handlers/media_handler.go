package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/ThisIsMahim/Upp-campus/internal/services/auth"
	mediasvc "github.com/ThisIsMahim/Upp-campus/internal/services/media"
	"github.com/ThisIsMahim/Upp-campus/internal/transport/http/dto"
	httperrors "github.com/ThisIsMahim/Upp-campus/internal/transport/http/errors"
)

const maxUploadMemory = 8 << 20

type MediaHandler struct {
	service *mediasvc.Service
}

func NewMediaHandler(service *mediasvc.Service) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEDIA_SERVICE_UNAVAILABLE", "media service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeSessionExpired(w)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "multipart form is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "file field is required")
		return
	}
	defer file.Close()

	url, err := h.service.UploadAvatar(
		r.Context(),
		identity.UserID,
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		handleMediaError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AvatarUploadResponse{AvatarURL: url})
}

func handleMediaError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mediasvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "upload validation failed")
	case errors.Is(err, mediasvc.ErrTooLarge):
		httperrors.Write(w, http.StatusRequestEntityTooLarge, httperrors.APIError{Code: "FILE_TOO_LARGE", Message: "file exceeds the size limit"})
	case errors.Is(err, mediasvc.ErrUnsupportedType):
		httperrors.Write(w, http.StatusUnsupportedMediaType, httperrors.APIError{Code: "UNSUPPORTED_TYPE", Message: "content type is not allowed"})
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

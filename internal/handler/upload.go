package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/storage"
)

// ImagePresigner issues direct-to-bucket upload URLs. *storage.S3 implements it.
type ImagePresigner interface {
	PresignProfileImage(ctx context.Context, userID, contentType string) (*storage.Upload, error)
}

type UploadHandler struct {
	presigner ImagePresigner
	logger    *slog.Logger
}

// NewUploadHandler accepts a nil presigner when storage is not configured;
// requests then get 503.
func NewUploadHandler(presigner ImagePresigner, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{presigner: presigner, logger: logger}
}

type uploadRequest struct {
	ContentType string `json:"contentType"`
}

// HandleProfileImage returns a presigned PUT URL. The client uploads the
// file itself and then saves publicUrl as about.profileImage.
//
// HTTP: POST /uploads/profile-image
func (h *UploadHandler) HandleProfileImage(w http.ResponseWriter, r *http.Request) {
	if h.presigner == nil {
		writeError(w, h.logger, apperror.Unavailable("profile image upload"))
		return
	}

	var in uploadRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	up, err := h.presigner.PresignProfileImage(r.Context(), userID, in.ContentType)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, up)
}

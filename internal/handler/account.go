package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/service"
)

// AccountHandler serves the signed-in owner's account settings.
type AccountHandler struct {
	auth         *service.AuthService
	ttl          time.Duration
	secureCookie bool
	logger       *slog.Logger
}

func NewAccountHandler(authService *service.AuthService, ttl time.Duration, secureCookie bool, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{auth: authService, ttl: ttl, secureCookie: secureCookie, logger: logger}
}

type passwordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type statusRequest struct {
	IsActive *bool `json:"isActive"`
}

type accountResponse struct {
	User *model.User `json:"user"`
}

// HandleGet returns the full account, email and status included.
//
// HTTP: GET /account
func (h *AccountHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{User: user})
}

// HandleUpdate changes name, username or email and reissues the session
// cookie so the new identity is carried from the next request on.
//
// HTTP: PUT /account
func (h *AccountHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.AccountPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	res, err := h.auth.UpdateAccount(r.Context(), userID, patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	auth.SetSessionCookie(w, res.Token, h.ttl, h.secureCookie)
	writeJSON(w, http.StatusOK, accountResponse{User: res.User})
}

// HTTP: PUT /account/password
func (h *AccountHandler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	var in passwordRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.auth.ChangePassword(r.Context(), userID, in.OldPassword, in.NewPassword); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// HandleStatus takes the public portfolio offline or back online.
//
// HTTP: PUT /account/status
func (h *AccountHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	var in statusRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if in.IsActive == nil {
		writeError(w, h.logger, apperror.ValidationFailed("isActive", "isActive is required"))
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	user, err := h.auth.SetActive(r.Context(), userID, *in.IsActive)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, accountResponse{User: user})
}

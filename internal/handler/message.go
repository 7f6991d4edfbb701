package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/service"
)

// MessageHandler serves the public contact form and the owner's inbox.
type MessageHandler struct {
	messages *service.MessageService
	logger   *slog.Logger
}

func NewMessageHandler(messages *service.MessageService, logger *slog.Logger) *MessageHandler {
	return &MessageHandler{messages: messages, logger: logger}
}

type readRequest struct {
	IsRead *bool `json:"isRead"`
}

// HandleSend accepts a contact-form submission from an anonymous visitor.
// The response only confirms receipt; the stored message is the owner's.
//
// HTTP: POST /messages
func (h *MessageHandler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var in model.ContactInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	m, err := h.messages.Send(r.Context(), in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": m.ID, "message": "message sent"})
}

// HTTP: GET /messages
func (h *MessageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	messages, err := h.messages.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

// HTTP: GET /messages/unread-count
func (h *MessageHandler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	n, err := h.messages.UnreadCount(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

// HTTP: GET /messages/{id}
func (h *MessageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	m, err := h.messages.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HTTP: PUT /messages/{id}   body: {"isRead": true}
func (h *MessageHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	var in readRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if in.IsRead == nil {
		writeError(w, h.logger, apperror.ValidationFailed("isRead", "isRead is required"))
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	m, err := h.messages.MarkRead(r.Context(), userID, r.PathValue("id"), *in.IsRead)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HTTP: DELETE /messages/{id}
func (h *MessageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.messages.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

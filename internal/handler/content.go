package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/service"
)

// ContentHandler serves the two read paths of PortfolioContent.
type ContentHandler struct {
	content *service.ContentService
	logger  *slog.Logger
}

func NewContentHandler(content *service.ContentService, logger *slog.Logger) *ContentHandler {
	return &ContentHandler{content: content, logger: logger}
}

// HandlePublic returns the content behind a username: 404 for an unknown
// username, 410 when the owner has taken the portfolio offline.
//
// HTTP: GET /content/{username}
func (h *ContentHandler) HandlePublic(w http.ResponseWriter, r *http.Request) {
	c, err := h.content.GetByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleOwn is the editor read. It works while the portfolio is offline.
//
// HTTP: GET /api/content
func (h *ContentHandler) HandleOwn(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	c, err := h.content.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// EditHandler applies one section patch through a SectionEditor. The same
// handler serves the live editor and the demo; only the editor differs.
type EditHandler struct {
	editor service.SectionEditor
	logger *slog.Logger
}

func NewEditHandler(editor service.SectionEditor, logger *slog.Logger) *EditHandler {
	return &EditHandler{editor: editor, logger: logger}
}

// HandlePatch merges the request body into one section and returns the
// whole resulting content.
//
// HTTP: PATCH /content/{userId}/{section}   (live, session required)
// HTTP: PATCH /demo/content/{section}       (demo, anonymous)
//
// On the live route a session for a different user is 403: owners can only
// edit their own portfolio.
func (h *EditHandler) HandlePatch(w http.ResponseWriter, r *http.Request) {
	var userID string
	if !h.editor.IsDemo() {
		sessionUser, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, h.logger, apperror.Unauthorized())
			return
		}
		userID = r.PathValue("userId")
		if userID != sessionUser {
			writeError(w, h.logger, apperror.Forbidden("you can only edit your own portfolio"))
			return
		}
	}

	raw, err := readBody(w, r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	c, err := h.editor.Save(r.Context(), userID, r.PathValue("section"), raw)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

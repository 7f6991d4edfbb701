package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/flexfolio/internal/auth"
	"github.com/sakif/flexfolio/internal/model"
	"github.com/sakif/flexfolio/internal/service"
)

type SkillHandler struct {
	skills *service.SkillService
	logger *slog.Logger
}

func NewSkillHandler(skills *service.SkillService, logger *slog.Logger) *SkillHandler {
	return &SkillHandler{skills: skills, logger: logger}
}

// HandleList returns the owner's skills flat, in creation order. Pass
// ?grouped=true for the category grouping the portfolio page uses.
//
// HTTP: GET /skills
func (h *SkillHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if r.URL.Query().Get("grouped") == "true" {
		groups, err := h.skills.Grouped(r.Context(), userID)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, groups)
		return
	}

	skills, err := h.skills.List(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, skills)
}

// HTTP: POST /skills
func (h *SkillHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in model.SkillInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	sk, err := h.skills.Create(r.Context(), userID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, sk)
}

// HTTP: GET /skills/{id}
func (h *SkillHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	sk, err := h.skills.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sk)
}

// HTTP: PUT /skills/{id}
func (h *SkillHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch model.SkillPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())
	sk, err := h.skills.Update(r.Context(), userID, r.PathValue("id"), patch)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sk)
}

// HTTP: DELETE /skills/{id}
func (h *SkillHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	if err := h.skills.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

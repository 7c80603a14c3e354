package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finpsyche/advisor/backend/internal/model/profile"
	"github.com/finpsyche/advisor/backend/pkg/utils"
)

// Handler serves the advisor profiles.
type Handler struct {
	profiles profile.Store
}

// New creates a profile handler.
func New(profiles profile.Store) *Handler {
	return &Handler{profiles: profiles}
}

// RegisterRoutes mounts the profile routes on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/personalities", h.handleList)
	r.Get("/personalities/{personality}", h.handleGet)
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.profiles.List())
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, ok := h.profiles.Find(chi.URLParam(r, "personality"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "personality not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, p)
}

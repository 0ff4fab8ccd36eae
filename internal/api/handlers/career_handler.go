package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	appMiddleware "github.com/sahyog-labs/disha/internal/api/middlewares"
	"github.com/sahyog-labs/disha/internal/services"
)

type CareerHandler struct {
	careers *services.CareerService
}

func NewCareerHandler(careers *services.CareerService) *CareerHandler {
	return &CareerHandler{careers: careers}
}

// GetMapping serves the cached-or-fresh mapping for a course. `?force=1`
// regenerates.
func (h *CareerHandler) GetMapping(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "1"
	h.serve(w, r, force)
}

// Regenerate always bypasses the cache.
func (h *CareerHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, true)
}

func (h *CareerHandler) serve(w http.ResponseWriter, r *http.Request, force bool) {
	userID, ok := appMiddleware.UserID(r.Context())
	if !ok {
		respondErr(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	course := chi.URLParam(r, "course")
	if course == "" {
		respondErr(w, http.StatusBadRequest, "Course required")
		return
	}

	result, err := h.careers.GetOrCreate(r.Context(), userID, course, force)
	if err != nil {
		if errors.Is(err, services.ErrOnboardingNotFound) {
			respondErr(w, http.StatusNotFound, "Onboarding not found")
			return
		}
		respondServerErr(w, "career.mapping", err)
		return
	}

	respondOKMeta(w, result.Mapping, map[string]any{"cached": result.Cached})
}

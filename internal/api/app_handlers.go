package api

import (
	"fmt"
	"net/http"
)

// ListApps handles GET /apps.
func (h *Handler) ListApps(w http.ResponseWriter, r *http.Request) {
	apps, err := h.Repo.ListApps(r.Context())
	if err != nil {
		respondStoreError(w, err)
		return
	}
	respondOK(w, fmt.Sprintf("Found %d apps", len(apps)), apps)
}

// GetApp handles GET /apps/{app_id}. The app id is an opaque string
// key; any value that matches no row is a 404.
func (h *Handler) GetApp(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app_id")

	app, err := h.Repo.GetApp(r.Context(), appID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if app == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("App %s not found", appID))
		return
	}
	respondOK(w, "App found", app)
}

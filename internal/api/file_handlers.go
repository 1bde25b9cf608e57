package api

import (
	"fmt"
	"net/http"

	"github.com/oriys/vega/internal/domain"
)

// ListFiles handles GET /files/{app_id} with metadata only; content is
// never sent on this route.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app_id")
	if err := domain.ValidateAppID(appID); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	listing, err := h.Files.List(r.Context(), appID)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	msg := fmt.Sprintf("Found %d files", len(listing.Files))
	if listing.Degraded {
		msg = "File backend unavailable; listing may be incomplete"
	}
	respondOK(w, msg, listing.Files)
}

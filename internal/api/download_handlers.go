package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/oriys/vega/internal/domain"
	"github.com/oriys/vega/internal/files"
	"github.com/oriys/vega/internal/logging"
	"github.com/oriys/vega/internal/metrics"
)

// DownloadFile handles GET /download/file/{file_id}?file_type=...
// The response is the stored bytes verbatim: no archiving, no
// re-encoding, Content-Length equal to the byte count.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.PathValue("file_id")
	fileType, ok := domain.ParseFileType(r.URL.Query().Get("file_type"))
	if !ok {
		respondError(w, http.StatusBadRequest, "file_type must be one of json, lua, manifest, vdf")
		return
	}

	file, err := h.Files.GetByID(r.Context(), fileID, fileType)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if file == nil {
		respondError(w, http.StatusNotFound, fmt.Sprintf("File %s not found", fileID))
		return
	}

	name := files.EntryName(file.Filename, file.FileType)
	w.Header().Set("Content-Type", fileType.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(file.Content); err != nil {
		logging.Op().Warn("write download", "file_id", fileID, "error", err)
		return
	}
	metrics.Global().RecordDownload(int64(len(file.Content)))
}

// DownloadApp handles GET /download/app/{app_id}: all of an app's
// files streamed as one zip archive.
func (h *Handler) DownloadApp(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app_id")
	if err := domain.ValidateAppID(appID); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	listing, err := h.Files.ListWithContent(r.Context(), appID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if listing.Degraded {
		respondError(w, http.StatusServiceUnavailable, "file backend unavailable")
		return
	}
	if len(listing.Files) == 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("No files found for app %s", appID))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", files.ArchiveName(appID)))

	// The archive streams straight onto the wire; past this point a
	// failure can only be logged, not turned into an error response.
	if _, err := files.BuildArchive(w, listing.Files); err != nil {
		logging.Op().Warn("stream archive", "app_id", appID, "error", err)
	}
}

package api

import (
	"net/http"

	"github.com/fhuszti/filemgr-ms-go/internal/api_context"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

// TrashFileHandler moves a file to trash.
func TrashFileHandler(svc port.FileDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		if err := svc.TrashFile(r.Context(), id); err != nil {
			WriteServiceError(w, "Failed to trash file", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
		logger.Infof(r.Context(), "✅  Successfully trashed file #%s", id)
	}
}

// DeleteFileHandler deletes a trashed file and its derived assets.
func DeleteFileHandler(svc port.FileDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		if err := svc.DeleteFile(r.Context(), id); err != nil {
			WriteServiceError(w, "Failed to delete file", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
		logger.Infof(r.Context(), "✅  Successfully deleted file #%s", id)
	}
}

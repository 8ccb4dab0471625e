package api

import (
	"net/http"
	"strconv"

	"github.com/fhuszti/filemgr-ms-go/internal/api_context"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
)

// ProcessFileHandler re-dispatches media processing of a file.
// With ?force=true the task is enqueued whatever the file's status.
func ProcessFileHandler(getter port.FileGetter, svc port.MediaFileProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		force := false
		if v := r.URL.Query().Get("force"); v != "" {
			var err error
			if force, err = strconv.ParseBool(v); err != nil {
				WriteError(w, http.StatusBadRequest, "force must be a boolean", err)
				return
			}
		}

		details, err := getter.GetFile(r.Context(), id)
		if err != nil {
			WriteServiceError(w, "Could not load file", err)
			return
		}
		if !details.File.IsMedia() {
			WriteError(w, http.StatusBadRequest, "File is not a media", nil)
			return
		}
		if details.File.Status == model.FileStatusPublished && !force {
			WriteError(w, http.StatusConflict, "File is already published, use force to process it again", nil)
			return
		}

		if err := svc.ProcessIfMedia(r.Context(), details.File, force); err != nil {
			WriteServiceError(w, "Could not dispatch file processing", err)
			return
		}

		w.WriteHeader(http.StatusAccepted)
		logger.Infof(r.Context(), "✅  Processing of file #%s dispatched", id)
	}
}

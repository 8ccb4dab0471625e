package api

import (
	"net/http"
	"strconv"

	"github.com/fhuszti/filemgr-ms-go/internal/api_context"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/validation"
)

type DownloadLinkRequest struct {
	Width    int  `json:"width" validate:"gte=0,lte=20000"`
	Height   int  `json:"height" validate:"gte=0,lte=20000"`
	Download bool `json:"download"`
}

// DownloadLinkHandler returns a time-limited URL to the file, or to its derived
// asset best fitting the optional width and height query parameters.
func DownloadLinkHandler(svc port.DownloadLinkGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.IDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "ID is required", nil)
			return
		}

		var req DownloadLinkRequest
		q := r.URL.Query()
		var err error
		if req.Width, err = intParam(q.Get("width")); err != nil {
			WriteError(w, http.StatusBadRequest, "width must be an integer", err)
			return
		}
		if req.Height, err = intParam(q.Get("height")); err != nil {
			WriteError(w, http.StatusBadRequest, "height must be an integer", err)
			return
		}
		if v := q.Get("download"); v != "" {
			if req.Download, err = strconv.ParseBool(v); err != nil {
				WriteError(w, http.StatusBadRequest, "download must be a boolean", err)
				return
			}
		}
		if errs := validation.ValidateStruct(req); errs != nil {
			writeValidationErrors(w, errs)
			return
		}

		out, err := svc.GenerateDownloadLink(r.Context(), port.DownloadLinkInput{
			FileID:   id,
			Download: req.Download,
			Width:    req.Width,
			Height:   req.Height,
		})
		if err != nil {
			WriteServiceError(w, "Could not generate download link", err)
			return
		}

		w.Header().Set("Cache-Control", "no-store")
		RespondJSON(w, http.StatusOK, out)
		logger.Infof(r.Context(), "✅  Generated download link of file #%s for file #%s", out.FileID, id)
	}
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

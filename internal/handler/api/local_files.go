package api

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"

	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// TokenVerifier checks a local download token and returns the storage and path it grants.
type TokenVerifier interface {
	Verify(token string) (uuid.UUID, string, error)
}

// LocalFilesHandler serves the objects of LOCAL storages behind the signed links
// produced by their driver. The token is the only credential.
func LocalFilesHandler(verifier TokenVerifier, fs afero.Fs) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storageID := chi.URLParam(r, "storageID")
		remotePath := chi.URLParam(r, "*")

		grantedStorage, grantedPath, err := verifier.Verify(r.URL.Query().Get("token"))
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}
		if grantedStorage.String() != storageID || grantedPath != remotePath {
			WriteError(w, http.StatusForbidden, "token does not grant this file", nil)
			return
		}

		f, err := fs.Open(remotePath)
		if err != nil {
			if errors.Is(err, afero.ErrFileNotFound) {
				WriteError(w, http.StatusNotFound, "File not found", nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "could not open file", fmt.Errorf("%w: %v", port.ErrInternal, err))
			return
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil || info.IsDir() {
			WriteError(w, http.StatusNotFound, "File not found", err)
			return
		}

		name := path.Base(remotePath)
		if r.URL.Query().Get("download") == "1" {
			w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		}
		w.Header().Set("Cache-Control", "private, max-age=300")
		http.ServeContent(w, r, name, info.ModTime(), f)
		logger.Debugf(r.Context(), "served local file %q of storage #%s", remotePath, storageID)
	}
}

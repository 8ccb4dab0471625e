package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fhuszti/filemgr-ms-go/internal/api_context"
	"github.com/fhuszti/filemgr-ms-go/internal/handler/api"
	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// WithFileID parses the {id} URL parameter into api_context.IDKey.
func WithFileID() func(http.Handler) http.Handler {
	return withUUIDParam("id", api_context.IDKey)
}

// WithStorageID parses the {storageID} URL parameter into api_context.StorageIDKey.
func WithStorageID() func(http.Handler) http.Handler {
	return withUUIDParam("storageID", api_context.StorageIDKey)
}

func withUUIDParam(param string, key any) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := chi.URLParam(r, param)
			if raw == "" {
				api.WriteError(w, http.StatusBadRequest, param+" is required", nil)
				return
			}
			id, err := uuid.Parse(raw)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("%s %q is not a valid UUID", param, raw), nil)
				return
			}

			ctx := context.WithValue(r.Context(), key, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

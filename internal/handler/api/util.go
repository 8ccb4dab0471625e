package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/usecase/media"
	"github.com/fhuszti/filemgr-ms-go/internal/validation"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func WriteError(w http.ResponseWriter, status int, msg string, err error) {
	ctx := context.Background()
	if err != nil {
		logger.Errorf(ctx, "❌  %s: %v", msg, err)
	} else {
		logger.Error(ctx, "❌  "+msg)
	}
	w.Header().Set("Cache-Control", "no-store, max-age=0, must-revalidate")
	RespondJSON(w, status, ErrorResponse{Error: msg})
}

func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to encode JSON response: %v", err)
	}
}

func RespondRawJSON(w http.ResponseWriter, status int, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(raw); err != nil {
		logger.Errorf(context.Background(), "❌  Failed to write JSON payload: %v", err)
	}
}

// WriteServiceError maps use case errors to a status code. msg is used for unexpected errors.
func WriteServiceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, port.ErrRecordNotFound):
		WriteError(w, http.StatusNotFound, "File not found", nil)
	case errors.Is(err, media.ErrFileUnavailable):
		WriteError(w, http.StatusNotFound, "File is not available", nil)
	case errors.Is(err, media.ErrVirtualPathTaken):
		WriteError(w, http.StatusConflict, "Virtual path is already in use", err)
	case errors.Is(err, media.ErrRemoteExists):
		WriteError(w, http.StatusConflict, "A stored object already exists at this path", err)
	case errors.Is(err, media.ErrNotInTrash):
		WriteError(w, http.StatusConflict, "File must be moved to trash first", nil)
	case errors.Is(err, media.ErrInvalidStatus):
		WriteError(w, http.StatusConflict, "File cannot be processed in its current status", err)
	default:
		WriteError(w, http.StatusInternalServerError, msg, err)
	}
}

// writeValidationErrors responds 400 with the per-field failures of a validated struct.
func writeValidationErrors(w http.ResponseWriter, errs error) {
	errsJSON, err := validation.ErrorsToJson(errs)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to encode validation errors", err)
		return
	}
	RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
	logger.Errorf(context.Background(), "❌  Validation failed: %s", errsJSON)
}

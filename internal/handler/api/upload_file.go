package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/fhuszti/filemgr-ms-go/internal/api_context"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/validation"
)

const multipartMemory = 32 << 20

type UploadFileRequest struct {
	Name           string `json:"name" validate:"required,max=255"`
	VirtualPath    string `json:"virtual_path" validate:"omitempty,max=1024"`
	Visibility     string `json:"visibility" validate:"omitempty,oneof=PUBLIC SYSTEM USER"`
	OriginalPath   string `json:"original_path" validate:"omitempty,max=1024"`
	CustomMetadata string `json:"custom_metadata" validate:"omitempty,json"`
}

// UploadFileHandler stores the multipart "file" part in the storage of the URL.
// The part is spooled to uploadDir and handed over to the uploader, which owns it from then on.
func UploadFileHandler(svc port.FileUploader, uploadDir string, maxSize int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		storageID, ok := api_context.StorageIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "storage ID is required", nil)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
				WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", maxSize), nil)
				return
			}
			WriteError(w, http.StatusBadRequest, "invalid multipart payload", err)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		part, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "file is required", err)
			return
		}
		defer func() { _ = part.Close() }()

		req := UploadFileRequest{
			Name:           path.Base(header.Filename),
			VirtualPath:    r.FormValue("virtual_path"),
			Visibility:     r.FormValue("visibility"),
			OriginalPath:   r.FormValue("original_path"),
			CustomMetadata: r.FormValue("custom_metadata"),
		}
		if name := r.FormValue("name"); name != "" {
			req.Name = name
		}
		if errs := validation.ValidateStruct(req); errs != nil {
			writeValidationErrors(w, errs)
			return
		}
		custom := model.JSONMap{}
		if req.CustomMetadata != "" {
			if err := json.Unmarshal([]byte(req.CustomMetadata), &custom); err != nil {
				WriteError(w, http.StatusBadRequest, "custom_metadata must be a JSON object", err)
				return
			}
		}

		localPath, err := spool(part, uploadDir)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "could not store upload", err)
			return
		}

		file, err := svc.UploadFile(r.Context(), port.UploadFileInput{
			StorageID:      storageID,
			OwnerID:        api_context.UserOrSystem(r.Context()),
			Name:           req.Name,
			VirtualPath:    req.VirtualPath,
			Visibility:     model.Visibility(req.Visibility),
			CustomMetadata: custom,
			OriginalPath:   req.OriginalPath,
			LocalPath:      localPath,
		})
		if err != nil {
			WriteServiceError(w, "could not upload file", err)
			return
		}

		RespondJSON(w, http.StatusCreated, file)
		logger.Infof(r.Context(), "✅  Successfully uploaded file #%s", file.ID)
	}
}

func spool(src io.Reader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "upload-*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

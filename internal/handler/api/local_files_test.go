package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/afero"

	"github.com/fhuszti/filemgr-ms-go/internal/storage"
)

func localFilesRequest(t *testing.T, storageID, remotePath, query string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/local-files/"+storageID+"/"+remotePath+query, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("storageID", storageID)
	rctx.URLParams.Add("*", remotePath)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestLocalFilesHandler(t *testing.T) {
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "root/resized/SIZE_VGA/a.jpg", []byte("pixels"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	signer := storage.NewURLSigner("secret")
	token, err := signer.Sign(testStorageID, "root/resized/SIZE_VGA/a.jpg", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	missing, err := signer.Sign(testStorageID, "root/missing.jpg", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	expired, err := signer.Sign(testStorageID, "root/resized/SIZE_VGA/a.jpg", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	handlerFn := LocalFilesHandler(signer, fs)
	sid := testStorageID.String()

	tests := []struct {
		name            string
		storageID       string
		path            string
		query           string
		wantStatus      int
		wantDisposition bool
	}{
		{"inline", sid, "root/resized/SIZE_VGA/a.jpg", "?token=" + token, http.StatusOK, false},
		{"download", sid, "root/resized/SIZE_VGA/a.jpg", "?download=1&token=" + token, http.StatusOK, true},
		{"missing token", sid, "root/resized/SIZE_VGA/a.jpg", "", http.StatusUnauthorized, false},
		{"expired token", sid, "root/resized/SIZE_VGA/a.jpg", "?token=" + expired, http.StatusUnauthorized, false},
		{"other path", sid, "root/other.jpg", "?token=" + token, http.StatusForbidden, false},
		{"other storage", testFileID.String(), "root/resized/SIZE_VGA/a.jpg", "?token=" + token, http.StatusForbidden, false},
		{"missing file", sid, "root/missing.jpg", "?token=" + missing, http.StatusNotFound, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handlerFn(rec, localFilesRequest(t, tc.storageID, tc.path, tc.query))

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d (body=%q)", rec.Code, tc.wantStatus, rec.Body.String())
			}
			if tc.wantStatus == http.StatusOK && rec.Body.String() != "pixels" {
				t.Errorf("body = %q; want pixels", rec.Body.String())
			}
			if got := rec.Header().Get("Content-Disposition") != ""; got != tc.wantDisposition {
				t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
			}
		})
	}
}

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fhuszti/filemgr-ms-go/internal/mock"
	"github.com/fhuszti/filemgr-ms-go/internal/port"
	"github.com/fhuszti/filemgr-ms-go/internal/usecase/media"
)

func TestTrashAndDeleteHandlers(t *testing.T) {
	tests := []struct {
		name       string
		trash      bool
		err        error
		withID     bool
		wantStatus int
	}{
		{"trash ok", true, nil, true, http.StatusNoContent},
		{"trash not found", true, port.ErrRecordNotFound, true, http.StatusNotFound},
		{"trash failure", true, errors.New("db down"), true, http.StatusInternalServerError},
		{"delete ok", false, nil, true, http.StatusNoContent},
		{"delete not trashed", false, media.ErrNotInTrash, true, http.StatusConflict},
		{"delete missing ID", false, nil, false, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mock.FileDeleter{TrashErr: tc.err, DeleteErr: tc.err}
			handlerFn := DeleteFileHandler(svc)
			method := http.MethodDelete
			if tc.trash {
				handlerFn = TrashFileHandler(svc)
				method = http.MethodPost
			}

			req := httptest.NewRequest(method, "/files/"+testFileID.String(), nil)
			if tc.withID {
				req = withID(req, testFileID)
			}
			rec := httptest.NewRecorder()
			handlerFn(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d; want %d", rec.Code, tc.wantStatus)
			}
			if tc.withID && svc.ID != testFileID {
				t.Errorf("service got ID = %s; want %s", svc.ID, testFileID)
			}
			if !tc.withID && (svc.TrashCalled || svc.DeleteCalled) {
				t.Error("service should not be called without an ID")
			}
		})
	}
}

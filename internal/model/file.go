package model

import (
	"strings"
	"time"

	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type FileStatus string

const (
	FileStatusNotUploaded FileStatus = "NOT_UPLOADED"
	FileStatusUploading   FileStatus = "UPLOADING"
	FileStatusUploaded    FileStatus = "UPLOADED"
	FileStatusProcessing  FileStatus = "PROCESSING"
	FileStatusPublished   FileStatus = "PUBLISHED"
	FileStatusDeleted     FileStatus = "DELETED"
	FileStatusError       FileStatus = "ERROR"
)

var statusRank = map[FileStatus]int{
	FileStatusNotUploaded: 0,
	FileStatusUploading:   1,
	FileStatusUploaded:    2,
	FileStatusProcessing:  3,
	FileStatusPublished:   4,
	FileStatusDeleted:     5,
}

// CanTransitionTo reports whether a file in status s may move to next.
// Statuses only move forward, except that ERROR and DELETED are reachable from
// any live status and ERROR may go back to PROCESSING when a task is retried.
func (s FileStatus) CanTransitionTo(next FileStatus) bool {
	if s == next {
		return true
	}
	if s == FileStatusDeleted {
		return false
	}
	if next == FileStatusError || next == FileStatusDeleted {
		return true
	}
	if s == FileStatusError {
		return next == FileStatusProcessing
	}
	cur, ok := statusRank[s]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	return ok && nxt > cur
}

type Visibility string

const (
	VisibilityPublic Visibility = "PUBLIC"
	VisibilitySystem Visibility = "SYSTEM"
	VisibilityUser   Visibility = "USER"
)

type Origin string

const (
	OriginLocal   Origin = "LOCAL"
	OriginWeb     Origin = "WEB"
	OriginSystem  Origin = "SYSTEM"
	OriginUnknown Origin = "UNKNOWN"
)

type GenericType string

const (
	GenericTypeText       GenericType = "TEXT"
	GenericTypeFont       GenericType = "FONT"
	GenericTypeCode       GenericType = "CODE"
	GenericTypeExecutable GenericType = "EXECUTABLE"
	GenericTypeAudio      GenericType = "AUDIO"
	GenericTypeImage      GenericType = "IMAGE"
	GenericTypeVideo      GenericType = "VIDEO"
	GenericTypeCompressed GenericType = "COMPRESSED"
	GenericTypeDocument   GenericType = "DOCUMENT"
	GenericTypeBinary     GenericType = "BINARY"
	GenericTypeOther      GenericType = "OTHER"
)

var exactGenericTypes = map[string]GenericType{
	"application/pdf":                               GenericTypeDocument,
	"application/msword":                            GenericTypeDocument,
	"application/rtf":                               GenericTypeDocument,
	"application/json":                              GenericTypeCode,
	"application/xml":                               GenericTypeCode,
	"application/javascript":                        GenericTypeCode,
	"application/x-sh":                              GenericTypeCode,
	"application/zip":                               GenericTypeCompressed,
	"application/gzip":                              GenericTypeCompressed,
	"application/x-tar":                             GenericTypeCompressed,
	"application/x-7z-compressed":                   GenericTypeCompressed,
	"application/x-rar-compressed":                  GenericTypeCompressed,
	"application/vnd.rar":                           GenericTypeCompressed,
	"application/x-bzip2":                           GenericTypeCompressed,
	"application/x-xz":                              GenericTypeCompressed,
	"application/x-executable":                      GenericTypeExecutable,
	"application/x-elf":                             GenericTypeExecutable,
	"application/x-msdownload":                      GenericTypeExecutable,
	"application/x-mach-binary":                     GenericTypeExecutable,
	"application/vnd.microsoft.portable-executable": GenericTypeExecutable,
	"application/octet-stream":                      GenericTypeBinary,
	"text/x-python":                                 GenericTypeCode,
	"text/x-go":                                     GenericTypeCode,
	"text/javascript":                               GenericTypeCode,
	"text/html":                                     GenericTypeCode,
	"text/css":                                      GenericTypeCode,
	"text/x-php":                                    GenericTypeCode,
}

// GenericTypeOf classifies a MIME type into one of the generic families.
func GenericTypeOf(mimeType string) GenericType {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	if gt, ok := exactGenericTypes[mt]; ok {
		return gt
	}
	switch {
	case strings.HasPrefix(mt, "image/"):
		return GenericTypeImage
	case strings.HasPrefix(mt, "video/"):
		return GenericTypeVideo
	case strings.HasPrefix(mt, "audio/"):
		return GenericTypeAudio
	case strings.HasPrefix(mt, "font/"):
		return GenericTypeFont
	case strings.HasPrefix(mt, "text/"):
		return GenericTypeText
	case strings.HasPrefix(mt, "application/vnd.openxmlformats-officedocument"),
		strings.HasPrefix(mt, "application/vnd.oasis.opendocument"),
		strings.HasPrefix(mt, "application/vnd.ms-"):
		return GenericTypeDocument
	default:
		return GenericTypeOther
	}
}

// StoredFile is one physical asset in a storage backend.
type StoredFile struct {
	ID             uuid.UUID   `json:"id"`
	StorageID      uuid.UUID   `json:"storage_id"`
	OwnerID        string      `json:"owner_id"`
	Name           string      `json:"name"`
	Status         FileStatus  `json:"status"`
	Visibility     Visibility  `json:"visibility"`
	Size           int64       `json:"size"`
	Hash           string      `json:"hash"`
	MimeType       string      `json:"mime_type"`
	GenericType    GenericType `json:"generic_type"`
	Extension      string      `json:"extension"`
	ExifMetadata   JSONMap     `json:"exif_metadata"`
	CustomMetadata JSONMap     `json:"custom_metadata"`
	Origin         Origin      `json:"origin"`
	OriginalPath   string      `json:"original_path"`
	RealPath       string      `json:"real_path"`
	VirtualPath    string      `json:"virtual_path"`
	Available      bool        `json:"available"`
	Excluded       bool        `json:"excluded"`
	CreatedBy      string      `json:"created_by"`
	UpdatedBy      string      `json:"updated_by"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsMedia reports whether the file is eligible for media processing.
func (f *StoredFile) IsMedia() bool {
	return f.GenericType == GenericTypeImage || f.GenericType == GenericTypeVideo
}

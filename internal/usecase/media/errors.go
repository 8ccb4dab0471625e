package media

import "errors"

var (
	ErrSourceUnavailable        = errors.New("media: source image unavailable")
	ErrUnsupportedConfiguration = errors.New("media: unsupported media convert configuration")
	ErrStorageWrite             = errors.New("media: storage write failed")
	ErrInvalidStatus            = errors.New("media: invalid file status")
	ErrVirtualPathTaken         = errors.New("file: virtual path already in use")
	ErrRemoteExists             = errors.New("file: remote object already exists")
	ErrNotInTrash               = errors.New("file: not in trash")
	ErrFileUnavailable          = errors.New("file: not available")
)

package port

import "errors"

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateAsset = errors.New("asset already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInternal       = errors.New("internal error")
)

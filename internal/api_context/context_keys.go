package api_context

import (
	"context"

	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

type ctxKey string

const (
	IDKey         ctxKey = "id"
	StorageIDKey  ctxKey = "storageID"
	AuthUserIDKey ctxKey = "authUserID"
	AuthRolesKey  ctxKey = "authRoles"
)

// SystemUser is the owner recorded when no authenticated caller is attached to the context.
const SystemUser = "system"

func IDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(IDKey).(uuid.UUID)
	return id, ok
}

func StorageIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(StorageIDKey).(uuid.UUID)
	return id, ok
}

// AuthUserIDFromContext returns the `sub` claim of the bearer token.
func AuthUserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(AuthUserIDKey).(string)
	return id, ok && id != ""
}

// UserOrSystem returns the authenticated user or SystemUser.
func UserOrSystem(ctx context.Context) string {
	if id, ok := AuthUserIDFromContext(ctx); ok {
		return id
	}
	return SystemUser
}

func AuthRolesFromContext(ctx context.Context) ([]string, bool) {
	roles, ok := ctx.Value(AuthRolesKey).([]string)
	return roles, ok
}

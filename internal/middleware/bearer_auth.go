package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fhuszti/filemgr-ms-go/internal/api_context"
	"github.com/fhuszti/filemgr-ms-go/internal/handler/api"
	"github.com/fhuszti/filemgr-ms-go/internal/logger"
)

const (
	tokenIssuer   = "core"
	tokenAudience = "filemgr"
	iatLeeway     = 30 * time.Second
)

type callerClaims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

// WithBearerAuth requires an RS256 bearer token issued by core for this service.
// The caller's subject and roles are stored in the request context.
// An empty key disables authentication, every request then runs as the system user.
func WithBearerAuth(publicKeyPEM string) (func(http.Handler) http.Handler, error) {
	if publicKeyPEM == "" {
		logger.Warn(context.Background(), "⚠️  JWT_PUBLIC_KEY is empty, bearer authentication is disabled")
		return func(next http.Handler) http.Handler { return next }, nil
	}

	pubKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT public key: %w", err)
	}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}))
	keyFunc := func(*jwt.Token) (interface{}, error) { return pubKey, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || raw == "" {
				api.WriteError(w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}

			var claims callerClaims
			tok, err := parser.ParseWithClaims(raw, &claims, keyFunc)
			if err != nil || !tok.Valid {
				api.WriteError(w, http.StatusUnauthorized, "unauthorized", err)
				return
			}
			if msg := checkClaims(&claims, time.Now()); msg != "" {
				api.WriteError(w, http.StatusUnauthorized, msg, nil)
				return
			}

			ctx := context.WithValue(r.Context(), api_context.AuthUserIDKey, claims.Subject)
			ctx = context.WithValue(ctx, api_context.AuthRolesKey, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}, nil
}

// checkClaims returns the reason the claims are rejected, or "" when they are acceptable.
func checkClaims(c *callerClaims, now time.Time) string {
	switch {
	case !c.VerifyIssuer(tokenIssuer, true):
		return "bad issuer"
	case !c.VerifyAudience(tokenAudience, true):
		return "bad audience"
	case !c.VerifyExpiresAt(now, true):
		return "token expired"
	case c.IssuedAt != nil && c.IssuedAt.After(now.Add(iatLeeway)):
		return "invalid iat"
	case c.Subject == "":
		return "missing sub"
	}
	return ""
}

package storage

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/fhuszti/filemgr-ms-go/internal/uuid"
)

// URLSigner issues and checks the tokens of local download links.
type URLSigner struct {
	key []byte
	now func() time.Time
}

type localFileClaims struct {
	StorageID string `json:"sid"`
	jwt.RegisteredClaims
}

func NewURLSigner(key string) *URLSigner {
	return &URLSigner{key: []byte(key), now: time.Now}
}

// Sign returns an HS256 token granting read access to path in storageID until expiry.
func (s *URLSigner) Sign(storageID uuid.UUID, path string, expiry time.Duration) (string, error) {
	now := s.now()
	claims := localFileClaims{
		StorageID: storageID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   path,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign local file token: %w", err)
	}
	return token, nil
}

// Verify checks the token and returns the storage and path it grants.
func (s *URLSigner) Verify(token string) (uuid.UUID, string, error) {
	var claims localFileClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	})
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := uuid.Parse(claims.StorageID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return id, claims.Subject, nil
}

package storage

import (
	"errors"
	"testing"
	"time"
)

func TestURLSigner_RoundTrip(t *testing.T) {
	s := NewURLSigner("k")
	token, err := s.Sign(testStorageID, "media/a.jpg", time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	sid, p, err := s.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if sid != testStorageID || p != "media/a.jpg" {
		t.Errorf("Verify = %s %q", sid, p)
	}
}

func TestURLSigner_Rejects(t *testing.T) {
	s := NewURLSigner("k")

	other, _ := NewURLSigner("other").Sign(testStorageID, "a", time.Minute)
	if _, _, err := s.Verify(other); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign key: error = %v; want ErrInvalidToken", err)
	}

	s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _ := s.Sign(testStorageID, "a", time.Minute)
	if _, _, err := s.Verify(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expired: error = %v; want ErrInvalidToken", err)
	}

	if _, _, err := s.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage: error = %v; want ErrInvalidToken", err)
	}
}

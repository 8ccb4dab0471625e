package storage

import (
	"encoding/json"
	"fmt"

	"github.com/fhuszti/filemgr-ms-go/internal/model"
	"github.com/fhuszti/filemgr-ms-go/internal/validation"
)

type LocalCredentials struct {
	RootPath string `json:"root_path"`
}

type S3Credentials struct {
	Endpoint   string `json:"endpoint" validate:"required"`
	AccessKey  string `json:"access_key" validate:"required"`
	SecretKey  string `json:"secret_key" validate:"required"`
	Bucket     string `json:"bucket" validate:"required"`
	Region     string `json:"region,omitempty"`
	UseSSL     bool   `json:"use_ssl"`
	RootFolder string `json:"root_folder,omitempty"`
}

func parseLocalCredentials(raw model.RawJSON) (LocalCredentials, error) {
	var c LocalCredentials
	if len(raw) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return c, nil
}

func parseS3Credentials(raw model.RawJSON) (S3Credentials, error) {
	var c S3Credentials
	if len(raw) == 0 {
		return c, fmt.Errorf("%w: missing S3 credentials", ErrInvalidCredentials)
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if err := validation.ValidateStruct(c); err != nil {
		return c, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	return c, nil
}

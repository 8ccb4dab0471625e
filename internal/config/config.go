package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Settings struct {
	MariaDBDSN      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ServerPort      int

	RedisAddr     string
	RedisPassword string

	JWTPublicKey string

	// TempDir holds cached originals and derived assets before upload.
	TempDir            string
	LocalStorageRoot   string
	LocalPublicBaseURL string
	LocalURLSigningKey string

	EventExchange      string
	ProcessTimeout     time.Duration
	ProcessMaxRetry    int
	WorkerConcurrency  int
	DownloadURLExpiry  time.Duration
	MaxUploadSize      int64
	MetricsPort        int
	ExifOrientationTag string
}

var required = []string{
	"MARIADB_DSN",
	"MARIADB_MAX_OPEN_CONN",
	"MARIADB_MAX_IDLE_CONNS",
	"MARIADB_CONN_MAX_LIFETIME",
	"SERVER_PORT",
}

func Load() (*Settings, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found; proceeding with OS environment variables")
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetConfigFile(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: could not read .env file: %v", err)
	}

	for _, key := range required {
		if !v.IsSet(key) {
			return nil, fmt.Errorf("%s is required", key)
		}
	}

	v.SetDefault("TEMP_DIR", filepath.Join(os.TempDir(), "filemgr"))
	v.SetDefault("LOCAL_STORAGE_ROOT", "./data")
	v.SetDefault("LOCAL_PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("EVENT_EXCHANGE", "userver-filemgr")
	v.SetDefault("PROCESS_TIMEOUT", 600)
	v.SetDefault("PROCESS_MAX_RETRY", 3)
	v.SetDefault("WORKER_CONCURRENCY", 10)
	v.SetDefault("DOWNLOAD_URL_EXPIRY", 3600)
	v.SetDefault("MAX_UPLOAD_SIZE", 100<<20)
	v.SetDefault("METRICS_PORT", 0)
	v.SetDefault("EXIF_ORIENTATION_TAG", "Flash")

	s := &Settings{
		MariaDBDSN:      v.GetString("MARIADB_DSN"),
		MaxOpenConns:    v.GetInt("MARIADB_MAX_OPEN_CONN"),
		MaxIdleConns:    v.GetInt("MARIADB_MAX_IDLE_CONNS"),
		ConnMaxLifetime: time.Duration(v.GetInt("MARIADB_CONN_MAX_LIFETIME")) * time.Second,
		ServerPort:      v.GetInt("SERVER_PORT"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),

		JWTPublicKey: v.GetString("JWT_PUBLIC_KEY"),

		TempDir:            v.GetString("TEMP_DIR"),
		LocalStorageRoot:   v.GetString("LOCAL_STORAGE_ROOT"),
		LocalPublicBaseURL: v.GetString("LOCAL_PUBLIC_BASE_URL"),
		LocalURLSigningKey: v.GetString("LOCAL_URL_SIGNING_KEY"),

		EventExchange:      v.GetString("EVENT_EXCHANGE"),
		ProcessTimeout:     time.Duration(v.GetInt("PROCESS_TIMEOUT")) * time.Second,
		ProcessMaxRetry:    v.GetInt("PROCESS_MAX_RETRY"),
		WorkerConcurrency:  v.GetInt("WORKER_CONCURRENCY"),
		DownloadURLExpiry:  time.Duration(v.GetInt("DOWNLOAD_URL_EXPIRY")) * time.Second,
		MaxUploadSize:      v.GetInt64("MAX_UPLOAD_SIZE"),
		MetricsPort:        v.GetInt("METRICS_PORT"),
		ExifOrientationTag: v.GetString("EXIF_ORIENTATION_TAG"),
	}

	if s.ProcessTimeout <= 0 {
		return nil, fmt.Errorf("PROCESS_TIMEOUT must be positive")
	}
	if s.DownloadURLExpiry < 2*time.Minute {
		return nil, fmt.Errorf("DOWNLOAD_URL_EXPIRY must be at least 120 seconds")
	}

	return s, nil
}

package db

import "time"

type MariaDbConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration // seconds
}

// NewFromConfig opens a pool from a MariaDbConfig.
func NewFromConfig(cfg MariaDbConfig) (*Database, error) {
	return New(cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
}

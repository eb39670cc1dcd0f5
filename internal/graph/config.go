package graph

import (
	"errors"
	"time"
)

// Config holds the connection settings of a Manager.
type Config struct {
	URI      string
	Username string
	Password string
	Database string

	// MaxConnectionPoolSize bounds concurrent sessions.
	MaxConnectionPoolSize int
	// ConnectionAcquisitionTimeout bounds the wait for a pooled connection.
	ConnectionAcquisitionTimeout time.Duration
}

// DefaultConfig returns local development settings.
func DefaultConfig() Config {
	return Config{
		URI:                          "neo4j://localhost",
		Username:                     "neo4j",
		Database:                     "cortyx-dev",
		MaxConnectionPoolSize:        50,
		ConnectionAcquisitionTimeout: 60 * time.Second,
	}
}

// Validate checks the configuration for correctness.
func (c Config) Validate() error {
	if c.URI == "" {
		return errors.New("uri is required")
	}
	if c.MaxConnectionPoolSize <= 0 {
		return errors.New("max connection pool size must be positive")
	}
	if c.ConnectionAcquisitionTimeout <= 0 {
		return errors.New("connection acquisition timeout must be positive")
	}
	return nil
}

package internal

import (
	"fmt"
	"time"

	apperrors "message-board/errors"
	"message-board/infrastructure/storage"

	"github.com/Netflix/go-env"
)

type Config struct {
	LogLevel             string        `env:"LOG_LEVEL,default=INFO"`
	Host                 string        `env:"HOST,default=0.0.0.0"`
	Port                 int           `env:"PORT,default=8080"`
	GRPCPort             int           `env:"GRPC_PORT,default=9090"`
	DebugPort            int           `env:"DEBUG_PORT,default=8081"`
	StoreBackend         string        `env:"STORE_BACKEND,default=badger"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,default=./data/board"`
	RedisURL             string        `env:"REDIS_URL"`
	ReactionStrategy     string        `env:"REACTION_STRATEGY,default=atomic"`
	StoreConflictRetries int           `env:"STORE_CONFLICT_RETRIES,default=5"`
	MaxBodyBytes         int           `env:"MAX_BODY_BYTES,default=8192"`
	ReadTimeout          time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	ShutdownTimeout      time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`
}

// LoadConfig reads the process environment and validates the result.
func LoadConfig() (Config, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return Config{}, err
	}
	return config, config.Validate()
}

func (c Config) Validate() error {
	switch c.StoreBackend {
	case storage.BackendBadger:
		if c.BadgerFilepath == "" {
			return fmt.Errorf("BADGER_FILEPATH is required with the %s backend", storage.BackendBadger)
		}
	case storage.BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required with the %s backend", storage.BackendRedis)
		}
	default:
		return fmt.Errorf("%w: %q", apperrors.ErrUnknownBackend, c.StoreBackend)
	}
	if c.StoreConflictRetries < 0 {
		return fmt.Errorf("STORE_CONFLICT_RETRIES must not be negative, got %d", c.StoreConflictRetries)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

package config

import (
	"log/slog"
	"os"
)

// ConfigError is an error that carries a message to show to the operator
type ConfigError struct {
	err string
	msg string
}

// NewConfigError returns a new ConfigError
func NewConfigError(err string, msg string) *ConfigError {
	return &ConfigError{
		err: err,
		msg: msg,
	}
}

// Error implements the error interface
func (e ConfigError) Error() string {
	return e.err
}

// LogFatal logs the error then terminates the process with a non-zero exit code
func (e ConfigError) LogFatal(log *slog.Logger) {
	log.Error(e.msg, slog.String("error", e.err))
	os.Exit(1)
}

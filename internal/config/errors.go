package config

import (
	"errors"
	"fmt"
)

// Process exit codes for configuration failures.
const (
	ExitConfigFileNotFound = 1
	ExitConfigMalformed    = 2
	ExitNoFeatures         = 3
	ExitBotTokenMissing    = 4
)

var (
	ErrFileNotFound    = errors.New("config file not found")
	ErrMalformed       = errors.New("config file malformed")
	ErrNoFeatures      = errors.New("no features enabled")
	ErrBotTokenMissing = errors.New("bot token not provided")
)

// ExitError is a configuration failure that ends the process with Code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%v (exit code %d)", e.Err, e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func exitError(code int, sentinel error, cause error) *ExitError {
	if cause == nil {
		return &ExitError{Code: code, Err: sentinel}
	}
	return &ExitError{Code: code, Err: fmt.Errorf("%w: %v", sentinel, cause)}
}

// ExitCode returns the exit code carried by err, or 1 for any other error.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

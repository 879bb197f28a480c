package config

import "errors"

var (
	// ErrInvalidConfig is returned when a config file fails validation.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrConfigExists is returned when writing a default config over an existing file.
	ErrConfigExists = errors.New("config file already exists")
)

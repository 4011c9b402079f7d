package config

import "errors"

var (
	ErrFailedToLoadConfig     = errors.New("failed to load profile")
	ErrFailedToValidateConfig = errors.New("failed to validate profile")
	ErrUnsupportedConfigVer   = errors.New("unsupported profile version")
	ErrUnsupportedFormat      = errors.New("unsupported profile format")
	ErrParseToml              = errors.New("failed to parse TOML")
)

// Validation specific errors
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidValue         = errors.New("invalid value")
)

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// NewProfile loads and validates the profile at filePath.
func NewProfile(filePath string) (*Profile, error) {
	p, err := Load(filePath)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToValidateConfig, err)
	}
	return p, nil
}

// Load reads a profile from a .toml file without validating it.
func Load(filePath string) (*Profile, error) {
	if ext := filepath.Ext(filePath); ext != ".toml" {
		return nil, fmt.Errorf("%w: %q, only .toml is supported", ErrUnsupportedFormat, ext)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}

	p, err := LoadBytes(data)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(filePath)
	if err != nil {
		abs = filePath
	}
	p.dir = filepath.Dir(abs)
	return p, nil
}

// LoadReader reads a profile from r. Relative paths stay relative to the
// working directory.
func LoadReader(r io.Reader) (*Profile, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedToLoadConfig, err)
	}
	return LoadBytes(data)
}

// LoadBytes parses TOML data. Unknown keys are rejected so typos surface
// instead of silently changing the build.
func LoadBytes(data []byte) (*Profile, error) {
	p := Default()

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(p); err != nil {
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return nil, fmt.Errorf("%w at line %d column %d: %w", ErrParseToml, row, col, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrParseToml, err)
	}

	if p.Version == "" {
		p.Version = VersionLatest
	}
	if p.Version != VersionLatest {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedConfigVer, p.Version)
	}
	return p, nil
}

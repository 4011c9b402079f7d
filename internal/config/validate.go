package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atlanticdynamic/exebuild/internal/logging"
	"github.com/atlanticdynamic/exebuild/internal/probe"
)

// Validate checks every section and returns all problems joined. A
// missing script is not an error here because the command line may
// supply it.
func (p *Profile) Validate() error {
	if p.Version == "" {
		p.Version = VersionUnknown
	}
	if p.Version != VersionLatest {
		return fmt.Errorf("%w: %s", ErrUnsupportedConfigVer, p.Version)
	}

	errz := []error{}

	for i, d := range p.Data {
		if strings.TrimSpace(d.Source) == "" {
			errz = append(errz, fmt.Errorf("%w: data[%d].source", ErrMissingRequiredField, i))
		}
	}

	if p.Tool.MinVersion != "" {
		if _, err := probe.ParseConstraint(p.Tool.MinVersion); err != nil {
			errz = append(errz, fmt.Errorf("%w: tool.min_version: %w", ErrInvalidValue, err))
		}
	}
	errz = append(errz, validDuration("tool.probe_timeout", p.Tool.ProbeTimeout))
	errz = append(errz, validDuration("console.drain_interval", p.Console.DrainInterval))

	if !logging.ValidLevel(p.Logging.Level) {
		errz = append(errz, fmt.Errorf("%w: logging.level %q", ErrInvalidValue, p.Logging.Level))
	}
	if !logging.ValidFormat(p.Logging.Format) {
		errz = append(errz, fmt.Errorf("%w: logging.format %q", ErrInvalidValue, p.Logging.Format))
	}

	if p.History.Keep < 0 {
		errz = append(errz, fmt.Errorf("%w: history.keep must not be negative", ErrInvalidValue))
	}

	return errors.Join(errz...)
}

func validDuration(field, s string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidValue, field, err)
	}
	if d <= 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidValue, field)
	}
	return nil
}

// Package probe answers whether the packaging tool can be launched and
// knows how to install it.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// DefaultTimeout bounds a single version check.
const DefaultTimeout = 15 * time.Second

// waitDelay bounds how long a killed check may keep its output pipe open
// through a lingering grandchild.
const waitDelay = 500 * time.Millisecond

var (
	ErrToolMissing       = errors.New("packaging tool not available")
	ErrVersionUnparsable = errors.New("could not parse tool version")
	ErrVersionTooOld     = errors.New("tool version does not satisfy constraint")
	ErrEmptyLauncher     = errors.New("launcher is empty")
	ErrInvalidConstraint = errors.New("invalid version constraint")
)

// Prober reports whether the packaging tool can be run.
type Prober interface {
	IsAvailable(ctx context.Context) bool
}

// outputFunc runs a command and returns its combined output.
type outputFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

func combinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay
	return cmd.CombinedOutput()
}

var _ Prober = (*ToolProbe)(nil)

// ToolProbe runs "<launcher> --version" and optionally checks the result
// against a semantic version constraint.
type ToolProbe struct {
	launcher   []string
	constraint *semver.Constraints
	timeout    time.Duration
	logger     *slog.Logger
	run        outputFunc
}

// NewToolProbe creates a probe for the given launcher tokens.
func NewToolProbe(launcher []string, opts ...Option) *ToolProbe {
	p := &ToolProbe{
		launcher: append([]string(nil), launcher...),
		timeout:  DefaultTimeout,
		logger:   slog.Default().WithGroup("probe.ToolProbe"),
		run:      combinedOutput,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseConstraint wraps semver.NewConstraint with a package error.
func ParseConstraint(s string) (*semver.Constraints, error) {
	c, err := semver.NewConstraint(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidConstraint, s, err)
	}
	return c, nil
}

// Version runs the tool and returns its parsed version. A tool that runs
// but prints something unparsable yields ErrVersionUnparsable.
func (p *ToolProbe) Version(ctx context.Context) (*semver.Version, error) {
	if len(p.launcher) == 0 {
		return nil, ErrEmptyLauncher
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := append(append([]string(nil), p.launcher[1:]...), "--version")
	out, err := p.run(ctx, p.launcher[0], args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrToolMissing, err)
	}

	v, err := ParseVersion(string(out))
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Check is Version plus the constraint test.
func (p *ToolProbe) Check(ctx context.Context) (*semver.Version, error) {
	v, err := p.Version(ctx)
	if err != nil {
		if errors.Is(err, ErrVersionUnparsable) && p.constraint == nil {
			// the tool runs; without a constraint the version text is informational
			return nil, nil
		}
		return nil, err
	}
	if p.constraint != nil && !p.constraint.Check(v) {
		return v, fmt.Errorf("%w: %s does not satisfy %s", ErrVersionTooOld, v, p.constraint)
	}
	return v, nil
}

// IsAvailable implements Prober.
func (p *ToolProbe) IsAvailable(ctx context.Context) bool {
	v, err := p.Check(ctx)
	if err != nil {
		p.logger.Debug("Packaging tool unavailable", "launcher", strings.Join(p.launcher, " "), "error", err)
		return false
	}
	if v != nil {
		p.logger.Debug("Packaging tool available", "version", v.String())
	}
	return true
}

// ParseVersion extracts the first semantic version found in s.
func ParseVersion(s string) (*semver.Version, error) {
	for _, field := range strings.Fields(s) {
		field = strings.TrimPrefix(strings.Trim(field, "(),;"), "v")
		if v, err := semver.NewVersion(field); err == nil {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrVersionUnparsable, strings.TrimSpace(s))
}

// Static is a Prober with a fixed answer.
type Static bool

// IsAvailable implements Prober.
func (s Static) IsAvailable(context.Context) bool {
	return bool(s)
}

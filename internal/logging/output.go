package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// OpenOutput resolves a log destination: "stderr" (or empty), "stdout",
// or a file path, optionally prefixed with "file://". Files are created
// with their parent directories and appended to.
func OpenOutput(target string) (io.WriteCloser, error) {
	switch target {
	case "", "stderr":
		return nopCloser{os.Stderr}, nil
	case "stdout":
		return nopCloser{os.Stdout}, nil
	}

	path := strings.TrimPrefix(target, "file://")
	if strings.Contains(path, "://") {
		return nil, fmt.Errorf("unsupported log output: %s", target)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}

//go:build !windows

package runner

import (
	"os"
	"syscall"
)

// terminate asks the process to exit so the packaging tool can clean up
// its partial output.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}

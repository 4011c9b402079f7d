//go:build windows

package runner

import "os"

// terminate ends the process. Windows offers no SIGTERM for a child that
// does not share our console, so TerminateProcess is the closest request.
func terminate(p *os.Process) error {
	return p.Kill()
}

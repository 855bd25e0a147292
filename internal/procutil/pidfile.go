// Package procutil implements the process primitives specified in
// component C1: liveness probing, pidfile lifecycle, and the syslog sink
// used as the watcher's own stdout/stderr.
package procutil

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
)

// CheckAlive sends signal 0 to pid and reports whether the OS believes a
// process with that pid exists.
//
// Any error other than ESRCH ("no such process") — including EPERM, a
// process owned by another user — is treated as alive. This mirrors the
// original implementation's documented, deliberately conservative choice
// (see spec.md §9's open question): a caller that cannot tell whether a
// foreign-owned pid is alive must not assume it is dead.
func CheckAlive(pid int) int {
	if pid <= 0 {
		return 0
	}
	err := syscall.Kill(pid, 0)
	if err == nil {
		return pid
	}
	if err == syscall.ESRCH {
		return 0
	}
	return pid
}

// GetPidFromFile reads a decimal pid from path. It returns (0, nil) if the
// file does not exist, and a non-nil error if it exists but cannot be read
// or parsed.
func GetPidFromFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("cannot open pidfile %q: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("pidfile %q does not contain a valid pid: %w", path, err)
	}
	return pid, nil
}

// WritePidfile truncates path and writes "<pid>\n". A single write() is
// all the contract requires; no fsync is performed.
func WritePidfile(pid int, path string) error {
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", pid)), 0o644)
}

// RemovePidfile unlinks path. Absence after the call is the only
// postcondition, so ENOENT is not an error.
func RemovePidfile(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

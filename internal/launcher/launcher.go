//go:build !windows

// Package launcher implements component C2: the exact
// chdir → chroot → umask → setgid → setuid → exec sequence applied between
// a fork and the final exec of the user's configured child command.
//
// Grounded on faketree.go's initializePrivileges()/Exec(), which applies
// the identical privilege-drop-then-exec sequence directly in a freshly
// spawned, single-threaded process rather than through a raw fork().
package launcher

import (
	"fmt"
	"syscall"

	"github.com/finitd/finitd/internal/config"
)

// Params collects the subset of config needed to launch the child, so
// callers (the watcher's per-iteration spawn, and `debug`) don't need to
// carry a full *config.Config across a reexec boundary.
type Params struct {
	Command string
	Chdir   string
	Chroot  bool
	Umask   int
	Setuid  *int
	Setgid  *int
	Environ []string
}

// ParamsFromConfig extracts launch parameters from a loaded config.
func ParamsFromConfig(c *config.Config, environ map[string]string) (*Params, error) {
	uid, err := c.ChildSetuid()
	if err != nil {
		return nil, err
	}
	gid, err := c.ChildSetgid()
	if err != nil {
		return nil, err
	}
	return &Params{
		Command: c.ChildCommand(),
		Chdir:   c.ChildChdir(),
		Chroot:  c.ChildChroot(),
		Umask:   c.ChildUmask(),
		Setuid:  uid,
		Setgid:  gid,
		Environ: config.EnvironmentSlice(environ),
	}, nil
}

// ChdirChroot performs C2 steps 1-2. It is split out because the watcher
// runs it once, in the daemonized process, before the per-iteration spawn
// loop begins (§4.3 step 4) — the child inherits cwd/root across its own
// reexec and must not repeat it.
func ChdirChroot(chdir string, chroot bool) error {
	if err := syscall.Chdir(chdir); err != nil {
		return fmt.Errorf("chdir to %q failed: %w", chdir, err)
	}
	if chroot {
		if err := syscall.Chroot(chdir); err != nil {
			return fmt.Errorf("chroot to %q failed: %w", chdir, err)
		}
		if err := syscall.Chdir("/"); err != nil {
			return fmt.Errorf("chdir to / after chroot failed: %w", err)
		}
	}
	return nil
}

// DropPrivileges performs C2 steps 3-5: umask, setgid, setuid, in that
// exact order (group before user, since dropping uid first would usually
// remove the privilege needed to change gid).
func DropPrivileges(umask int, setgid, setuid *int) error {
	syscall.Umask(umask)
	if setgid != nil {
		if err := syscall.Setgid(*setgid); err != nil {
			return fmt.Errorf("setgid(%d) failed: %w", *setgid, err)
		}
	}
	if setuid != nil {
		if err := syscall.Setuid(*setuid); err != nil {
			return fmt.Errorf("setuid(%d) failed: %w", *setuid, err)
		}
	}
	return nil
}

// Exec performs C2 step 6: replace the calling process's image with
// /bin/sh -c "exec <command>". The "exec " prefix makes the shell replace
// itself, so the pid recorded in the pidfile is the long-lived child's own
// pid. Exec never returns on success.
func Exec(command string, environ []string) error {
	return syscall.Exec("/bin/sh", []string{"sh", "-c", "exec " + command}, environ)
}

// RunFull performs the complete C2 sequence (all six steps) directly in
// the calling process, with no fork. This is what `debug` uses;
// `finitd-launch` (the reexec'd Child body, which only needs steps 3-6,
// since the Watcher already did 1-2) calls RunPrivilegedExec directly.
func RunFull(p *Params) error {
	if err := ChdirChroot(p.Chdir, p.Chroot); err != nil {
		return err
	}
	return RunPrivilegedExec(p)
}

// RunPrivilegedExec performs C2 steps 3-6 only (umask, setgid, setuid,
// exec), assuming chdir/chroot already happened in an ancestor process.
func RunPrivilegedExec(p *Params) error {
	if err := DropPrivileges(p.Umask, p.Setgid, p.Setuid); err != nil {
		return err
	}
	return Exec(p.Command, p.Environ)
}

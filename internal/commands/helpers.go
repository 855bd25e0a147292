package commands

import (
	"syscall"

	"github.com/finitd/finitd/internal/config"
	"github.com/finitd/finitd/internal/launcher"
	"github.com/finitd/finitd/internal/procutil"
)

// checkProcessAlive reads the current child pid from options.pidfile and
// probes its liveness, returning 0 if there is no pidfile, no pid on
// record, or the recorded pid is dead.
func checkProcessAlive(c *config.Config) (int, error) {
	pidfile := c.OptionsPidfile()
	if pidfile == nil {
		return 0, invalidf("finitd.options.pidfile is not configured.")
	}
	pid, err := procutil.GetPidFromFile(*pidfile)
	if err != nil {
		return 0, err
	}
	if pid == 0 {
		return 0, nil
	}
	return procutil.CheckAlive(pid), nil
}

// chdirToChild changes into child.chdir, so relative pidfile paths in the
// config resolve against it for stop and for kill/restart, which run stop
// first (§4.5 "stop" precondition note, §6 "Both paths are resolved
// relative to child.chdir"). Status and start do not call it.
func chdirToChild(c *config.Config) error {
	if err := syscall.Chdir(c.ChildChdir()); err != nil {
		return exitWith(-1, "chdir to %q failed: %v", c.ChildChdir(), err)
	}
	return nil
}

// chdirChroot applies C2 steps 1-2 directly in the calling process, for
// arbitrary commands, which then run their shell command from there.
// `debug` gets the same steps through launcher.RunFull.
func chdirChroot(c *config.Config) error {
	return launcher.ChdirChroot(c.ChildChdir(), c.ChildChroot())
}

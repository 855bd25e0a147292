//go:build !windows

package commands

import (
	"syscall"
	"time"

	"github.com/finitd/finitd/internal/config"
	"github.com/finitd/finitd/internal/launcher"
	"github.com/finitd/finitd/internal/procutil"
)

// Stop implements the `stop` command (§4.5).
type Stop struct{}

func (Stop) Name() string { return "stop" }
func (Stop) Help() string { return "Stops the running child process by sending it SIGTERM." }

func (Stop) CheckConfig(c *config.Config) error {
	if c.OptionsPidfile() == nil {
		return invalidf("Cannot stop the process without a configured finitd.options.pidfile.")
	}
	if c.StopCommand() != nil && c.StopSignalIsSet() {
		return invalidf("finitd.commands.stop.command and finitd.commands.stop.signal cannot be configured simultaneously.")
	}
	return nil
}

func (Stop) Run(ctx *Context, args []string) error {
	c := ctx.Config
	if err := chdirToChild(c); err != nil {
		return err
	}

	pid, err := checkProcessAlive(c)
	if err != nil {
		return err
	}
	if pid == 0 {
		ctx.Stdout.Write([]byte("Process is not running.\n"))
		return &ExitError{Code: 1}
	}

	watcherPidfile := c.WatcherPidfile()
	if watcherPidfile != "" && c.WatcherRestart() {
		if watcherPid, err := procutil.GetPidFromFile(watcherPidfile); err == nil && watcherPid != 0 {
			// Tell the watcher to remove its own pidfile and exit, so it
			// does not observe the child's death below and restart it.
			syscall.Kill(watcherPid, syscall.SIGUSR1)
			time.Sleep(1 * time.Second)
		}
	}

	if stopCmd := c.StopCommand(); stopCmd != nil {
		params, err := launcher.ParamsFromConfig(c, ctx.Environ)
		if err != nil {
			return exitWith(-1, "%v", err)
		}
		return launcher.Exec(*stopCmd, params.Environ)
	}

	sig, err := c.StopSignal()
	if err != nil {
		return exitWith(-1, "%v", err)
	}
	if err := syscall.Kill(pid, sig); err != nil {
		return exitWith(-1, "failed to signal pid %d: %v", pid, err)
	}
	return nil
}

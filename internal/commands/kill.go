//go:build !windows

package commands

import (
	"syscall"
	"time"

	"github.com/finitd/finitd/internal/config"
)

// Kill implements the `kill` command: stop ordinarily, escalate to
// SIGKILL if the process does not exit within killWaitTime.
type Kill struct{}

func (Kill) Name() string { return "kill" }
func (Kill) Help() string {
	return "Attempts to stop the process ordinarily, but if that fails, sends the process SIGKILL."
}

func (Kill) CheckConfig(c *config.Config) error {
	return (Stop{}).CheckConfig(c)
}

func (Kill) Run(ctx *Context, args []string) error {
	c := ctx.Config
	if err := (Stop{}).Run(ctx, nil); err != nil {
		return err
	}

	deadline := time.Now().Add(time.Duration(c.OptionsKillWaitTime()) * time.Second)
	for time.Now().Before(deadline) {
		pid, err := checkProcessAlive(c)
		if err != nil {
			return err
		}
		if pid == 0 {
			return nil
		}
		time.Sleep(1 * time.Second)
	}

	pid, err := checkProcessAlive(c)
	if err != nil {
		return err
	}
	if pid == 0 {
		return nil
	}

	if err := syscall.Kill(pid, syscall.SIGKILL); err != nil {
		return exitWith(-1, "failed to SIGKILL pid %d: %v", pid, err)
	}
	waitFor(time.Duration(c.OptionsRestartWaitTime()) * time.Second)

	pid, err = checkProcessAlive(c)
	if err != nil {
		return err
	}
	if pid != 0 {
		return exitWith(-1, "Cannot kill process %d", pid)
	}
	return nil
}

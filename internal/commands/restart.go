//go:build !windows

package commands

import (
	"time"

	"github.com/finitd/finitd/internal/config"
)

// Restart implements the `restart` command: stop, then wait
// options.restartWaitTime, then start.
type Restart struct{}

func (Restart) Name() string { return "restart" }
func (Restart) Help() string {
	return "Restarts the process. Equivalent to `stop` followed by `start`."
}

func (Restart) CheckConfig(c *config.Config) error {
	if err := (Stop{}).CheckConfig(c); err != nil {
		return err
	}
	return (Start{}).CheckConfig(c)
}

func (Restart) Run(ctx *Context, args []string) error {
	// Mirrors commands.py: stop's sys.exit(1) on NotRunning propagates
	// all the way out of restart too, rather than being swallowed.
	if err := (Stop{}).Run(ctx, nil); err != nil {
		return err
	}

	waitFor(time.Duration(ctx.Config.OptionsRestartWaitTime()) * time.Second)

	pid, err := checkProcessAlive(ctx.Config)
	if err != nil {
		return err
	}
	if pid != 0 {
		return exitWith(-1, "Process is still running at pid %d", pid)
	}

	return (Start{}).Run(ctx, nil)
}

// waitFor busy-waits in one-second increments, the shape commands.py uses,
// so a future cancellation point could be added per-second without
// restructuring the loop.
func waitFor(d time.Duration) {
	until := time.Now().Add(d)
	for time.Now().Before(until) {
		time.Sleep(1 * time.Second)
	}
}

//go:build !windows

package commands

import (
	"os"

	"github.com/finitd/finitd/internal/config"
	"github.com/finitd/finitd/internal/daemon"
)

// Start implements the `start` command (§4.5).
type Start struct{}

func (Start) Name() string { return "start" }
func (Start) Help() string { return "Starts the configured child process." }

func (Start) CheckConfig(c *config.Config) error {
	return checkStartPreconditions(c)
}

// checkStartPreconditions is shared with Debug, which inherits start's
// preconditions (both ultimately run the same C2 launch sequence).
func checkStartPreconditions(c *config.Config) error {
	if c.OptionsPidfile() == nil {
		return invalidf("finitd.options.pidfile must be configured.")
	}
	if c.WatcherRestart() && !c.WatcherWait() {
		return invalidf("finitd.watcher.wait must be set if finitd.watcher.restart is set.")
	}
	uid, err := c.ChildSetuid()
	if err != nil {
		return invalidf("%v", err)
	}
	if uid != nil && os.Getuid() != 0 {
		return invalidf("You must be root if finitd.child.setuid is set.")
	}
	gid, err := c.ChildSetgid()
	if err != nil {
		return invalidf("%v", err)
	}
	if gid != nil && os.Getuid() != 0 {
		return invalidf("You must be root if finitd.child.setgid is set.")
	}
	return nil
}

func (Start) Run(ctx *Context, args []string) error {
	pid, err := checkProcessAlive(ctx.Config)
	if err != nil {
		return err
	}
	if pid != 0 {
		// Exit code matches start-stop-daemon's convention for "already running".
		return exitWith(1,
			"Process appears to be alive at pid %d. If this is not the process "+
				"you're attempting to start, remove the pidfile %s and start again.",
			pid, derefOr(ctx.Config.OptionsPidfile(), ""))
	}

	proc, err := daemon.Spawn(ctx.ConfigPath, ctx.AbsConfigPath)
	if err != nil {
		return exitWith(-1, "failed to daemonize: %v", err)
	}
	ctx.Log.Infof("watcher started at pid %d", proc.Pid)
	return nil
}

func derefOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

//go:build !windows

package commands

import (
	"github.com/finitd/finitd/internal/config"
	"github.com/finitd/finitd/internal/launcher"
)

// Debug implements the `debug` command (§4.5): it applies the full C2
// sequence in the controller process directly, with no daemonization, so
// a misconfigured launch fails loudly and visibly instead of silently in
// a backgrounded watcher.
type Debug struct{}

func (Debug) Name() string { return "debug" }
func (Debug) Help() string {
	return "Starts the configured child process without daemonizing or " +
		"redirecting stdin/stdout/stderr, for debugging problems with starting the process."
}

// CheckConfig is identical to start's, since debug runs the same launch
// sequence synchronously.
func (Debug) CheckConfig(c *config.Config) error {
	return checkStartPreconditions(c)
}

func (Debug) Run(ctx *Context, args []string) error {
	params, err := launcher.ParamsFromConfig(ctx.Config, ctx.Environ)
	if err != nil {
		return exitWith(-1, "%v", err)
	}
	if err := launcher.RunFull(params); err != nil {
		return exitWith(-1, "exec failed: %v", err)
	}
	// launcher.RunFull only returns on failure: syscall.Exec replaces the
	// process image on success and never returns.
	return nil
}

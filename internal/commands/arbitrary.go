//go:build !windows

package commands

import (
	"os/exec"

	"github.com/finitd/finitd/internal/config"
)

// Arbitrary implements commands.arbitrary.<name>: a user-defined command
// that runs its configured shell command after chdir/chroot, waiting for
// it to complete (unlike `stop`'s commands.stop.command, which replaces
// the controller process).
type Arbitrary struct {
	name    string
	help    string
	command string
}

// NewArbitrary builds the Arbitrary command registered under
// commands.arbitrary.<name>. CheckConfig must run before Help/Run reflect
// the real command text, matching the dispatcher's checkConfig-then-run
// ordering (§4.7).
func NewArbitrary(name string) *Arbitrary {
	return &Arbitrary{name: name, help: "(No help text provided)"}
}

func (a *Arbitrary) Name() string { return a.name }
func (a *Arbitrary) Help() string { return a.help }

func (a *Arbitrary) CheckConfig(c *config.Config) error {
	a.help = c.ArbitraryHelp(a.name)
	a.command = c.ArbitraryCommand(a.name)
	if a.command == "" {
		return invalidf("finitd.commands.arbitrary.%s.command must be set.", a.name)
	}
	return nil
}

func (a *Arbitrary) Run(ctx *Context, args []string) error {
	if err := chdirChroot(ctx.Config); err != nil {
		return exitWith(-1, "%v", err)
	}
	cmd := exec.Command("/bin/sh", "-c", a.command)
	cmd.Env = config.EnvironmentSlice(ctx.Environ)
	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitWith(exitErr.ExitCode(), "%s exited with status %d", a.command, exitErr.ExitCode())
		}
		return exitWith(-1, "%v", err)
	}
	return nil
}

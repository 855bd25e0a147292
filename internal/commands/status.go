package commands

import (
	"fmt"

	"github.com/finitd/finitd/internal/config"
)

// Status implements the `status` command.
type Status struct{}

func (Status) Name() string { return "status" }
func (Status) Help() string {
	return "Returns whether the process is alive or not. Prints a message and exits " +
		"with status 0 if the process exists, with status 1 if it does not."
}

func (Status) CheckConfig(c *config.Config) error { return nil }

func (Status) Run(ctx *Context, args []string) error {
	pid, err := checkProcessAlive(ctx.Config)
	if err != nil {
		return err
	}
	if pid != 0 {
		fmt.Fprintf(ctx.Stdout, "Process is running at pid %d\n", pid)
		return nil
	}
	fmt.Fprintln(ctx.Stdout, "Process is not running.")
	return &ExitError{Code: 1}
}

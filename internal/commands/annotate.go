package commands

import "github.com/finitd/finitd/internal/config"

// Annotate implements the `annotate` command: writes the current config
// tree, annotated with its defaults and documentation, to stdout. Useful
// with /dev/null as a configuration file to produce a template ready for
// editing.
type Annotate struct{}

func (Annotate) Name() string { return "annotate" }
func (Annotate) Help() string {
	return "Annotates the given configuration file and outputs it to stdout."
}

func (Annotate) CheckConfig(c *config.Config) error { return nil }

func (Annotate) Run(ctx *Context, args []string) error {
	return ctx.Config.WriteAnnotated(ctx.Stdout)
}

package commands

import (
	"io"

	"github.com/finitd/finitd/internal/config"
	"github.com/finitd/finitd/internal/logger"
)

// Context is the shared environment every command's Run receives: the
// loaded config, the environment built by C6, and the I/O the controller
// should use to report results (plain os.Stdout/Stderr in production,
// buffers in tests).
type Context struct {
	Config        *config.Config
	Environ       map[string]string
	Log           logger.Logger
	ConfigPath    string
	AbsConfigPath string
	Stdout        io.Writer
	Stderr        io.Writer
}

// Command is the interface every built-in and arbitrary command satisfies,
// per the "class-per-command hierarchy" design note in spec.md §9: a
// command is a value with two capabilities, a precondition check and a
// run step.
type Command interface {
	Name() string
	Help() string
	CheckConfig(c *config.Config) error
	Run(ctx *Context, args []string) error
}

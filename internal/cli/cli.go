// Package cli implements component C7: argument parsing and command
// dispatch for the finitd binary, grounded on enkit's machinist
// NewRootCommand for the cobra wiring and on
// _examples/original_source/finitd/main.py for the dispatch semantics
// (config file as the mandatory first positional argument, dynamic
// per-config arbitrary commands, checkConfig before run).
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/finitd/finitd/internal/commands"
	"github.com/finitd/finitd/internal/config"
	"github.com/finitd/finitd/internal/logger"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the finitd root command. Unlike a typical cobra
// tree, the available subcommands depend on the configuration file named
// by the first positional argument, so dispatch happens inside RunE
// rather than through cobra.Command.AddCommand.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "finitd <configfile> <command> [args...]",
		Short:         "Supervises a single child process, babysitter-style.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return Dispatch(args)
		},
	}
	return root
}

// Dispatch loads args[0] as the configuration file, resolves args[1] as a
// command name against the built-in commands plus the config's
// commands.arbitrary.* entries, and runs it. It follows main.py's main():
// open file, load config, readenv, build command objects, pop the command
// name, checkConfig, makeEnvironment, run. It does not open syslog; the
// controller logs to stderr, and the watcher opens its own syslog
// connection in daemon.Bootstrap.
func Dispatch(args []string) error {
	configPath := args[0]
	rest := args[1:]

	absConfigPath, err := filepath.Abs(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not resolve configuration file %q: %v\n", configPath, err)
		os.Exit(-1)
	}

	tree, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not open configuration file %q: %v\n", configPath, err)
		os.Exit(-1)
	}
	tree.ReadEnv(os.Environ())
	c := config.New(tree)

	cmds := commands.All(c)

	if len(rest) == 0 {
		fmt.Fprintln(os.Stderr, "A command must be provided.")
		printUsage(os.Args[0], configPath, cmds)
		os.Exit(2)
	}
	commandName, commandArgs := rest[0], rest[1:]

	cmd, ok := commands.Lookup(cmds, commandName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Invalid command: %q\n", commandName)
		printUsage(os.Args[0], configPath, cmds)
		os.Exit(2)
	}

	progname := filepath.Base(os.Args[0])

	if err := cmd.CheckConfig(c); err != nil {
		if invalid, ok := err.(*commands.InvalidConfiguration); ok {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %s\n", invalid.Reason)
			os.Exit(-1)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(-1)
	}

	environ := config.BuildEnvironment(c)
	log := logger.New(os.Stderr, progname, absConfigPath)

	ctx := &commands.Context{
		Config:        c,
		Environ:       environ,
		Log:           log,
		ConfigPath:    configPath,
		AbsConfigPath: absConfigPath,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
	}
	if err := cmd.Run(ctx, commandArgs); err != nil {
		if exitErr, ok := err.(*commands.ExitError); ok {
			if exitErr.Message != "" {
				fmt.Fprintln(os.Stderr, exitErr.Message)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(-1)
	}
	return nil
}

func printUsage(progname, configFilename string, cmds []commands.Command) {
	fmt.Fprintf(os.Stderr, "\nUsage: %s %s {%s}\n\nCommands:\n",
		filepath.Base(progname), configFilename, joinNames(cmds))
	for _, cmd := range cmds {
		fmt.Fprintf(os.Stderr, "  %-10s %s\n", cmd.Name(), cmd.Help())
	}
}

func joinNames(cmds []commands.Command) string {
	out := ""
	for i, cmd := range cmds {
		if i > 0 {
			out += "|"
		}
		out += cmd.Name()
	}
	return out
}

// Command finitd supervises a single child process: start it, watch it,
// restart it on crash, and stop it cleanly.
//
// Like faketree, finitd needs to move a single OS process through several
// distinct stages (detach into a new session, then relaunch the
// configured child) without ever calling a raw fork() in this
// multi-threaded runtime. It uses the same state-machine-over-argv[0]
// technique: docker/pkg/reexec associates a stage name with a function,
// and each stage advances by spawning a fresh copy of this binary with
// the next stage's name as argv[0].
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/docker/docker/pkg/reexec"
	"github.com/finitd/finitd/internal/cli"
	"github.com/finitd/finitd/internal/daemon"
	"github.com/finitd/finitd/internal/watcher"
	"github.com/spf13/pflag"
)

func runWatchStage() {
	args := os.Args[1:]
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "finitd-watch: expected <configPath> <absConfigPath>")
		os.Exit(1)
	}
	if err := daemon.Bootstrap(args[0], args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "finitd-watch: %v\n", err)
		os.Exit(1)
	}
}

func runLaunchStage() {
	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "finitd-launch: expected <configPath>")
		os.Exit(1)
	}
	// RunLaunchStage ends in syscall.Exec and never returns on success.
	if err := watcher.RunLaunchStage(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "finitd-launch: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	reexec.Register(daemon.ReexecStageName, runWatchStage)
	reexec.Register(watcher.LaunchStageName, runLaunchStage)
	if reexec.Init() {
		return
	}

	root := cli.NewRootCommand()
	root.SetArgs(os.Args[1:])
	if err := root.Execute(); err != nil {
		// cobra surfaces pflag's own sentinel for -h/--help as an error;
		// treat it as the successful, zero-exit-status case faketree.go's
		// exit() does for pflag.ErrHelp.
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(-1)
	}
}

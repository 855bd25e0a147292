//go:build !windows

// Package daemon implements component C3: the daemonization sequence that
// turns the `start` command's reexec'd child into the long-lived Watcher.
//
// Go cannot safely call raw fork() in a multi-threaded runtime, so the
// fork-to-background step (§4.3 step 2) is performed by the controller
// spawning a fresh copy of the binary with
// syscall.SysProcAttr{Setsid: true} — the kernel performs the session
// detachment as part of the clone, which is the Go-native equivalent of
// "fork(); setsid()" and fails fatally through exec.Cmd.Start() exactly as
// spec.md §4.3 step 3 requires. See faketree.go's enterSystem(), which
// reexecs itself with a Cloneflags-bearing SysProcAttr for the same reason.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/docker/docker/pkg/reexec"
	"github.com/finitd/finitd/internal/config"
	"github.com/finitd/finitd/internal/launcher"
	"github.com/finitd/finitd/internal/logger"
	"github.com/finitd/finitd/internal/procutil"
	"github.com/finitd/finitd/internal/watcher"
)

// ReexecStageName is the argv[0]/reexec.Register name for the Watcher
// body, mirroring faketree's "initialize-system"/"initialize-privileges"
// stage names.
const ReexecStageName = "finitd-watch"

// Spawn launches the Watcher stage as a detached, session-leading process
// and returns immediately — it is the Go-native "fork; parent exits with
// status 0" (§4.3 steps 1-2). The syslog redirection (§4.3 step 1) happens
// inside the new process itself (see Bootstrap), since nothing written to
// this process's stdout/stderr would be inherited across a reexec anyway.
func Spawn(configPath, absConfigPath string) (*os.Process, error) {
	cmd := reexec.Command(ReexecStageName, configPath, absConfigPath)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("setsid failed: %w", err)
	}
	// Forget the child so it is not left as a zombie once it exits; the
	// watcher is intentionally orphaned the way a double-forked daemon is.
	go cmd.Wait()
	return cmd.Process, nil
}

// maxOpenFiles returns the OS-reported open-file limit, falling back to
// 256 per §4.3 step 5.
func maxOpenFiles() int {
	var rlimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rlimit); err != nil {
		return 256
	}
	if rlimit.Cur == 0 || rlimit.Cur > 1<<20 {
		return 256
	}
	return int(rlimit.Cur)
}

// CloseAllFiles closes every file descriptor up to the OS-reported
// maximum, per §4.3 step 5.
func CloseAllFiles() {
	max := maxOpenFiles()
	for fd := 0; fd < max; fd++ {
		syscall.Close(fd)
	}
}

// BindStdio opens the configured stdin/stdout/stderr files and rebinds the
// process's fds 0/1/2 to them, per §4.3 steps 6-8. It must run immediately
// after CloseAllFiles so the OS hands out exactly fds 0, 1, 2 in order.
//
// It also repoints the Go-level os.Stdin/os.Stdout/os.Stderr handles so
// that any later code in this process (including panics) writes to the
// correct descriptors instead of the ones closed above.
func BindStdio(c *config.Config) error {
	stdinFd, err := syscall.Open(c.ChildStdin(), syscall.O_CREAT|syscall.O_RDONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening stdin file %q failed: %w", c.ChildStdin(), err)
	}
	if stdinFd != 0 {
		return fmt.Errorf("internal error: stdin landed at fd %d, not 0", stdinFd)
	}

	stdoutFd, err := syscall.Open(c.ChildStdout(), syscall.O_CREAT|syscall.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening stdout file %q failed: %w", c.ChildStdout(), err)
	}
	if stdoutFd != 1 {
		return fmt.Errorf("internal error: stdout landed at fd %d, not 1", stdoutFd)
	}

	if c.ChildStderr() != c.ChildStdout() {
		stderrFd, err := syscall.Open(c.ChildStderr(), syscall.O_CREAT|syscall.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("opening stderr file %q failed: %w", c.ChildStderr(), err)
		}
		if stderrFd != 2 {
			return fmt.Errorf("internal error: stderr landed at fd %d, not 2", stderrFd)
		}
	} else {
		if err := syscall.Dup2(1, 2); err != nil {
			return fmt.Errorf("dup2(1, 2) failed: %w", err)
		}
	}

	os.Stdin = os.NewFile(0, c.ChildStdin())
	os.Stdout = os.NewFile(1, c.ChildStdout())
	os.Stderr = os.NewFile(2, c.ChildStderr())
	return nil
}

// Bootstrap is the body of the finitd-watch reexec stage: it turns the
// freshly setsid'd process spawned by Spawn into the long-lived Watcher.
// It is the Go-native equivalent of the second half of start.run() in
// commands.py, from "chdir/chroot" through "enter the watcher loop" —
// everything after the fork() the Setsid-based Spawn already performed.
func Bootstrap(configPath, absConfigPath string) error {
	tree, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("watcher could not reload configuration: %w", err)
	}
	tree.ReadEnv(os.Environ())
	c := config.New(tree)

	if err := launcher.ChdirChroot(c.ChildChdir(), c.ChildChroot()); err != nil {
		return err
	}

	CloseAllFiles()
	if err := BindStdio(c); err != nil {
		return err
	}

	progname := filepath.Base(reexec.Self())
	tag := fmt.Sprintf("%s %s", progname, absConfigPath)
	infoSink, err := procutil.NewInfoSink(tag)
	if err != nil {
		return fmt.Errorf("could not open syslog: %w", err)
	}
	defer infoSink.Close()
	errSink, err := procutil.NewErrSink(tag)
	if err != nil {
		return fmt.Errorf("could not open syslog: %w", err)
	}
	defer errSink.Close()

	log := logger.NewSplit(infoSink, errSink, progname, absConfigPath)
	environ := config.BuildEnvironment(c)

	return watcher.Run(c, watcher.Options{
		ConfigPath: absConfigPath,
		Environ:    environ,
		Log:        log,
	})
}

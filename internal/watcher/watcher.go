//go:build !windows

// Package watcher implements component C4: the fork/wait/restart-backoff
// loop that supervises one child generation at a time.
package watcher

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/docker/docker/pkg/reexec"
	"github.com/finitd/finitd/internal/config"
	"github.com/finitd/finitd/internal/launcher"
	"github.com/finitd/finitd/internal/logger"
	"github.com/finitd/finitd/internal/procutil"
	"github.com/google/uuid"
)

// LaunchStageName is the reexec stage name for the Child body, mirroring
// faketree's own reexec.Register naming convention.
const LaunchStageName = "finitd-launch"

// Options bundles everything the loop needs beyond the config tree.
type Options struct {
	ConfigPath string
	Environ    map[string]string
	Log        logger.Logger
}

// Run executes the watcher loop described in §4.4 until it decides to
// stop supervising, then removes watcher.pidfile and returns.
//
// It never daemonizes itself — by the time Run is called the process is
// already the detached Watcher (see internal/daemon).
func Run(c *config.Config, opts Options) error {
	pidfile := c.OptionsPidfile()
	if pidfile == nil {
		return fmt.Errorf("finitd.options.pidfile is not configured")
	}
	watcherPidfile := c.WatcherPidfile()
	watcherPid := os.Getpid()
	restartWait := time.Duration(c.WatcherRestartWait()) * time.Second
	environSlice := config.EnvironmentSlice(opts.Environ)

	log := opts.Log

	sigusr1 := make(chan os.Signal, 1)
	signal.Notify(sigusr1, syscall.SIGUSR1)
	go func() {
		<-sigusr1
		log.Infof("received SIGUSR1, removing watcher pidfile and exiting")
		procutil.RemovePidfile(watcherPidfile)
		os.Exit(0)
	}()

	var lastRestart time.Time
	for shouldSpawn(time.Now(), lastRestart, restartWait) {
		lastRestart = time.Now()
		iteration := uuid.New().String()[:8]
		log.Infof("[%s] starting process", iteration)

		cmd := reexec.Command(LaunchStageName, opts.ConfigPath)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = environSlice

		if err := cmd.Start(); err != nil {
			log.Errorf("[%s] failed to start child process: %v", iteration, err)
			break
		}
		childPid := cmd.Process.Pid
		log.Infof("[%s] child process started at pid %d", iteration, childPid)

		if err := procutil.WritePidfile(childPid, *pidfile); err != nil {
			log.Errorf("[%s] failed to write pidfile: %v", iteration, err)
		}

		if !c.WatcherWait() {
			// Fire-and-forget: the watcher exits immediately. The child
			// pidfile is intentionally left behind (§9 open question);
			// operators are responsible for cleanup in this mode.
			break
		}

		if err := procutil.WritePidfile(watcherPid, watcherPidfile); err != nil {
			log.Errorf("[%s] failed to write watcher pidfile: %v", iteration, err)
		}

		exitCode := waitForExit(cmd)
		log.Infof("[%s] process exited with status %d", iteration, exitCode)
		procutil.RemovePidfile(*pidfile)

		if shouldRestart(c.WatcherRestart(), exitCode) {
			if hook := c.WatcherRestartCommand(); hook != nil {
				log.Infof("[%s] running %q before restart", iteration, *hook)
				if err := exec.Command("/bin/sh", "-c", *hook).Run(); err != nil {
					log.Errorf("[%s] restart hook failed, exiting: %v", iteration, err)
					break
				}
			}
			continue
		}
		break
	}

	procutil.RemovePidfile(watcherPidfile)
	log.Infof("watcher exiting")
	return nil
}

// RunLaunchStage is the body of the finitd-launch reexec stage: the actual
// child generation the Watcher spawns each iteration. It reloads the
// config (a reexec gets a clean argv, not a shared memory space) and
// performs C2 steps 3-6 only, since chdir/chroot already happened once in
// Bootstrap and are inherited across exec. It never returns on success.
func RunLaunchStage(configPath string) error {
	tree, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("child could not reload configuration: %w", err)
	}
	tree.ReadEnv(os.Environ())
	c := config.New(tree)

	uid, err := c.ChildSetuid()
	if err != nil {
		return err
	}
	gid, err := c.ChildSetgid()
	if err != nil {
		return err
	}
	params := &launcher.Params{
		Command: c.ChildCommand(),
		Umask:   c.ChildUmask(),
		Setuid:  uid,
		Setgid:  gid,
		Environ: os.Environ(),
	}
	return launcher.RunPrivilegedExec(params)
}

// shouldSpawn implements the loop's entry condition (§4.4): a new child
// generation is only started if strictly more than wait seconds have
// elapsed since the most recent start. On the very first iteration
// lastRestart is the zero Time, so the condition is trivially true.
func shouldSpawn(now, lastRestart time.Time, wait time.Duration) bool {
	return now.After(lastRestart.Add(wait))
}

// shouldRestart decides whether a just-exited child should be relaunched:
// only when babysitting is enabled and the exit was not clean.
func shouldRestart(restartEnabled bool, exitCode int) bool {
	return restartEnabled && exitCode != 0
}

// waitForExit waits for cmd and returns the child's exit code. A child
// killed by a signal is reported the way the shell reports it: 128+signal.
func waitForExit(cmd *exec.Cmd) int {
	err := cmd.Wait()
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return 128 + int(status.Signal())
			}
			return status.ExitStatus()
		}
		return exitErr.ExitCode()
	}
	return -1
}

package config

import (
	"fmt"
	"strconv"
	"syscall"
)

// Config is the typed, read-only view over a loaded Tree, matching the
// data model in spec.md §3. Each accessor returns the field's effective
// value (configured value, or default). Pointer-typed returns distinguish
// "unset" from a valid zero value where the spec requires it (setuid,
// setgid, commands.stop.command, watcher.restart.command, options.envdir).
type Config struct {
	tree *Tree
}

// New wraps a Tree in the typed facade.
func New(tree *Tree) *Config {
	return &Config{tree: tree}
}

func (c *Config) str(path, def string) string {
	if v, ok := c.tree.get(path); ok {
		return v
	}
	return def
}

func (c *Config) strPtr(path string) *string {
	if v, ok := c.tree.get(path); ok {
		return &v
	}
	return nil
}

func (c *Config) boolean(path string, def bool) bool {
	v, ok := c.tree.get(path)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func (c *Config) integer(path string, def int) int {
	v, ok := c.tree.get(path)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// --- child.* ---

func (c *Config) ChildCommand() string { return c.str("child.command", "") }

func (c *Config) ChildStdin() string  { return c.str("child.stdin", "/dev/null") }
func (c *Config) ChildStdout() string { return c.str("child.stdout", "/dev/null") }

// ChildStderr defaults to whatever stdout resolves to, per conf.py's
// `child.register(hieropt.Value('stderr', default=child.stdout, ...))`.
func (c *Config) ChildStderr() string { return c.str("child.stderr", c.ChildStdout()) }

func (c *Config) ChildChdir() string { return c.str("child.chdir", "/") }
func (c *Config) ChildChroot() bool  { return c.boolean("child.chroot", false) }
func (c *Config) ChildUmask() int    { return c.integer("child.umask", 0) }

// ChildSetuid returns the configured uid, or nil if unset.
func (c *Config) ChildSetuid() (*int, error) {
	v, ok := c.tree.get("child.setuid")
	if !ok {
		return nil, nil
	}
	uid, err := lookupUid(v)
	if err != nil {
		return nil, err
	}
	return &uid, nil
}

// ChildSetgid returns the configured gid, or nil if unset.
func (c *Config) ChildSetgid() (*int, error) {
	v, ok := c.tree.get("child.setgid")
	if !ok {
		return nil, nil
	}
	gid, err := lookupGid(v)
	if err != nil {
		return nil, err
	}
	return &gid, nil
}

// --- commands.stop.* ---

func (c *Config) StopCommand() *string { return c.strPtr("commands.stop.command") }

func (c *Config) StopSignal() (syscall.Signal, error) {
	v, ok := c.tree.get("commands.stop.signal")
	if !ok {
		return syscall.SIGTERM, nil
	}
	return parseSignal(v)
}

// StopSignalIsSet reports whether commands.stop.signal was explicitly set
// in the loaded config, as distinct from defaulting to SIGTERM. The
// mutual-exclusion precondition with commands.stop.command only applies
// when both were explicitly configured.
func (c *Config) StopSignalIsSet() bool {
	_, ok := c.tree.get("commands.stop.signal")
	return ok
}

// --- commands.arbitrary.<name>.* ---

// ArbitraryCommands returns the names registered under commands.arbitrary.
func (c *Config) ArbitraryCommands() []string {
	return c.tree.children("commands.arbitrary")
}

func (c *Config) ArbitraryCommand(name string) string {
	return c.str(fmt.Sprintf("commands.arbitrary.%s.command", name), "")
}

func (c *Config) ArbitraryHelp(name string) string {
	return c.str(fmt.Sprintf("commands.arbitrary.%s.help", name), "(No help text provided)")
}

// --- env.* ---

// EnvVars returns the literal environment variables configured under
// env.*, as a map from variable name to value (map iteration order is not
// defined).
func (c *Config) EnvVars() map[string]string {
	out := map[string]string{}
	for _, name := range c.tree.children("env") {
		out[name] = c.str("env."+name, "")
	}
	return out
}

// --- options.* ---

func (c *Config) OptionsPidfile() *string { return c.strPtr("options.pidfile") }
func (c *Config) OptionsClearenv() bool   { return c.boolean("options.clearenv", false) }
func (c *Config) OptionsEnvdir() *string  { return c.strPtr("options.envdir") }
func (c *Config) OptionsRestartWaitTime() int {
	return c.integer("options.restartWaitTime", 10)
}
func (c *Config) OptionsKillWaitTime() int { return c.integer("options.killWaitTime", 60) }

// --- watcher.* ---

func (c *Config) WatcherWait() bool { return c.boolean("watcher.wait", true) }

// WatcherPidfile applies the lazy default options.pidfile+".watcher",
// mirroring conf.py's comment that this default must be evaluated against
// the owning tree, not eagerly at registration time.
func (c *Config) WatcherPidfile() string {
	if v, ok := c.tree.get("watcher.pidfile"); ok {
		return v
	}
	if pf := c.OptionsPidfile(); pf != nil {
		return *pf + ".watcher"
	}
	return ""
}

func (c *Config) WatcherRestart() bool { return c.boolean("watcher.restart", false) }
func (c *Config) WatcherRestartWait() int {
	return c.integer("watcher.restart.wait", 60)
}
func (c *Config) WatcherRestartCommand() *string {
	return c.strPtr("watcher.restart.command")
}

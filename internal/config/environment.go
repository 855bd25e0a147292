package config

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/finitd/finitd/internal/procutil"
)

// allLeaves enumerates every dotted path understood by the schema, in the
// fixed order the original's `for (name, value) in config` iterates its
// registered tree. commands.arbitrary and env are handled separately
// because their children are dynamic.
var allLeaves = []string{
	"child.command",
	"child.stdin",
	"child.stdout",
	"child.stderr",
	"child.chdir",
	"child.chroot",
	"child.umask",
	"child.setuid",
	"child.setgid",
	"commands.stop.command",
	"commands.stop.signal",
	"options.pidfile",
	"options.clearenv",
	"options.envdir",
	"options.restartWaitTime",
	"options.killWaitTime",
	"watcher.wait",
	"watcher.pidfile",
	"watcher.restart",
	"watcher.restart.wait",
	"watcher.restart.command",
}

// BuildEnvironment constructs the environment passed to both the child
// (via exec) and to arbitrary commands, per C6.
func BuildEnvironment(c *Config) map[string]string {
	environ := map[string]string{}
	if !c.OptionsClearenv() {
		for _, kv := range os.Environ() {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				environ[parts[0]] = parts[1]
			}
		}
	}

	// Step 2: every set leaf becomes an uppercased, underscored env var.
	for _, path := range allLeaves {
		v, ok := c.tree.get(path)
		if !ok {
			continue
		}
		name := "FINITD_" + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
		environ[name] = v

		if strings.HasSuffix(path, ".pidfile") {
			if pid, err := procutil.GetPidFromFile(v); err == nil && pid != 0 {
				if procutil.CheckAlive(pid) != 0 {
					base := strings.TrimSuffix(name, "_PIDFILE")
					environ[base] = strconv.Itoa(pid)
				}
			}
		}
	}

	// Step 3: options.envdir overrides with one var per file.
	if dir := c.OptionsEnvdir(); dir != nil {
		entries, err := os.ReadDir(*dir)
		if err == nil {
			for _, entry := range entries {
				if entry.IsDir() {
					continue
				}
				data, err := os.ReadFile(*dir + "/" + entry.Name())
				if err == nil {
					environ[entry.Name()] = string(data)
				}
			}
		}
	}

	// Step 4: env.* always wins last.
	for name, value := range c.EnvVars() {
		environ[name] = value
	}

	return environ
}

// EnvironmentSlice renders a map built by BuildEnvironment into the
// "NAME=value" slice os/exec and syscall.Exec expect, in sorted order for
// determinism (tests, debugging).
func EnvironmentSlice(environ map[string]string) []string {
	names := make([]string, 0, len(environ))
	for name := range environ {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, name+"="+environ[name])
	}
	return out
}

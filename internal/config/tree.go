// Package config implements the typed, read-only configuration facade
// specified as component C6. The hierarchical config loader itself is an
// out-of-scope external collaborator per spec.md §1; this package supplies
// the minimal dotted-path loader needed to exercise that facade, grounded
// on the original implementation's hieropt dotted namespace
// (_examples/original_source/finitd/conf.py) and modeled after the
// Store/Loader split in enkit's lib/config package.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/user"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/hashicorp/go-multierror"
)

// field describes one leaf of the config tree, with the metadata needed to
// render annotate's output and to apply defaults.
type field struct {
	path    string
	comment string
}

// Tree is the raw, parsed dotted-path namespace: every leaf that was
// explicitly set in the loaded file, plus the two dynamic namespaces
// (env.* and commands.arbitrary.<name>.*) used to discover their children.
type Tree struct {
	values map[string]string
}

func newTree() *Tree {
	return &Tree{values: map[string]string{}}
}

func (t *Tree) set(path, value string) {
	t.values[path] = value
}

func (t *Tree) get(path string) (string, bool) {
	v, ok := t.values[path]
	return v, ok
}

// children returns the distinct next path segment under prefix for every
// set leaf that starts with prefix+".", e.g. children("env") for
// "env.FOO" and "env.BAR" returns ["BAR", "FOO"].
func (t *Tree) children(prefix string) []string {
	seen := map[string]bool{}
	for k := range t.values {
		rest := strings.TrimPrefix(k, prefix+".")
		if rest == k {
			continue
		}
		name := strings.SplitN(rest, ".", 2)[0]
		seen[name] = true
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Load parses a dotted key/value configuration file.
//
// Format: one "finitd.dotted.path: value" assignment per line. Blank lines
// and lines starting with '#' are ignored. The leading "finitd." namespace
// prefix is optional on each line (both "finitd.child.command: ..." and
// "child.command: ..." are accepted), matching the flexibility of the
// original conf.py tree, whose root group is itself named "finitd".
func Load(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open configuration file %q: %w", path, err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) (*Tree, error) {
	tree := newTree()
	scanner := bufio.NewScanner(r)
	lineNo := 0
	var errs *multierror.Error
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			errs = multierror.Append(errs, fmt.Errorf("line %d: missing ':' in %q", lineNo, line))
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		key = strings.TrimPrefix(key, "finitd.")
		if key == "" {
			errs = multierror.Append(errs, fmt.Errorf("line %d: empty key", lineNo))
			continue
		}
		tree.set(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if errs != nil {
		return nil, errs
	}
	return tree, nil
}

// envNameToPath maps the FINITD_-stripped env var name for every known
// schema leaf back to its canonically-cased dotted path, e.g.
// "OPTIONS_RESTARTWAITTIME" -> "options.restartWaitTime". Blanket
// lowercasing the env name can't recover the camelCase schema keys
// (options.restartWaitTime, options.killWaitTime), so the mapping has to
// go through the same uppercasing BuildEnvironment uses, in reverse.
var envNameToPath = buildEnvNameToPath()

func buildEnvNameToPath() map[string]string {
	m := make(map[string]string, len(allLeaves))
	for _, path := range allLeaves {
		name := strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
		m[name] = path
	}
	return m
}

// ReadEnv applies environment-variable overrides, matching the original's
// config.readenv() step in main.py: FINITD_<DOTTED_PATH> overrides the
// value loaded from the file, for any leaf already known to the schema.
func (t *Tree) ReadEnv(environ []string) {
	for _, kv := range environ {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name, value := parts[0], parts[1]
		if !strings.HasPrefix(name, "FINITD_") {
			continue
		}
		path, ok := envNameToPath[strings.TrimPrefix(name, "FINITD_")]
		if !ok {
			continue
		}
		t.set(path, value)
	}
}

func lookupUid(name string) (int, error) {
	if n, err := strconv.Atoi(name); err == nil {
		return n, nil
	}
	u, err := user.Lookup(name)
	if err != nil {
		return 0, fmt.Errorf("could not look up user %q: %w", name, err)
	}
	return strconv.Atoi(u.Uid)
}

func lookupGid(name string) (int, error) {
	if n, err := strconv.Atoi(name); err == nil {
		return n, nil
	}
	g, err := user.LookupGroup(name)
	if err != nil {
		return 0, fmt.Errorf("could not look up group %q: %w", name, err)
	}
	return strconv.Atoi(g.Gid)
}

// signalNames covers the signals finitd's own config surface needs
// (commands.stop.signal and SIGUSR1 bookkeeping). The original's toString
// iterates dir(signal) at runtime; Go has no equivalent reflection over
// package-level constants, so the table is explicit.
var signalNames = map[string]syscall.Signal{
	"SIGHUP":  syscall.SIGHUP,
	"SIGINT":  syscall.SIGINT,
	"SIGQUIT": syscall.SIGQUIT,
	"SIGKILL": syscall.SIGKILL,
	"SIGUSR1": syscall.SIGUSR1,
	"SIGUSR2": syscall.SIGUSR2,
	"SIGTERM": syscall.SIGTERM,
	"SIGCONT": syscall.SIGCONT,
	"SIGSTOP": syscall.SIGSTOP,
}

func parseSignal(s string) (syscall.Signal, error) {
	sig, ok := signalNames[strings.ToUpper(s)]
	if !ok {
		return 0, fmt.Errorf("invalid signal value: %q", s)
	}
	return sig, nil
}

func signalName(sig syscall.Signal) string {
	for name, v := range signalNames {
		if v == sig {
			return name
		}
	}
	return sig.String()
}

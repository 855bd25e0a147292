package config

import (
	"fmt"
	"io"
)

// comments mirrors the per-field documentation strings attached to every
// hieropt.Value/Group.register call in conf.py, so annotate's output is
// useful as an editable template, not just a value dump.
var comments = map[string]string{
	"child.command": "Command to actually run. Will be parsed by /bin/sh -c.",
	"child.stdin":   "File to read child program's stdin from.",
	"child.stdout":  "File to write child program's stdout to.",
	"child.stderr":  "File to write child program's stderr to.",
	"child.chdir":   "Directory to change to before executing child.",
	"child.chroot":  "Whether or not to chroot in the 'chdir' directory.",
	"child.umask":   "Umask to set before executing child.",
	"child.setuid":  "Username to setuid to.",
	"child.setgid":  "Group name to setgid to.",

	"commands.stop.command": "Contains an optional command to run instead of just sending a signal to the child pid.",
	"commands.stop.signal":  "Determines what signal is sent to kill the process.",

	"commands.arbitrary": "Configuration for individual commands configured by the user. Each command supports a 'command' variable which specifies the actual command to run.",
	"env":                 "Variables that are placed into the environment before any command is run. To set the variable FOO to 'bar' add a line 'finitd.env.FOO: bar'.",

	"options.pidfile":         "The file to write with the pid of the spawned child process.",
	"options.clearenv":        "Determines whether to clear the environment before executing the child process.",
	"options.envdir":          "A directory wherein each file names an environment variable, the contents of that file being that variable's value.",
	"options.restartWaitTime": "Number of seconds to wait during a restart before attempting to start the process again.",
	"options.killWaitTime":    "Number of seconds to wait during a kill before killing the process forcefully.",

	"watcher.wait":            "Determines whether the watcher will wait for the child and remove the configured pidfile. Must be true for babysitting support.",
	"watcher.pidfile":         "A file to write the pid of the watcher. Defaults to <options.pidfile>.watcher.",
	"watcher.restart":         "Determines whether the watcher will restart the child if the child crashes.",
	"watcher.restart.wait":    "Minimum number of seconds between two starts of the child process. If the child fails sooner than this after its most recent start, it is not restarted and the watcher exits.",
	"watcher.restart.command": "Hook to run between restarts.",
}

// annotatedOrder is the order annotate renders fields in, following the
// registration order of conf.py.
var annotatedOrder = []string{
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
	"commands.arbitrary",
	"env",
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

// WriteAnnotated writes the current config tree, annotated with per-field
// comments, to w, satisfying the `annotate` command (§4.5) and the
// round-trip testable property (§8 item 6): the output can be re-parsed by
// Load and yields an equivalent Tree. Leaves that were never set are
// written as commented-out lines showing their default, so they stay unset
// when the output is parsed again.
func (c *Config) WriteAnnotated(w io.Writer) error {
	for _, path := range annotatedOrder {
		if comment, ok := comments[path]; ok {
			for _, line := range wrapComment(comment) {
				if _, err := fmt.Fprintf(w, "# %s\n", line); err != nil {
					return err
				}
			}
		}
		if path == "commands.arbitrary" || path == "env" {
			continue // pure group headers; their children render below.
		}
		value, ok := c.tree.get(path)
		prefix := ""
		if !ok {
			value = defaultString(c, path)
			prefix = "# "
		}
		if _, err := fmt.Fprintf(w, "%sfinitd.%s: %s\n\n", prefix, path, value); err != nil {
			return err
		}
	}

	for _, name := range c.ArbitraryCommands() {
		fmt.Fprintf(w, "finitd.commands.arbitrary.%s.command: %s\n", name, c.ArbitraryCommand(name))
		fmt.Fprintf(w, "finitd.commands.arbitrary.%s.help: %s\n\n", name, c.ArbitraryHelp(name))
	}

	for name, value := range c.EnvVars() {
		fmt.Fprintf(w, "finitd.env.%s: %s\n", name, value)
	}
	return nil
}

// defaultString renders the effective default for a field that was never
// set, so annotate's output (where such fields appear commented out) is a
// usable template even for an empty starting tree (e.g.
// `finitd /dev/null annotate`).
func defaultString(c *Config, path string) string {
	switch path {
	case "child.stdin":
		return c.ChildStdin()
	case "child.stdout":
		return c.ChildStdout()
	case "child.stderr":
		return c.ChildStderr()
	case "child.chdir":
		return c.ChildChdir()
	case "child.chroot":
		return fmt.Sprintf("%v", c.ChildChroot())
	case "child.umask":
		return fmt.Sprintf("%d", c.ChildUmask())
	case "commands.stop.signal":
		sig, _ := c.StopSignal()
		return signalName(sig)
	case "options.clearenv":
		return fmt.Sprintf("%v", c.OptionsClearenv())
	case "options.restartWaitTime":
		return fmt.Sprintf("%d", c.OptionsRestartWaitTime())
	case "options.killWaitTime":
		return fmt.Sprintf("%d", c.OptionsKillWaitTime())
	case "watcher.wait":
		return fmt.Sprintf("%v", c.WatcherWait())
	case "watcher.pidfile":
		return c.WatcherPidfile()
	case "watcher.restart":
		return fmt.Sprintf("%v", c.WatcherRestart())
	case "watcher.restart.wait":
		return fmt.Sprintf("%d", c.WatcherRestartWait())
	default:
		return ""
	}
}

// wrapComment splits a long comment string into ~70-column lines, the way
// main.py's makeHelp uses textwrap.fill for command help text.
func wrapComment(s string) []string {
	const width = 70
	words := splitWords(s)
	var lines []string
	var current string
	for _, word := range words {
		if current == "" {
			current = word
			continue
		}
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
			continue
		}
		current += " " + word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

func splitWords(s string) []string {
	var words []string
	start := -1
	for i, r := range s {
		if r == ' ' || r == '\t' || r == '\n' {
			if start >= 0 {
				words = append(words, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, s[start:])
	}
	return words
}

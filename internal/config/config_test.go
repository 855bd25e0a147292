package config

import (
	"bytes"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
# a comment
finitd.child.command: echo foo
finitd.child.stdout: /tmp/out
child.stderr: /tmp/out
finitd.options.pidfile: /tmp/run/foo.pid
finitd.watcher.restart: true
finitd.commands.arbitrary.reload.command: kill -HUP 1
finitd.commands.arbitrary.reload.help: reload the service
finitd.env.FOO: bar
`

func mustParse(t *testing.T) *Config {
	t.Helper()
	tree, err := parse(strings.NewReader(sample))
	require.NoError(t, err)
	return New(tree)
}

func TestAccessorsAndDefaults(t *testing.T) {
	c := mustParse(t)

	assert.Equal(t, "echo foo", c.ChildCommand())
	assert.Equal(t, "/tmp/out", c.ChildStdout())
	assert.Equal(t, "/tmp/out", c.ChildStderr())
	assert.Equal(t, "/dev/null", c.ChildStdin(), "unset leaf must fall back to default")
	assert.Equal(t, "/", c.ChildChdir())
	assert.False(t, c.ChildChroot())
	assert.Equal(t, 0, c.ChildUmask())

	assert.Equal(t, 10, c.OptionsRestartWaitTime())
	assert.Equal(t, 60, c.OptionsKillWaitTime())
	assert.True(t, c.WatcherWait())
	assert.True(t, c.WatcherRestart())
	assert.Equal(t, "/tmp/run/foo.pid.watcher", c.WatcherPidfile(), "lazy default derived from options.pidfile")

	sig, err := c.StopSignal()
	require.NoError(t, err)
	assert.Equal(t, syscall.SIGTERM, sig)
}

func TestArbitraryCommands(t *testing.T) {
	c := mustParse(t)
	assert.Equal(t, []string{"reload"}, c.ArbitraryCommands())
	assert.Equal(t, "kill -HUP 1", c.ArbitraryCommand("reload"))
	assert.Equal(t, "reload the service", c.ArbitraryHelp("reload"))
	assert.Equal(t, "(No help text provided)", c.ArbitraryHelp("nonexistent"))
}

func TestEnvVars(t *testing.T) {
	c := mustParse(t)
	assert.Equal(t, map[string]string{"FOO": "bar"}, c.EnvVars())
}

func TestWatcherPidfileExplicitOverridesDefault(t *testing.T) {
	tree, err := parse(strings.NewReader("finitd.options.pidfile: /x.pid\nfinitd.watcher.pidfile: /explicit.pid\n"))
	require.NoError(t, err)
	c := New(tree)
	assert.Equal(t, "/explicit.pid", c.WatcherPidfile())
}

func TestStopCommandAndSignalMutualExclusionIsAvailable(t *testing.T) {
	tree, err := parse(strings.NewReader("finitd.commands.stop.command: /bin/true\nfinitd.commands.stop.signal: SIGKILL\n"))
	require.NoError(t, err)
	c := New(tree)
	assert.NotNil(t, c.StopCommand())
	sig, err := c.StopSignal()
	require.NoError(t, err)
	assert.Equal(t, syscall.SIGKILL, sig)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config")
	assert.Error(t, err)
}

func TestParseRejectsMalformedLine(t *testing.T) {
	_, err := parse(strings.NewReader("this has no colon\n"))
	assert.Error(t, err)
}

func TestReadEnvOverride(t *testing.T) {
	tree, err := parse(strings.NewReader("finitd.options.restartWaitTime: 10\n"))
	require.NoError(t, err)
	tree.ReadEnv([]string{"FINITD_OPTIONS_RESTARTWAITTIME=99", "UNRELATED=1"})
	c := New(tree)
	assert.Equal(t, 99, c.OptionsRestartWaitTime())
}

func TestAnnotateRoundTrip(t *testing.T) {
	c := mustParse(t)

	var buf bytes.Buffer
	require.NoError(t, c.WriteAnnotated(&buf))

	reparsed, err := parse(&buf)
	require.NoError(t, err)
	c2 := New(reparsed)

	assert.Equal(t, c.ChildCommand(), c2.ChildCommand())
	assert.Equal(t, c.ChildStdout(), c2.ChildStdout())
	assert.Equal(t, c.OptionsPidfile(), c2.OptionsPidfile())
	assert.Equal(t, c.WatcherRestart(), c2.WatcherRestart())
	assert.Equal(t, c.ArbitraryCommands(), c2.ArbitraryCommands())
	assert.Equal(t, c.ArbitraryCommand("reload"), c2.ArbitraryCommand("reload"))
	assert.Equal(t, c.EnvVars(), c2.EnvVars())
}

func TestBuildEnvironmentClearenv(t *testing.T) {
	tree, err := parse(strings.NewReader("finitd.options.clearenv: true\nfinitd.env.FOO: bar\nfinitd.child.command: env\n"))
	require.NoError(t, err)
	c := New(tree)

	env := BuildEnvironment(c)
	assert.Equal(t, "bar", env["FOO"])
	assert.Equal(t, "env", env["FINITD_CHILD_COMMAND"])
	_, hasPath := env["PATH"]
	assert.False(t, hasPath, "clearenv must drop the controller's own environment")
}

func TestBuildEnvironmentEnvWinsOverLeafExport(t *testing.T) {
	tree, err := parse(strings.NewReader("finitd.env.FINITD_CHILD_COMMAND: overridden\nfinitd.child.command: echo hi\n"))
	require.NoError(t, err)
	c := New(tree)

	env := BuildEnvironment(c)
	assert.Equal(t, "overridden", env["FINITD_CHILD_COMMAND"], "env.* must win over the leaf-derived export")
}

func TestEnvironmentSliceIsSorted(t *testing.T) {
	out := EnvironmentSlice(map[string]string{"B": "2", "A": "1"})
	assert.Equal(t, []string{"A=1", "B=2"}, out)
}

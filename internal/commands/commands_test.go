package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/finitd/finitd/internal/config"
	"github.com/finitd/finitd/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadConfig(t *testing.T, src string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "finitd.conf")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	tree, err := config.Load(path)
	require.NoError(t, err)
	return config.New(tree)
}

func newContext(c *config.Config) (*Context, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return &Context{
		Config:  c,
		Environ: map[string]string{},
		Log:     logger.Nop(),
		Stdout:  &out,
		Stderr:  &errOut,
	}, &out, &errOut
}

func TestStartCheckConfigMissingPidfile(t *testing.T) {
	c := loadConfig(t, "finitd.child.command: echo hi\n")
	err := (Start{}).CheckConfig(c)
	require.Error(t, err)
	assert.IsType(t, &InvalidConfiguration{}, err)
}

func TestStartCheckConfigRestartRequiresWait(t *testing.T) {
	c := loadConfig(t, strings.Join([]string{
		"finitd.options.pidfile: /tmp/x.pid",
		"finitd.watcher.restart: true",
		"finitd.watcher.wait: false",
	}, "\n"))
	err := (Start{}).CheckConfig(c)
	require.Error(t, err)
}

func TestStartCheckConfigOK(t *testing.T) {
	c := loadConfig(t, "finitd.options.pidfile: /tmp/x.pid\n")
	assert.NoError(t, (Start{}).CheckConfig(c))
}

func TestStartCheckConfigSetuidRequiresRoot(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("test assumes a non-root test runner")
	}
	c := loadConfig(t, strings.Join([]string{
		"finitd.options.pidfile: /tmp/x.pid",
		"finitd.child.setuid: 1000",
	}, "\n"))
	err := (Start{}).CheckConfig(c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root")
}

func TestStopCheckConfigRequiresPidfile(t *testing.T) {
	c := loadConfig(t, "finitd.child.command: echo hi\n")
	err := (Stop{}).CheckConfig(c)
	require.Error(t, err)
}

func TestStopCheckConfigMutualExclusion(t *testing.T) {
	c := loadConfig(t, strings.Join([]string{
		"finitd.options.pidfile: /tmp/x.pid",
		"finitd.commands.stop.command: /bin/true",
		"finitd.commands.stop.signal: SIGKILL",
	}, "\n"))
	err := (Stop{}).CheckConfig(c)
	require.Error(t, err)
}

func TestStopCheckConfigCommandAloneIsFine(t *testing.T) {
	c := loadConfig(t, strings.Join([]string{
		"finitd.options.pidfile: /tmp/x.pid",
		"finitd.commands.stop.command: /bin/true",
	}, "\n"))
	assert.NoError(t, (Stop{}).CheckConfig(c))
}

func TestStopRunNotRunningHasNoSideEffects(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "nonexistent.pid")
	c := loadConfig(t, strings.Join([]string{
		"finitd.options.pidfile: " + pidfile,
		"finitd.child.chdir: " + dir,
	}, "\n"))
	ctx, out, _ := newContext(c)

	err := (Stop{}).Run(ctx, nil)
	require.Error(t, err)
	exitErr, ok := err.(*ExitError)
	require.True(t, ok)
	assert.Equal(t, 1, exitErr.Code)
	assert.Contains(t, out.String(), "Process is not running.")

	_, statErr := os.Stat(pidfile)
	assert.True(t, os.IsNotExist(statErr), "stop must not create a pidfile when nothing was running")
}

func TestStatusRunNotRunning(t *testing.T) {
	dir := t.TempDir()
	c := loadConfig(t, "finitd.options.pidfile: "+filepath.Join(dir, "x.pid")+"\n")
	ctx, out, _ := newContext(c)

	err := (Status{}).Run(ctx, nil)
	require.Error(t, err)
	assert.Equal(t, 1, err.(*ExitError).Code)
	assert.Contains(t, out.String(), "not running")
}

func TestStatusRunAliveReportsOwnPid(t *testing.T) {
	dir := t.TempDir()
	pidfile := filepath.Join(dir, "x.pid")
	require.NoError(t, os.WriteFile(pidfile, []byte(itoa(os.Getpid())+"\n"), 0o644))
	c := loadConfig(t, "finitd.options.pidfile: "+pidfile+"\n")
	ctx, out, _ := newContext(c)

	err := (Status{}).Run(ctx, nil)
	assert.NoError(t, err)
	assert.Contains(t, out.String(), "running")
}

func TestKillCheckConfigDelegatesToStop(t *testing.T) {
	c := loadConfig(t, "finitd.child.command: echo hi\n")
	assert.Error(t, (Kill{}).CheckConfig(c))
}

func TestRestartCheckConfigDelegates(t *testing.T) {
	c := loadConfig(t, "finitd.child.command: echo hi\n")
	assert.Error(t, (Restart{}).CheckConfig(c))
}

func TestArbitraryCheckConfigRequiresCommand(t *testing.T) {
	c := loadConfig(t, "finitd.commands.arbitrary.reload.help: does a thing\n")
	a := NewArbitrary("reload")
	err := a.CheckConfig(c)
	require.Error(t, err)
	assert.IsType(t, &InvalidConfiguration{}, err)
}

func TestArbitraryRunExecutesCommand(t *testing.T) {
	dir := t.TempDir()
	c := loadConfig(t, strings.Join([]string{
		"finitd.child.chdir: " + dir,
		"finitd.commands.arbitrary.hello.command: echo hello-arbitrary",
	}, "\n"))
	a := NewArbitrary("hello")
	require.NoError(t, a.CheckConfig(c))
	assert.Equal(t, "(No help text provided)", a.Help())

	ctx, out, _ := newContext(c)
	require.NoError(t, a.Run(ctx, nil))
	assert.Contains(t, out.String(), "hello-arbitrary")
}

func TestAnnotateRunWritesToStdout(t *testing.T) {
	c := loadConfig(t, "finitd.child.command: echo hi\n")
	ctx, out, _ := newContext(c)
	require.NoError(t, (Annotate{}).Run(ctx, nil))
	assert.Contains(t, out.String(), "finitd.child.command: echo hi")
}

func TestAllIncludesArbitraryCommands(t *testing.T) {
	c := loadConfig(t, "finitd.commands.arbitrary.reload.command: true\n")
	cmds := All(c)
	_, ok := Lookup(cmds, "reload")
	assert.True(t, ok)
	_, ok = Lookup(cmds, "start")
	assert.True(t, ok)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

package launcher

import (
	"os"
	"strings"
	"testing"

	"github.com/finitd/finitd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseConfig(t *testing.T, src string) *config.Config {
	t.Helper()
	tree, err := config.Load(writeTempConfig(t, src))
	require.NoError(t, err)
	return config.New(tree)
}

func writeTempConfig(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	path := dir + "/finitd.conf"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestParamsFromConfig(t *testing.T) {
	c := parseConfig(t, strings.Join([]string{
		"finitd.child.command: echo hi",
		"finitd.child.chdir: /tmp",
		"finitd.child.chroot: true",
		"finitd.child.umask: 18",
	}, "\n"))

	p, err := ParamsFromConfig(c, map[string]string{"FOO": "bar"})
	require.NoError(t, err)

	assert.Equal(t, "echo hi", p.Command)
	assert.Equal(t, "/tmp", p.Chdir)
	assert.True(t, p.Chroot)
	assert.Equal(t, 18, p.Umask)
	assert.Nil(t, p.Setuid)
	assert.Nil(t, p.Setgid)
	assert.Contains(t, p.Environ, "FOO=bar")
}

func TestParamsFromConfigSetuidSetgidNumeric(t *testing.T) {
	c := parseConfig(t, strings.Join([]string{
		"finitd.child.command: echo hi",
		"finitd.child.setuid: 1000",
		"finitd.child.setgid: 1000",
	}, "\n"))

	p, err := ParamsFromConfig(c, map[string]string{})
	require.NoError(t, err)
	require.NotNil(t, p.Setuid)
	require.NotNil(t, p.Setgid)
	assert.Equal(t, 1000, *p.Setuid)
	assert.Equal(t, 1000, *p.Setgid)
}

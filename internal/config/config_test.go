package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "/etc/passwd", c.Paths.Passwd)
	assert.Equal(t, 1000, c.UIDMin)
	assert.Equal(t, 5*time.Second, c.LockWait.Std())
}

func TestLoadOverlaysYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idstore.yaml")
	content := `
paths:
  passwd: /tmp/etc/passwd
uid_min: 2000
skel_dir: /srv/skel
lock_wait: 10s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/etc/passwd", c.Paths.Passwd)
	// Unset keys keep their defaults.
	assert.Equal(t, "/etc/shadow", c.Paths.Shadow)
	assert.Equal(t, 2000, c.UIDMin)
	assert.Equal(t, 1000, c.GIDMin)
	assert.Equal(t, "/srv/skel", c.SkelDir)
	assert.Equal(t, 10*time.Second, c.LockWait.Std())
}

func TestUseraddDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "useradd")
	content := `# useradd defaults file
GROUP=100
HOME=/srv/home
INACTIVE=-1
EXPIRE=
SHELL=/bin/sh
SKEL=/etc/skel
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	d, err := LoadUseraddDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, 100, d.Group)
	assert.Equal(t, "/srv/home", d.HomeBase)
	assert.Equal(t, "/bin/sh", d.Shell)

	c := Default()
	d.Apply(&c)
	assert.Equal(t, "/srv/home", c.HomeBase)
	assert.Equal(t, "/bin/sh", c.Shell)
}

func TestUseraddDefaultsMissingFile(t *testing.T) {
	d, err := LoadUseraddDefaults(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Equal(t, -1, d.Group)
	assert.Empty(t, d.Shell)
}

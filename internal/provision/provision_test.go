package provision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/idstore/internal/identdb"
)

func testUser(home string) identdb.UserRecord {
	return identdb.UserRecord{Name: "alice", UID: os.Getuid(), GID: os.Getgid(), Home: home}
}

func TestCreateHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), "alice")
	h := NewHost("")

	require.NoError(t, h.CreateHome(testUser(home)))

	st, err := os.Stat(home)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
	assert.Equal(t, os.FileMode(0755), st.Mode().Perm())
}

func TestCreateHomeRejectsRelativePath(t *testing.T) {
	h := NewHost("")
	err := h.CreateHome(testUser("home/alice"))
	require.Error(t, err)
	var perr *ProvisionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "create home", perr.Op)
}

func TestPopulateSkeleton(t *testing.T) {
	skel := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(skel, ".bashrc"), []byte("alias ll='ls -l'\n"), 0644))

	home := filepath.Join(t.TempDir(), "alice")
	h := NewHost(skel)
	u := testUser(home)
	require.NoError(t, h.CreateHome(u))
	require.NoError(t, h.PopulateSkeleton(u))

	b, err := os.ReadFile(filepath.Join(home, ".bashrc"))
	require.NoError(t, err)
	assert.Equal(t, "alias ll='ls -l'\n", string(b))
}

func TestPopulateSkeletonMissingSkelIsNoop(t *testing.T) {
	home := filepath.Join(t.TempDir(), "alice")
	h := NewHost(filepath.Join(t.TempDir(), "no-such-skel"))
	u := testUser(home)
	require.NoError(t, h.CreateHome(u))
	require.NoError(t, h.PopulateSkeleton(u))
}

func TestRemoveHome(t *testing.T) {
	home := filepath.Join(t.TempDir(), "alice")
	h := NewHost("")
	u := testUser(home)
	require.NoError(t, h.CreateHome(u))
	require.NoError(t, h.RemoveHome(u))

	_, err := os.Stat(home)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveHomeRefusesRoot(t *testing.T) {
	h := NewHost("")
	assert.Error(t, h.RemoveHome(testUser("/")))
	assert.Error(t, h.RemoveHome(testUser("")))
	assert.Error(t, h.RemoveHome(testUser("relative/home")))
}

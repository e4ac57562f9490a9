package txn

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/idstore/internal/identdb"
)

const (
	fixturePasswd  = "root:x:0:0:root:/root:/bin/bash\nalice:x:1000:1000:Alice:/home/alice:/bin/sh\n"
	fixtureShadow  = "root:*:19000:0:99999:7:::\nalice:!:19000::::::\n"
	fixtureGroup   = "root:x:0:\nalice:x:1000:\nusers:x:100:alice\n"
	fixtureGShadow = "root:!::\nalice:!::\nusers:!::alice\n"
)

func writeFixtures(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()
	p := PathsInDir(dir)
	require.NoError(t, os.WriteFile(p.Passwd, []byte(fixturePasswd), 0644))
	require.NoError(t, os.WriteFile(p.Shadow, []byte(fixtureShadow), 0600))
	require.NoError(t, os.WriteFile(p.Group, []byte(fixtureGroup), 0644))
	require.NoError(t, os.WriteFile(p.GShadow, []byte(fixtureGShadow), 0600))
	return p
}

func readAll(t *testing.T, p Paths) map[string]string {
	t.Helper()
	out := map[string]string{}
	for name, path := range map[string]string{
		"passwd": p.Passwd, "shadow": p.Shadow, "group": p.Group, "gshadow": p.GShadow,
	} {
		b, err := os.ReadFile(path)
		require.NoError(t, err)
		out[name] = string(b)
	}
	return out
}

func TestCommitPersistsMutations(t *testing.T) {
	p := writeFixtures(t)

	tx, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	defer tx.Close()
	assert.Equal(t, StateLoaded, tx.State())

	db := tx.DB()
	assert.Equal(t, StateMutating, tx.State())
	require.NoError(t, db.AddUser(identdb.UserRecord{
		Name: "bob", Passwd: "x", UID: 1001, GID: 100, Home: "/home/bob", Shell: "/bin/sh",
	}))
	require.NoError(t, tx.Commit())
	assert.Equal(t, StateIdle, tx.State())

	// A fresh transaction observes the committed state.
	tx2, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	defer tx2.Close()
	u, ok := tx2.DB().User("bob")
	require.True(t, ok)
	assert.Equal(t, 1001, u.UID)
	_, ok = tx2.DB().Shadow("bob")
	assert.True(t, ok)
}

func TestValidationFailureLeavesFilesUntouched(t *testing.T) {
	p := writeFixtures(t)
	before := readAll(t, p)

	tx, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	defer tx.Close()

	// gid 4242 resolves to no group: invariant 3.
	require.NoError(t, tx.DB().AddUser(identdb.UserRecord{Name: "bob", UID: 1001, GID: 4242}))
	err = tx.Commit()

	var verr *identdb.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, 3, verr.Violations[0].Invariant)

	after := readAll(t, p)
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("files changed despite aborted commit:\n%s", diff)
	}
}

func TestRemoveUserGoneAfterReload(t *testing.T) {
	p := writeFixtures(t)

	tx, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	require.NoError(t, tx.DB().AddUser(identdb.UserRecord{Name: "bob", UID: 1001, GID: 100}))
	require.NoError(t, tx.Commit())

	tx, err = Begin(Options{Paths: p})
	require.NoError(t, err)
	require.NoError(t, tx.DB().RemoveUser("bob"))
	require.NoError(t, tx.Commit())

	tx, err = Begin(Options{Paths: p})
	require.NoError(t, err)
	defer tx.Close()
	_, ok := tx.DB().User("bob")
	assert.False(t, ok)
	_, ok = tx.DB().Shadow("bob")
	assert.False(t, ok)
}

func TestSequentialTransactionsAllocateDistinctGIDs(t *testing.T) {
	p := writeFixtures(t)

	for _, name := range []string{"audio", "video"} {
		tx, err := Begin(Options{Paths: p})
		require.NoError(t, err)
		db := tx.DB()
		gid := db.NextGID(1000)
		require.NoError(t, db.AddGroup(identdb.GroupRecord{Name: name, Passwd: "x", GID: gid}))
		require.NoError(t, tx.Commit())
	}

	tx, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	defer tx.Close()
	a, ok := tx.DB().Group("audio")
	require.True(t, ok)
	v, ok := tx.DB().Group("video")
	require.True(t, ok)
	assert.NotEqual(t, a.GID, v.GID)
}

func TestParseErrorReleasesLock(t *testing.T) {
	p := writeFixtures(t)
	require.NoError(t, os.WriteFile(p.Passwd, []byte("root:x:0:0:root:/root:/bin/bash\nbroken line\n"), 0644))

	_, err := Begin(Options{Paths: p})
	var perr *identdb.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)

	// The failed Begin must not leave a dangling lock.
	require.NoError(t, os.WriteFile(p.Passwd, []byte(fixturePasswd), 0644))
	tx, err := Begin(Options{Paths: p, LockWait: 100 * time.Millisecond})
	require.NoError(t, err)
	tx.Close()
}

func TestSecondTransactionGetsLockBusy(t *testing.T) {
	p := writeFixtures(t)

	tx1, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	defer tx1.Close()

	_, err = Begin(Options{Paths: p, LockWait: 150 * time.Millisecond})
	var busy *LockBusyError
	require.True(t, errors.As(err, &busy))
	assert.Equal(t, p.Lock, busy.Path)

	// Releasing the first makes the lock available again.
	tx1.Close()
	tx2, err := Begin(Options{Paths: p, LockWait: time.Second})
	require.NoError(t, err)
	tx2.Close()
}

func TestCloseWithoutCommitWritesNothing(t *testing.T) {
	p := writeFixtures(t)
	before := readAll(t, p)

	tx, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	require.NoError(t, tx.DB().AddGroup(identdb.GroupRecord{Name: "wheel", Passwd: "x", GID: 10}))
	tx.Close()

	assert.Equal(t, before, readAll(t, p))
}

func TestOutsideWriteDetectedAtCommit(t *testing.T) {
	p := writeFixtures(t)

	tx, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	defer tx.Close()
	require.NoError(t, tx.DB().AddGroup(identdb.GroupRecord{Name: "wheel", Passwd: "x", GID: 10}))

	// Simulate a writer that ignored the advisory lock.
	require.NoError(t, os.WriteFile(p.Group, []byte(fixtureGroup+"rogue:x:999:\n"), 0644))

	err = tx.Commit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the lock")
}

func TestMissingGShadowTreatedAsEmpty(t *testing.T) {
	p := writeFixtures(t)
	require.NoError(t, os.Remove(p.GShadow))

	tx, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	defer tx.Close()
	assert.Empty(t, tx.DB().ShadowGroups())
}

func TestCommitPreservesFileModes(t *testing.T) {
	p := writeFixtures(t)
	require.NoError(t, os.Chmod(p.Shadow, 0640))

	tx, err := Begin(Options{Paths: p})
	require.NoError(t, err)
	require.NoError(t, tx.DB().AddGroup(identdb.GroupRecord{Name: "wheel", Passwd: "x", GID: 10}))
	require.NoError(t, tx.Commit())

	st, err := os.Stat(p.Shadow)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0640), st.Mode().Perm())
}

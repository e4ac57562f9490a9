package identdb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePasswdLine(t *testing.T) {
	users, err := ParsePasswd([]byte("alice:x:1000:1000:Alice:/home/alice:/bin/sh\n"))
	require.NoError(t, err)
	require.Len(t, users, 1)

	u := users[0]
	assert.Equal(t, "alice", u.Name)
	assert.Equal(t, "x", u.Passwd)
	assert.Equal(t, 1000, u.UID)
	assert.Equal(t, 1000, u.GID)
	assert.Equal(t, "Alice", u.Gecos)
	assert.Equal(t, "/home/alice", u.Home)
	assert.Equal(t, "/bin/sh", u.Shell)
}

func TestParsePasswdSkipsBlankAndComments(t *testing.T) {
	data := "# system accounts\n\nroot:x:0:0:root:/root:/bin/bash\n   \n"
	users, err := ParsePasswd([]byte(data))
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "root", users[0].Name)
}

func TestParsePasswdMissingTrailingNewline(t *testing.T) {
	users, err := ParsePasswd([]byte("root:x:0:0:root:/root:/bin/bash"))
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestParsePasswdWrongFieldCount(t *testing.T) {
	data := "root:x:0:0:root:/root:/bin/bash\nbroken:x:1:1:oops\n"
	_, err := ParsePasswd([]byte(data))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, FilePasswd, perr.File)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Reason, "field count")
}

func TestParsePasswdLineNumberCountsSkippedLines(t *testing.T) {
	data := "# header\n\nroot:x:0:0:root:/root:/bin/bash\nbad line\n"
	_, err := ParsePasswd([]byte(data))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 4, perr.Line)
}

func TestParsePasswdNonNumericID(t *testing.T) {
	_, err := ParsePasswd([]byte("root:x:zero:0:root:/root:/bin/bash\n"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Reason, "uid")
}

func TestParsePasswdDuplicateName(t *testing.T) {
	data := "a:x:1:1:::/bin/sh\na:x:2:2:::/bin/sh\n"
	_, err := ParsePasswd([]byte(data))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Reason, "duplicate")
}

func TestParseShadowUnsetFields(t *testing.T) {
	shadows, err := ParseShadow([]byte("alice:!:19000::99999::::\n"))
	require.NoError(t, err)
	require.Len(t, shadows, 1)

	s := shadows[0]
	assert.Equal(t, Day(19000), s.LastChange)
	assert.Equal(t, DayUnset, s.MinDays)
	assert.Equal(t, Day(99999), s.MaxDays)
	assert.Equal(t, DayUnset, s.WarnDays)
	assert.Equal(t, DayUnset, s.InactiveDays)
	assert.Equal(t, DayUnset, s.ExpireDay)
	assert.False(t, s.MinDays.IsSet())
}

func TestParseShadowWrongFieldCount(t *testing.T) {
	_, err := ParseShadow([]byte("alice:!:19000\n"))
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, FileShadow, perr.File)
}

func TestParseGroupMembers(t *testing.T) {
	groups, err := ParseGroup([]byte("wheel:x:10:alice,bob\nempty:x:11:\n"))
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, []string{"alice", "bob"}, groups[0].Members)
	assert.Nil(t, groups[1].Members)
}

func TestParseGShadow(t *testing.T) {
	gs, err := ParseGShadow([]byte("wheel:!:alice:alice,bob\n"))
	require.NoError(t, err)
	require.Len(t, gs, 1)
	assert.Equal(t, []string{"alice"}, gs[0].Admins)
	assert.Equal(t, []string{"alice", "bob"}, gs[0].Members)
}

// serialize(parse(serialize(r))) == serialize(r) for every database.
func TestRoundTrip(t *testing.T) {
	passwd := "root:x:0:0:root:/root:/bin/bash\nalice:x:1000:1000:Alice A.,room 5:/home/alice:/bin/sh\n"
	shadow := "root:*:19000:0:99999:7:::\nalice:!:19000::::::extra\n"
	group := "root:x:0:\nwheel:x:10:alice,bob\n"
	gshadow := "root:!::\nwheel:!:alice:alice,bob\n"

	users, err := ParsePasswd([]byte(passwd))
	require.NoError(t, err)
	assert.Equal(t, passwd, string(SerializePasswd(users)))

	shadows, err := ParseShadow([]byte(shadow))
	require.NoError(t, err)
	assert.Equal(t, shadow, string(SerializeShadow(shadows)))

	groups, err := ParseGroup([]byte(group))
	require.NoError(t, err)
	assert.Equal(t, group, string(SerializeGroup(groups)))

	gshadows, err := ParseGShadow([]byte(gshadow))
	require.NoError(t, err)
	assert.Equal(t, gshadow, string(SerializeGShadow(gshadows)))

	// And once more through the parser to close the loop.
	again, err := ParsePasswd(SerializePasswd(users))
	require.NoError(t, err)
	assert.Equal(t, users, again)
}

package identdb

import "strconv"

// Day is a count of days since the Unix epoch, as used by the shadow
// aging fields. The zero of the domain is a real value (1970-01-01),
// so "not set" is the negative sentinel, serialized as an empty field.
type Day int

const DayUnset Day = -1

func (d Day) IsSet() bool { return d >= 0 }

func (d Day) String() string {
	if d < 0 {
		return ""
	}
	return strconv.Itoa(int(d))
}

type UserRecord struct {
	Name   string
	Passwd string // "x" on shadowed systems
	UID    int
	GID    int
	Gecos  string
	Home   string
	Shell  string
}

type ShadowRecord struct {
	Name         string
	Hash         string
	LastChange   Day
	MinDays      Day
	MaxDays      Day
	WarnDays     Day
	InactiveDays Day
	ExpireDay    Day
	Reserved     string
}

type GroupRecord struct {
	Name    string
	Passwd  string
	GID     int
	Members []string
}

type ShadowGroupRecord struct {
	Name    string
	Hash    string
	Admins  []string
	Members []string
}

// File names a database kind, used in error reporting.
type File string

const (
	FilePasswd  File = "passwd"
	FileShadow  File = "shadow"
	FileGroup   File = "group"
	FileGShadow File = "gshadow"
)

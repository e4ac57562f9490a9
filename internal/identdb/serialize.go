package identdb

import (
	"strconv"
	"strings"
)

// Serialization is the exact inverse of parsing: a record reparsed
// after serialization is field-for-field equal to the original.

func (u UserRecord) String() string {
	var b strings.Builder
	b.WriteString(u.Name)
	b.WriteByte(':')
	b.WriteString(u.Passwd)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(u.UID))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(u.GID))
	b.WriteByte(':')
	b.WriteString(u.Gecos)
	b.WriteByte(':')
	b.WriteString(u.Home)
	b.WriteByte(':')
	b.WriteString(u.Shell)
	return b.String()
}

func (s ShadowRecord) String() string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteByte(':')
	b.WriteString(s.Hash)
	b.WriteByte(':')
	b.WriteString(s.LastChange.String())
	b.WriteByte(':')
	b.WriteString(s.MinDays.String())
	b.WriteByte(':')
	b.WriteString(s.MaxDays.String())
	b.WriteByte(':')
	b.WriteString(s.WarnDays.String())
	b.WriteByte(':')
	b.WriteString(s.InactiveDays.String())
	b.WriteByte(':')
	b.WriteString(s.ExpireDay.String())
	b.WriteByte(':')
	b.WriteString(s.Reserved)
	return b.String()
}

func (g GroupRecord) String() string {
	var b strings.Builder
	b.WriteString(g.Name)
	b.WriteByte(':')
	b.WriteString(g.Passwd)
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(g.GID))
	b.WriteByte(':')
	b.WriteString(strings.Join(g.Members, ","))
	return b.String()
}

func (g ShadowGroupRecord) String() string {
	var b strings.Builder
	b.WriteString(g.Name)
	b.WriteByte(':')
	b.WriteString(g.Hash)
	b.WriteByte(':')
	b.WriteString(strings.Join(g.Admins, ","))
	b.WriteByte(':')
	b.WriteString(strings.Join(g.Members, ","))
	return b.String()
}

func SerializePasswd(users []UserRecord) []byte {
	var b strings.Builder
	for _, u := range users {
		b.WriteString(u.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func SerializeShadow(shadows []ShadowRecord) []byte {
	var b strings.Builder
	for _, s := range shadows {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func SerializeGroup(groups []GroupRecord) []byte {
	var b strings.Builder
	for _, g := range groups {
		b.WriteString(g.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func SerializeGShadow(gshadows []ShadowGroupRecord) []byte {
	var b strings.Builder
	for _, g := range gshadows {
		b.WriteString(g.String())
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

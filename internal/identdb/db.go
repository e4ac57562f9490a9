package identdb

import (
	"github.com/rs/zerolog/log"
)

// DB is the in-memory model of the four databases. Records are only
// reachable through lookups and only changed through the typed
// mutation operations; the indices are rebuilt after every mutation.
type DB struct {
	users    []UserRecord
	shadows  []ShadowRecord
	groups   []GroupRecord
	gshadows []ShadowGroupRecord

	userByName    map[string]int
	userByUID     map[int]int
	groupByName   map[string]int
	groupByGID    map[int]int
	shadowByName  map[string]int
	gshadowByName map[string]int
}

func New() *DB {
	db := &DB{}
	db.reindex()
	return db
}

// Load parses the raw content of all four databases and validates the
// resulting state. Pre-existing inconsistency (an orphan shadow entry,
// a primary group that does not exist) is reported, never repaired:
// silent correction of identity data is unsafe.
func Load(passwd, shadow, group, gshadow []byte) (*DB, error) {
	users, err := ParsePasswd(passwd)
	if err != nil {
		return nil, err
	}
	shadows, err := ParseShadow(shadow)
	if err != nil {
		return nil, err
	}
	groups, err := ParseGroup(group)
	if err != nil {
		return nil, err
	}
	gshadows, err := ParseGShadow(gshadow)
	if err != nil {
		return nil, err
	}
	db := &DB{users: users, shadows: shadows, groups: groups, gshadows: gshadows}
	db.reindex()
	if verr := db.Validate(); verr != nil {
		return nil, verr
	}
	return db, nil
}

func (db *DB) reindex() {
	db.userByName = make(map[string]int, len(db.users))
	db.userByUID = make(map[int]int, len(db.users))
	for i, u := range db.users {
		db.userByName[u.Name] = i
		db.userByUID[u.UID] = i
	}
	db.groupByName = make(map[string]int, len(db.groups))
	db.groupByGID = make(map[int]int, len(db.groups))
	for i, g := range db.groups {
		db.groupByName[g.Name] = i
		db.groupByGID[g.GID] = i
	}
	db.shadowByName = make(map[string]int, len(db.shadows))
	for i, s := range db.shadows {
		db.shadowByName[s.Name] = i
	}
	db.gshadowByName = make(map[string]int, len(db.gshadows))
	for i, g := range db.gshadows {
		db.gshadowByName[g.Name] = i
	}
}

func (db *DB) User(name string) (UserRecord, bool) {
	i, ok := db.userByName[name]
	if !ok {
		return UserRecord{}, false
	}
	return db.users[i], true
}

func (db *DB) UserByUID(uid int) (UserRecord, bool) {
	i, ok := db.userByUID[uid]
	if !ok {
		return UserRecord{}, false
	}
	return db.users[i], true
}

func (db *DB) Shadow(name string) (ShadowRecord, bool) {
	i, ok := db.shadowByName[name]
	if !ok {
		return ShadowRecord{}, false
	}
	return db.shadows[i], true
}

func (db *DB) Group(name string) (GroupRecord, bool) {
	i, ok := db.groupByName[name]
	if !ok {
		return GroupRecord{}, false
	}
	return copyGroup(db.groups[i]), true
}

func (db *DB) GroupByGID(gid int) (GroupRecord, bool) {
	i, ok := db.groupByGID[gid]
	if !ok {
		return GroupRecord{}, false
	}
	return copyGroup(db.groups[i]), true
}

func (db *DB) ShadowGroup(name string) (ShadowGroupRecord, bool) {
	i, ok := db.gshadowByName[name]
	if !ok {
		return ShadowGroupRecord{}, false
	}
	g := db.gshadows[i]
	g.Admins = append([]string(nil), g.Admins...)
	g.Members = append([]string(nil), g.Members...)
	return g, true
}

func copyGroup(g GroupRecord) GroupRecord {
	g.Members = append([]string(nil), g.Members...)
	return g
}

func (db *DB) Users() []UserRecord {
	return append([]UserRecord(nil), db.users...)
}

func (db *DB) Shadows() []ShadowRecord {
	return append([]ShadowRecord(nil), db.shadows...)
}

func (db *DB) Groups() []GroupRecord {
	out := make([]GroupRecord, 0, len(db.groups))
	for _, g := range db.groups {
		out = append(out, copyGroup(g))
	}
	return out
}

func (db *DB) ShadowGroups() []ShadowGroupRecord {
	out := make([]ShadowGroupRecord, 0, len(db.gshadows))
	for _, g := range db.gshadows {
		g.Admins = append([]string(nil), g.Admins...)
		g.Members = append([]string(nil), g.Members...)
		out = append(out, g)
	}
	return out
}

// NextUID returns the lowest free uid at or above min.
func (db *DB) NextUID(min int) int {
	uid := min
	for {
		if _, taken := db.userByUID[uid]; !taken {
			return uid
		}
		uid++
	}
}

// NextGID returns the lowest free gid at or above min.
func (db *DB) NextGID(min int) int {
	gid := min
	for {
		if _, taken := db.groupByGID[gid]; !taken {
			return gid
		}
		gid++
	}
}

// MembersOf returns the names of every group the user belongs to,
// primary group first.
func (db *DB) MembersOf(user string) []string {
	var out []string
	if u, ok := db.User(user); ok {
		if g, ok := db.GroupByGID(u.GID); ok {
			out = append(out, g.Name)
		}
	}
	for _, g := range db.groups {
		for _, m := range g.Members {
			if m == user && (len(out) == 0 || out[0] != g.Name) {
				out = append(out, g.Name)
			}
		}
	}
	return out
}

func (db *DB) logDanglingMembers() {
	for _, g := range db.groups {
		for _, m := range g.Members {
			if _, ok := db.userByName[m]; !ok {
				log.Warn().Str("group", g.Name).Str("member", m).
					Msg("group member does not resolve to a user")
			}
		}
	}
}

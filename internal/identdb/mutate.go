package identdb

// Mutations check their own local preconditions before touching any
// state, so a failed call leaves the model exactly as it was.
// Cross-entity invariants (a primary gid resolving to a group, for
// example) are deferred to Validate, because valid intermediate states
// span multiple operations.

// AddUser appends a user record together with an initially locked
// shadow entry.
func (db *DB) AddUser(u UserRecord) error {
	const op = "add user"
	if !ValidName(u.Name) {
		return precondition(op, "invalid user name %q", u.Name)
	}
	if _, exists := db.userByName[u.Name]; exists {
		return precondition(op, "user %q already exists", u.Name)
	}
	if _, exists := db.userByUID[u.UID]; exists {
		return precondition(op, "uid %d already exists", u.UID)
	}
	if u.UID < 0 || u.GID < 0 {
		return precondition(op, "negative id for user %q", u.Name)
	}
	if err := checkFields(op, map[string]string{
		"passwd": u.Passwd,
		"gecos":  u.Gecos,
		"home":   u.Home,
		"shell":  u.Shell,
	}); err != nil {
		return err
	}
	db.users = append(db.users, u)
	db.shadows = append(db.shadows, ShadowRecord{
		Name:         u.Name,
		Hash:         "!",
		LastChange:   DayUnset,
		MinDays:      DayUnset,
		MaxDays:      DayUnset,
		WarnDays:     DayUnset,
		InactiveDays: DayUnset,
		ExpireDay:    DayUnset,
	})
	db.reindex()
	return nil
}

// RemoveUser removes the user, its shadow entry, and every occurrence
// of the name in group and gshadow member and admin lists. Leaving a
// dangling member name behind would only be tolerated as legacy data,
// so removal cascades.
func (db *DB) RemoveUser(name string) error {
	const op = "remove user"
	i, ok := db.userByName[name]
	if !ok {
		return precondition(op, "user %q does not exist", name)
	}
	db.users = append(db.users[:i], db.users[i+1:]...)
	if j, ok := db.shadowByName[name]; ok {
		db.shadows = append(db.shadows[:j], db.shadows[j+1:]...)
	}
	for k := range db.groups {
		db.groups[k].Members = removeName(db.groups[k].Members, name)
	}
	for k := range db.gshadows {
		db.gshadows[k].Members = removeName(db.gshadows[k].Members, name)
		db.gshadows[k].Admins = removeName(db.gshadows[k].Admins, name)
	}
	db.reindex()
	return nil
}

// AddGroup appends a group record and a mirroring gshadow entry.
func (db *DB) AddGroup(g GroupRecord) error {
	const op = "add group"
	if !ValidName(g.Name) {
		return precondition(op, "invalid group name %q", g.Name)
	}
	if _, exists := db.groupByName[g.Name]; exists {
		return precondition(op, "group %q already exists", g.Name)
	}
	if _, exists := db.groupByGID[g.GID]; exists {
		return precondition(op, "gid %d already exists", g.GID)
	}
	if g.GID < 0 {
		return precondition(op, "negative gid for group %q", g.Name)
	}
	if err := checkField(op, "passwd", g.Passwd); err != nil {
		return err
	}
	if err := checkMemberList(op, g.Members); err != nil {
		return err
	}
	db.groups = append(db.groups, copyGroup(g))
	db.gshadows = append(db.gshadows, ShadowGroupRecord{
		Name:    g.Name,
		Hash:    "!",
		Members: append([]string(nil), g.Members...),
	})
	db.reindex()
	return nil
}

// RemoveGroup removes the group and its gshadow entry. It fails when
// the group is any user's primary group.
func (db *DB) RemoveGroup(name string) error {
	const op = "remove group"
	i, ok := db.groupByName[name]
	if !ok {
		return precondition(op, "group %q does not exist", name)
	}
	gid := db.groups[i].GID
	for _, u := range db.users {
		if u.GID == gid {
			return &InUseError{Kind: "group", Name: name, By: "user " + u.Name + " (primary group)"}
		}
	}
	db.groups = append(db.groups[:i], db.groups[i+1:]...)
	if j, ok := db.gshadowByName[name]; ok {
		db.gshadows = append(db.gshadows[:j], db.gshadows[j+1:]...)
	}
	db.reindex()
	return nil
}

// UserChange selects the user fields to modify; nil means keep.
type UserChange struct {
	GID   *int
	Gecos *string
	Home  *string
	Shell *string
}

func (db *DB) ModifyUser(name string, ch UserChange) error {
	const op = "modify user"
	i, ok := db.userByName[name]
	if !ok {
		return precondition(op, "user %q does not exist", name)
	}
	u := db.users[i]
	if ch.GID != nil {
		if *ch.GID < 0 {
			return precondition(op, "negative gid for user %q", name)
		}
		u.GID = *ch.GID
	}
	for field, p := range map[string]*string{"gecos": ch.Gecos, "home": ch.Home, "shell": ch.Shell} {
		if p == nil {
			continue
		}
		if err := checkField(op, field, *p); err != nil {
			return err
		}
	}
	if ch.Gecos != nil {
		u.Gecos = *ch.Gecos
	}
	if ch.Home != nil {
		u.Home = *ch.Home
	}
	if ch.Shell != nil {
		u.Shell = *ch.Shell
	}
	db.users[i] = u
	db.reindex()
	return nil
}

// AddMember adds the user to the group's member list and mirrors the
// change into gshadow. Membership of a nonexistent user is only a
// validation warning, but adding one on purpose is rejected here.
func (db *DB) AddMember(group, user string) error {
	const op = "add member"
	i, ok := db.groupByName[group]
	if !ok {
		return precondition(op, "group %q does not exist", group)
	}
	if _, ok := db.userByName[user]; !ok {
		return precondition(op, "user %q does not exist", user)
	}
	for _, m := range db.groups[i].Members {
		if m == user {
			return nil
		}
	}
	db.groups[i].Members = append(db.groups[i].Members, user)
	if j, ok := db.gshadowByName[group]; ok {
		db.gshadows[j].Members = append(removeName(db.gshadows[j].Members, user), user)
	}
	db.reindex()
	return nil
}

func (db *DB) RemoveMember(group, user string) error {
	const op = "remove member"
	i, ok := db.groupByName[group]
	if !ok {
		return precondition(op, "group %q does not exist", group)
	}
	db.groups[i].Members = removeName(db.groups[i].Members, user)
	if j, ok := db.gshadowByName[group]; ok {
		db.gshadows[j].Members = removeName(db.gshadows[j].Members, user)
	}
	db.reindex()
	return nil
}

// SetGroupAdmins replaces the gshadow administrator list of a group.
func (db *DB) SetGroupAdmins(group string, admins []string) error {
	const op = "set group admins"
	if _, ok := db.groupByName[group]; !ok {
		return precondition(op, "group %q does not exist", group)
	}
	if err := checkMemberList(op, admins); err != nil {
		return err
	}
	j, ok := db.gshadowByName[group]
	if !ok {
		return precondition(op, "group %q has no gshadow entry", group)
	}
	db.gshadows[j].Admins = append([]string(nil), admins...)
	db.reindex()
	return nil
}

// SetPasswordHash stores an opaque hash string for the user. The hash
// is never interpreted here beyond the delimiter check.
func (db *DB) SetPasswordHash(user, hash string) error {
	const op = "set password hash"
	i, ok := db.shadowByName[user]
	if !ok {
		return precondition(op, "user %q has no shadow entry", user)
	}
	if err := checkField(op, "hash", hash); err != nil {
		return err
	}
	db.shadows[i].Hash = hash
	return nil
}

// AgingChange selects the shadow aging fields to modify; nil means
// keep. Point a field at DayUnset to clear it.
type AgingChange struct {
	LastChange   *Day
	MinDays      *Day
	MaxDays      *Day
	WarnDays     *Day
	InactiveDays *Day
	ExpireDay    *Day
}

func (db *DB) SetAging(user string, ch AgingChange) error {
	const op = "set aging"
	i, ok := db.shadowByName[user]
	if !ok {
		return precondition(op, "user %q has no shadow entry", user)
	}
	s := db.shadows[i]
	for _, f := range []struct {
		dst *Day
		src *Day
	}{
		{&s.LastChange, ch.LastChange},
		{&s.MinDays, ch.MinDays},
		{&s.MaxDays, ch.MaxDays},
		{&s.WarnDays, ch.WarnDays},
		{&s.InactiveDays, ch.InactiveDays},
		{&s.ExpireDay, ch.ExpireDay},
	} {
		if f.src != nil {
			*f.dst = *f.src
		}
	}
	db.shadows[i] = s
	return nil
}

func removeName(list []string, name string) []string {
	out := list[:0]
	for _, m := range list {
		if m != name {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

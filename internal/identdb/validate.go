package identdb

import (
	"fmt"
	"sort"
)

// Validate is a pure check of the cross-file invariants over the
// current snapshot:
//
//	1 login names and uids unique among users
//	2 group names and gids unique among groups
//	3 every primary gid resolves to exactly one group
//	4 shadow entries one-to-one with users, no orphans
//	5 gshadow entries at most one per group, no orphans
//
// It returns nil when the state is consistent, otherwise a
// ValidationError listing every violation. Dangling group member names
// are tolerated as legacy data and only logged.
func (db *DB) Validate() *ValidationError {
	var vs []*Violation

	byName := map[string][]string{}
	byUID := map[int][]string{}
	for _, u := range db.users {
		byName[u.Name] = append(byName[u.Name], u.Name)
		byUID[u.UID] = append(byUID[u.UID], u.Name)
	}
	for name, dup := range byName {
		if len(dup) > 1 {
			vs = append(vs, &Violation{Invariant: 1, Keys: dup, Detail: fmt.Sprintf("duplicate login name %q", name)})
		}
	}
	for uid, dup := range byUID {
		if len(dup) > 1 {
			vs = append(vs, &Violation{Invariant: 1, Keys: dup, Detail: fmt.Sprintf("duplicate uid %d", uid)})
		}
	}

	gByName := map[string][]string{}
	gByGID := map[int][]string{}
	for _, g := range db.groups {
		gByName[g.Name] = append(gByName[g.Name], g.Name)
		gByGID[g.GID] = append(gByGID[g.GID], g.Name)
	}
	for name, dup := range gByName {
		if len(dup) > 1 {
			vs = append(vs, &Violation{Invariant: 2, Keys: dup, Detail: fmt.Sprintf("duplicate group name %q", name)})
		}
	}
	for gid, dup := range gByGID {
		if len(dup) > 1 {
			vs = append(vs, &Violation{Invariant: 2, Keys: dup, Detail: fmt.Sprintf("duplicate gid %d", gid)})
		}
	}

	for _, u := range db.users {
		if len(gByGID[u.GID]) == 0 {
			vs = append(vs, &Violation{Invariant: 3, Keys: []string{u.Name}, Detail: fmt.Sprintf("primary gid %d does not resolve to a group", u.GID)})
		}
	}

	sByName := map[string]int{}
	for _, s := range db.shadows {
		sByName[s.Name]++
		if len(byName[s.Name]) == 0 {
			vs = append(vs, &Violation{Invariant: 4, Keys: []string{s.Name}, Detail: "orphan shadow entry"})
		}
	}
	for name, n := range sByName {
		if n > 1 {
			vs = append(vs, &Violation{Invariant: 4, Keys: []string{name}, Detail: "multiple shadow entries for one user"})
		}
	}

	gsByName := map[string]int{}
	for _, g := range db.gshadows {
		gsByName[g.Name]++
		if len(gByName[g.Name]) == 0 {
			vs = append(vs, &Violation{Invariant: 5, Keys: []string{g.Name}, Detail: "orphan gshadow entry"})
		}
	}
	for name, n := range gsByName {
		if n > 1 {
			vs = append(vs, &Violation{Invariant: 5, Keys: []string{name}, Detail: "multiple gshadow entries for one group"})
		}
	}

	db.logDanglingMembers()

	if len(vs) == 0 {
		return nil
	}
	sort.Slice(vs, func(i, j int) bool {
		if vs[i].Invariant != vs[j].Invariant {
			return vs[i].Invariant < vs[j].Invariant
		}
		return vs[i].Detail < vs[j].Detail
	})
	return &ValidationError{Violations: vs}
}

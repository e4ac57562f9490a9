package lifecycle

import (
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	validator "gopkg.in/go-playground/validator.v9"

	"github.com/hnrobert/idstore/internal/config"
	"github.com/hnrobert/idstore/internal/identdb"
	"github.com/hnrobert/idstore/internal/provision"
	"github.com/hnrobert/idstore/internal/txn"
)

var validate = validator.New()

// Manager orchestrates user and group lifecycle: one transaction per
// operation, directory provisioning strictly after commit.
type Manager struct {
	cfg  config.Config
	prov provision.Provisioner
}

func NewManager(cfg config.Config, prov provision.Provisioner) *Manager {
	return &Manager{cfg: cfg, prov: prov}
}

func (m *Manager) paths() txn.Paths {
	return txn.Paths{
		Passwd:  m.cfg.Paths.Passwd,
		Shadow:  m.cfg.Paths.Shadow,
		Group:   m.cfg.Paths.Group,
		GShadow: m.cfg.Paths.GShadow,
		Lock:    m.cfg.Paths.Lock,
	}
}

func (m *Manager) begin() (*txn.Tx, error) {
	return txn.Begin(txn.Options{Paths: m.paths(), LockWait: m.cfg.LockWait.Std()})
}

type CreateUserRequest struct {
	Name         string `validate:"required,max=32"`
	UID          int    `validate:"min=-1"` // -1 allocates the next free uid
	GID          int    `validate:"min=-1"` // -1 creates a per-user primary group
	Gecos        string
	Home         string // empty defaults to <home_base>/<name>
	Shell        string // empty defaults to the configured shell
	PasswordHash string // opaque, already hashed; empty leaves the account locked
	ExtraGroups  []string
	CreateHome   bool
}

// CreateUser commits the new records, then provisions the home
// directory. A provisioner failure is returned but the records stay
// committed: record state and filesystem state are separate failure
// domains.
func (m *Manager) CreateUser(req CreateUserRequest) (identdb.UserRecord, error) {
	if err := validate.Struct(req); err != nil {
		return identdb.UserRecord{}, err
	}

	tx, err := m.begin()
	if err != nil {
		return identdb.UserRecord{}, err
	}
	defer tx.Close()
	db := tx.DB()

	uid := req.UID
	if uid < 0 {
		uid = db.NextUID(m.cfg.UIDMin)
	}
	gid := req.GID
	if gid < 0 {
		if g, ok := db.Group(req.Name); ok {
			gid = g.GID
		} else {
			gid = db.NextGID(m.cfg.GIDMin)
			if err := db.AddGroup(identdb.GroupRecord{Name: req.Name, Passwd: "x", GID: gid}); err != nil {
				return identdb.UserRecord{}, err
			}
		}
	}

	home := req.Home
	if home == "" {
		home = filepath.Join(m.cfg.HomeBase, req.Name)
	}
	shell := req.Shell
	if shell == "" {
		shell = m.cfg.Shell
	}

	u := identdb.UserRecord{
		Name:   req.Name,
		Passwd: "x",
		UID:    uid,
		GID:    gid,
		Gecos:  req.Gecos,
		Home:   home,
		Shell:  shell,
	}
	if err := db.AddUser(u); err != nil {
		return identdb.UserRecord{}, err
	}
	if req.PasswordHash != "" {
		if err := db.SetPasswordHash(req.Name, req.PasswordHash); err != nil {
			return identdb.UserRecord{}, err
		}
	}
	lastChange := today()
	if err := db.SetAging(req.Name, identdb.AgingChange{LastChange: &lastChange}); err != nil {
		return identdb.UserRecord{}, err
	}
	for _, g := range req.ExtraGroups {
		if g == "" {
			continue
		}
		if err := db.AddMember(g, req.Name); err != nil {
			return identdb.UserRecord{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return identdb.UserRecord{}, err
	}
	log.Info().Str("user", u.Name).Int("uid", u.UID).Int("gid", u.GID).Msg("user created")

	if req.CreateHome {
		if err := m.prov.CreateHome(u); err != nil {
			return u, err
		}
		if err := m.prov.PopulateSkeleton(u); err != nil {
			return u, err
		}
	}
	return u, nil
}

// DeleteUser removes the user, its shadow entry and all memberships.
// The per-user primary group is removed too when nothing else uses it.
// Home removal happens after the commit.
func (m *Manager) DeleteUser(name string, removeHome bool) error {
	tx, err := m.begin()
	if err != nil {
		return err
	}
	defer tx.Close()
	db := tx.DB()

	u, ok := db.User(name)
	if !ok {
		return &identdb.PreconditionError{Op: "delete user", Reason: "user " + name + " does not exist"}
	}
	if err := db.RemoveUser(name); err != nil {
		return err
	}
	if g, ok := db.GroupByGID(u.GID); ok && g.Name == name && len(g.Members) == 0 {
		if err := db.RemoveGroup(g.Name); err != nil {
			// Still someone's primary group; keep it.
			if _, inUse := err.(*identdb.InUseError); !inUse {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info().Str("user", name).Msg("user deleted")

	if removeHome {
		return m.prov.RemoveHome(u)
	}
	return nil
}

// ModifyUser applies a field change inside its own transaction.
func (m *Manager) ModifyUser(name string, ch identdb.UserChange) error {
	tx, err := m.begin()
	if err != nil {
		return err
	}
	defer tx.Close()
	if err := tx.DB().ModifyUser(name, ch); err != nil {
		return err
	}
	return tx.Commit()
}

// SetPassword stores a new opaque hash and stamps the last-change day.
func (m *Manager) SetPassword(name, hash string) error {
	tx, err := m.begin()
	if err != nil {
		return err
	}
	defer tx.Close()
	db := tx.DB()
	if err := db.SetPasswordHash(name, hash); err != nil {
		return err
	}
	lastChange := today()
	if err := db.SetAging(name, identdb.AgingChange{LastChange: &lastChange}); err != nil {
		return err
	}
	return tx.Commit()
}

func (m *Manager) AddGroup(name string, gid int) (identdb.GroupRecord, error) {
	tx, err := m.begin()
	if err != nil {
		return identdb.GroupRecord{}, err
	}
	defer tx.Close()
	db := tx.DB()
	if gid < 0 {
		gid = db.NextGID(m.cfg.GIDMin)
	}
	g := identdb.GroupRecord{Name: name, Passwd: "x", GID: gid}
	if err := db.AddGroup(g); err != nil {
		return identdb.GroupRecord{}, err
	}
	if err := tx.Commit(); err != nil {
		return identdb.GroupRecord{}, err
	}
	log.Info().Str("group", name).Int("gid", gid).Msg("group created")
	return g, nil
}

func (m *Manager) DeleteGroup(name string) error {
	tx, err := m.begin()
	if err != nil {
		return err
	}
	defer tx.Close()
	if err := tx.DB().RemoveGroup(name); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info().Str("group", name).Msg("group deleted")
	return nil
}

func (m *Manager) AddUserToGroup(group, user string) error {
	tx, err := m.begin()
	if err != nil {
		return err
	}
	defer tx.Close()
	if err := tx.DB().AddMember(group, user); err != nil {
		return err
	}
	return tx.Commit()
}

func (m *Manager) RemoveUserFromGroup(group, user string) error {
	tx, err := m.begin()
	if err != nil {
		return err
	}
	defer tx.Close()
	if err := tx.DB().RemoveMember(group, user); err != nil {
		return err
	}
	return tx.Commit()
}

// Snapshot opens a transaction just long enough to take a consistent
// read of the databases.
func (m *Manager) Snapshot() ([]identdb.UserRecord, []identdb.GroupRecord, error) {
	tx, err := m.begin()
	if err != nil {
		return nil, nil, err
	}
	defer tx.Close()
	db := tx.DB()
	return db.Users(), db.Groups(), nil
}

func today() identdb.Day {
	return identdb.Day(time.Now().Unix() / 86400)
}

package txn

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hnrobert/idstore/internal/fsx"
	"github.com/hnrobert/idstore/internal/identdb"
)

// State of a transaction. All failure paths before Committing collapse
// back to Idle with the lock released and no file touched.
type State int

const (
	StateIdle State = iota
	StateLocked
	StateLoaded
	StateMutating
	StateValidating
	StateCommitting
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLocked:
		return "locked"
	case StateLoaded:
		return "loaded"
	case StateMutating:
		return "mutating"
	case StateValidating:
		return "validating"
	case StateCommitting:
		return "committing"
	case StateAborted:
		return "aborted"
	}
	return "unknown"
}

const DefaultLockWait = 5 * time.Second

type Options struct {
	Paths    Paths
	LockWait time.Duration // bounded wait for the lock; 0 means DefaultLockWait
}

// Tx is one exclusive transaction over the four databases. Records are
// loaded fresh at Begin and discarded at Commit or Close; the on-disk
// files stay the single source of truth across transactions.
type Tx struct {
	paths Paths
	lock  *fileLock
	db    *identdb.DB
	state State

	// raw file content at load time, used to detect writers that
	// bypassed the lock before we overwrite their changes.
	orig map[string][]byte
}

// Begin acquires the host-wide lock, then loads and parses all four
// databases. On any failure the lock is released and no transaction
// exists.
func Begin(opts Options) (*Tx, error) {
	wait := opts.LockWait
	if wait == 0 {
		wait = DefaultLockWait
	}
	lock, err := acquireLock(opts.Paths.Lock, wait)
	if err != nil {
		return nil, err
	}
	tx := &Tx{paths: opts.Paths, lock: lock, state: StateLocked, orig: map[string][]byte{}}

	if err := tx.load(); err != nil {
		tx.abort()
		return nil, err
	}
	tx.state = StateLoaded
	return tx, nil
}

func (tx *Tx) load() error {
	read := func(path string, optional bool) ([]byte, error) {
		b, err := fsx.ReadFile(path)
		if err != nil {
			if optional && os.IsNotExist(err) {
				log.Warn().Str("path", path).Msg("database file missing, treating as empty")
				return nil, nil
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return b, nil
	}

	passwd, err := read(tx.paths.Passwd, false)
	if err != nil {
		return err
	}
	shadow, err := read(tx.paths.Shadow, false)
	if err != nil {
		return err
	}
	group, err := read(tx.paths.Group, false)
	if err != nil {
		return err
	}
	// Hosts without group shadowing have no gshadow file at all.
	gshadow, err := read(tx.paths.GShadow, true)
	if err != nil {
		return err
	}

	db, err := identdb.Load(passwd, shadow, group, gshadow)
	if err != nil {
		return err
	}
	tx.db = db
	tx.orig[tx.paths.Passwd] = passwd
	tx.orig[tx.paths.Shadow] = shadow
	tx.orig[tx.paths.Group] = group
	tx.orig[tx.paths.GShadow] = gshadow
	return nil
}

// DB exposes the model for mutation. Valid only between Begin and
// Commit/Close.
func (tx *Tx) DB() *identdb.DB {
	if tx.state == StateLoaded {
		tx.state = StateMutating
	}
	return tx.db
}

func (tx *Tx) State() State { return tx.state }

// Commit validates the mutated state, then serializes each database to
// a temporary file and renames it over its target in fixed order, with
// the passwd file last: it is the file readers check to see whether
// the operation is finished. A rename failure partway through leaves
// the already-renamed files in place; this is surfaced to the operator
// verbatim, never retried.
func (tx *Tx) Commit() error {
	switch tx.state {
	case StateLoaded, StateMutating:
	default:
		return fmt.Errorf("commit in state %s", tx.state)
	}

	tx.state = StateValidating
	if verr := tx.db.Validate(); verr != nil {
		tx.abort()
		return verr
	}
	if err := tx.checkUnchanged(); err != nil {
		tx.abort()
		return err
	}

	tx.state = StateCommitting
	writes := []struct {
		path string
		data []byte
		mode os.FileMode
	}{
		{tx.paths.Group, identdb.SerializeGroup(tx.db.Groups()), fsx.FileMode(tx.paths.Group, 0644)},
		{tx.paths.GShadow, identdb.SerializeGShadow(tx.db.ShadowGroups()), fsx.FileMode(tx.paths.GShadow, 0600)},
		{tx.paths.Shadow, identdb.SerializeShadow(tx.db.Shadows()), fsx.FileMode(tx.paths.Shadow, 0600)},
		{tx.paths.Passwd, identdb.SerializePasswd(tx.db.Users()), fsx.FileMode(tx.paths.Passwd, 0644)},
	}
	for i, w := range writes {
		if err := fsx.WriteFileAtomic(w.path, w.data, w.mode); err != nil {
			tx.releaseLock()
			tx.state = StateAborted
			if i > 0 {
				return fmt.Errorf("commit failed after %d of %d files were replaced, databases need operator attention: %w", i, len(writes), err)
			}
			return fmt.Errorf("commit %s: %w", w.path, err)
		}
	}

	tx.releaseLock()
	tx.db = nil
	tx.state = StateIdle
	log.Info().Msg("identity databases committed")
	return nil
}

// checkUnchanged verifies no writer bypassed the advisory lock between
// load and commit.
func (tx *Tx) checkUnchanged() error {
	for _, path := range []string{tx.paths.Passwd, tx.paths.Shadow, tx.paths.Group, tx.paths.GShadow} {
		cur, err := fsx.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) && len(tx.orig[path]) == 0 {
				continue
			}
			return fmt.Errorf("reread %s: %w", path, err)
		}
		if !bytes.Equal(cur, tx.orig[path]) {
			return fmt.Errorf("%s was modified outside the lock, aborting to avoid corruption", path)
		}
	}
	return nil
}

// Close aborts the transaction if it was not committed: the lock is
// released and no file is touched. Safe to defer and to call after a
// successful Commit.
func (tx *Tx) Close() {
	switch tx.state {
	case StateIdle, StateAborted:
		return
	}
	tx.abort()
}

func (tx *Tx) abort() {
	tx.releaseLock()
	tx.db = nil
	tx.state = StateIdle
}

func (tx *Tx) releaseLock() {
	if tx.lock != nil {
		tx.lock.release()
		tx.lock = nil
	}
}

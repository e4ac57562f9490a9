package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/hnrobert/idstore/internal/fsx"
	"github.com/hnrobert/idstore/internal/identdb"
)

// Provisioner is the directory collaborator contract: home lifecycle
// and skeleton population. Implementations are invoked only after a
// successful commit; failures here never roll back record state.
type Provisioner interface {
	CreateHome(u identdb.UserRecord) error
	RemoveHome(u identdb.UserRecord) error
	PopulateSkeleton(u identdb.UserRecord) error
}

// ProvisionError wraps a filesystem failure with the operation and
// user it belonged to.
type ProvisionError struct {
	Op   string
	User string
	Err  error
}

func (e *ProvisionError) Error() string {
	return fmt.Sprintf("provision %s for %s: %v", e.Op, e.User, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// Host provisions home directories on the local filesystem.
type Host struct {
	SkelDir string
	Mode    os.FileMode
}

func NewHost(skelDir string) *Host {
	return &Host{SkelDir: skelDir, Mode: 0755}
}

func (h *Host) CreateHome(u identdb.UserRecord) error {
	if u.Home == "" || !filepath.IsAbs(u.Home) {
		return &ProvisionError{Op: "create home", User: u.Name, Err: fmt.Errorf("invalid home path %q", u.Home)}
	}
	if err := fsx.EnsureDir(u.Home, h.Mode); err != nil {
		return &ProvisionError{Op: "create home", User: u.Name, Err: err}
	}
	if err := os.Chown(u.Home, u.UID, u.GID); err != nil {
		return &ProvisionError{Op: "create home", User: u.Name, Err: err}
	}
	log.Debug().Str("user", u.Name).Str("home", u.Home).Msg("created home directory")
	return nil
}

func (h *Host) PopulateSkeleton(u identdb.UserRecord) error {
	if h.SkelDir == "" {
		return nil
	}
	if _, err := os.Stat(h.SkelDir); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ProvisionError{Op: "populate skeleton", User: u.Name, Err: err}
	}
	if err := fsx.CopyTree(h.SkelDir, u.Home, u.UID, u.GID); err != nil {
		return &ProvisionError{Op: "populate skeleton", User: u.Name, Err: err}
	}
	return nil
}

func (h *Host) RemoveHome(u identdb.UserRecord) error {
	// Refuse obviously dangerous targets, the record may be legacy junk.
	if u.Home == "" || u.Home == "/" || !filepath.IsAbs(u.Home) {
		return &ProvisionError{Op: "remove home", User: u.Name, Err: fmt.Errorf("refusing to remove %q", u.Home)}
	}
	if err := os.RemoveAll(u.Home); err != nil {
		return &ProvisionError{Op: "remove home", User: u.Name, Err: err}
	}
	log.Debug().Str("user", u.Name).Str("home", u.Home).Msg("removed home directory")
	return nil
}

package command

import (
	"github.com/spf13/cobra"

	"github.com/hnrobert/idstore/internal/lifecycle"
)

var (
	useraddUID        int
	useraddGID        int
	useraddGecos      string
	useraddHome       string
	useraddShell      string
	useraddHash       string
	useraddGroups     []string
	useraddCreateHome bool
)

var useraddCmd = &cobra.Command{
	Use:   "useradd NAME",
	Short: "Create a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return fail(err)
		}
		u, err := mgr.CreateUser(lifecycle.CreateUserRequest{
			Name:         args[0],
			UID:          useraddUID,
			GID:          useraddGID,
			Gecos:        useraddGecos,
			Home:         useraddHome,
			Shell:        useraddShell,
			PasswordHash: useraddHash,
			ExtraGroups:  useraddGroups,
			CreateHome:   useraddCreateHome,
		})
		if err != nil {
			return fail(err)
		}
		cmd.Printf("created user %s (uid %d, gid %d)\n", u.Name, u.UID, u.GID)
		return nil
	},
}

func init() {
	f := useraddCmd.Flags()
	f.IntVarP(&useraddUID, "uid", "u", -1, "uid to assign (default: next free)")
	f.IntVarP(&useraddGID, "gid", "g", -1, "primary gid (default: new per-user group)")
	f.StringVarP(&useraddGecos, "comment", "c", "", "GECOS field")
	f.StringVarP(&useraddHome, "home", "d", "", "home directory path")
	f.StringVarP(&useraddShell, "shell", "s", "", "login shell")
	f.StringVarP(&useraddHash, "password", "p", "", "pre-hashed password (opaque)")
	f.StringSliceVarP(&useraddGroups, "groups", "G", nil, "supplementary groups")
	f.BoolVarP(&useraddCreateHome, "create-home", "m", false, "create the home directory and copy the skeleton")
}

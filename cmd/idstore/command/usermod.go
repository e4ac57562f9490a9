package command

import (
	"github.com/spf13/cobra"

	"github.com/hnrobert/idstore/internal/identdb"
)

var (
	usermodGID      int
	usermodGecos    string
	usermodHome     string
	usermodShell    string
	usermodAddTo    []string
	usermodRemoveOf []string
)

var usermodCmd = &cobra.Command{
	Use:   "usermod NAME",
	Short: "Modify a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return fail(err)
		}
		name := args[0]

		var ch identdb.UserChange
		if cmd.Flags().Changed("gid") {
			ch.GID = &usermodGID
		}
		if cmd.Flags().Changed("comment") {
			ch.Gecos = &usermodGecos
		}
		if cmd.Flags().Changed("home") {
			ch.Home = &usermodHome
		}
		if cmd.Flags().Changed("shell") {
			ch.Shell = &usermodShell
		}
		if ch != (identdb.UserChange{}) {
			if err := mgr.ModifyUser(name, ch); err != nil {
				return fail(err)
			}
		}
		for _, g := range usermodAddTo {
			if err := mgr.AddUserToGroup(g, name); err != nil {
				return fail(err)
			}
		}
		for _, g := range usermodRemoveOf {
			if err := mgr.RemoveUserFromGroup(g, name); err != nil {
				return fail(err)
			}
		}
		cmd.Printf("modified user %s\n", name)
		return nil
	},
}

func init() {
	f := usermodCmd.Flags()
	f.IntVarP(&usermodGID, "gid", "g", -1, "new primary gid")
	f.StringVarP(&usermodGecos, "comment", "c", "", "new GECOS field")
	f.StringVarP(&usermodHome, "home", "d", "", "new home directory path")
	f.StringVarP(&usermodShell, "shell", "s", "", "new login shell")
	f.StringSliceVarP(&usermodAddTo, "add-to", "a", nil, "groups to add the user to")
	f.StringSliceVarP(&usermodRemoveOf, "remove-from", "R", nil, "groups to remove the user from")
}

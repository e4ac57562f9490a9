package command

import (
	"github.com/spf13/cobra"
)

var userdelRemoveHome bool

var userdelCmd = &cobra.Command{
	Use:   "userdel NAME",
	Short: "Delete a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return fail(err)
		}
		if err := mgr.DeleteUser(args[0], userdelRemoveHome); err != nil {
			return fail(err)
		}
		cmd.Printf("deleted user %s\n", args[0])
		return nil
	},
}

func init() {
	userdelCmd.Flags().BoolVarP(&userdelRemoveHome, "remove", "r", false, "also remove the home directory")
}

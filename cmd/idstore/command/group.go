package command

import (
	"github.com/spf13/cobra"
)

var groupaddGID int

var groupaddCmd = &cobra.Command{
	Use:   "groupadd NAME",
	Short: "Create a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return fail(err)
		}
		g, err := mgr.AddGroup(args[0], groupaddGID)
		if err != nil {
			return fail(err)
		}
		cmd.Printf("created group %s (gid %d)\n", g.Name, g.GID)
		return nil
	},
}

var groupdelCmd = &cobra.Command{
	Use:   "groupdel NAME",
	Short: "Delete a group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return fail(err)
		}
		if err := mgr.DeleteGroup(args[0]); err != nil {
			return fail(err)
		}
		cmd.Printf("deleted group %s\n", args[0])
		return nil
	},
}

func init() {
	groupaddCmd.Flags().IntVarP(&groupaddGID, "gid", "g", -1, "gid to assign (default: next free)")
}

package command

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listGroups bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List users or groups from a consistent snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newManager()
		if err != nil {
			return fail(err)
		}
		users, groups, err := mgr.Snapshot()
		if err != nil {
			return fail(err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		defer w.Flush()
		if listGroups {
			sort.Slice(groups, func(i, j int) bool { return groups[i].GID < groups[j].GID })
			fmt.Fprintln(w, "GROUP\tGID\tMEMBERS")
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%d\t%s\n", g.Name, g.GID, strings.Join(g.Members, ","))
			}
			return nil
		}
		sort.Slice(users, func(i, j int) bool { return users[i].UID < users[j].UID })
		fmt.Fprintln(w, "USER\tUID\tGID\tHOME\tSHELL")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", u.Name, u.UID, u.GID, u.Home, u.Shell)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVarP(&listGroups, "groups", "g", false, "list groups instead of users")
}

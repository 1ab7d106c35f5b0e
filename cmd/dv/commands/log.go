package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log [file-url]",
	Short: "Show the version history of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		versions, err := DV.Engine.ListVersions(cmd.Context(), caller.ID, args[0])
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			fmt.Println("No versions yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "VERSION\tID\tHASH\tCREATED")
		for _, v := range versions {
			fmt.Fprintf(w, "%d\t%d\t%s...\t%s\n",
				v.VersionNumber, v.ID, v.FileHash[:12], v.CreatedAt.Format(time.RFC1123))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
}

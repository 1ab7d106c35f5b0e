package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get [file-url]",
	Short: "Retrieve a file version",
	Long: `Resolve a file URL to a version (latest by default, or --version N)
and write its content to stdout or --output. Versions owned by the caller
take precedence over versions shared with the caller.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}

		var version *int
		if cmd.Flags().Changed("version") {
			n, _ := cmd.Flags().GetInt("version")
			version = &n
		}

		rec, reader, err := DV.Engine.GetVersion(cmd.Context(), caller.ID, args[0], version)
		if err != nil {
			return err
		}
		defer reader.Close()

		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			_, err = io.Copy(os.Stdout, reader)
			return err
		}

		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(f, reader); err != nil {
			return err
		}
		fmt.Printf("✅ %s (version %d) -> %s\n", rec.FileURL, rec.VersionNumber, output)
		return nil
	},
}

func init() {
	getCmd.Flags().Int("version", 0, "Specific version number (defaults to latest)")
	getCmd.Flags().StringP("output", "o", "", "Write content to this file instead of stdout")
	rootCmd.AddCommand(getCmd)
}

package commands

import (
	"fmt"
	"strconv"

	"docvault/pkg/vault"

	"github.com/spf13/cobra"
)

var grantCmd = &cobra.Command{
	Use:   "grant [version-id]",
	Short: "Replace the permission lists of a version",
	Long: `Replace the read/write permission lists of a single version record.
Each flag replaces the whole list (clear-then-add): passing an empty value
clears the list, omitting the flag leaves the list untouched.
Unknown emails are skipped silently. Permissions do not carry over to
other versions of the same file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		versionID, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version id %q", args[0])
		}

		var update vault.PermissionUpdate
		// Changed 区分"没传" (不动) 和"传了空值" (清空)
		if cmd.Flags().Changed("read") {
			emails, _ := cmd.Flags().GetStringSlice("read")
			update.ReadEmails = &emails
		}
		if cmd.Flags().Changed("write") {
			emails, _ := cmd.Flags().GetStringSlice("write")
			update.WriteEmails = &emails
		}
		if update.ReadEmails == nil && update.WriteEmails == nil {
			return fmt.Errorf("nothing to do: pass --read and/or --write")
		}

		rec, err := DV.Perms.Update(cmd.Context(), versionID, update)
		if err != nil {
			return err
		}

		readers, _ := rec.Readers()
		writers, _ := rec.Writers()
		fmt.Printf("✅ %s v%d: %d reader(s), %d writer(s)\n",
			rec.FileURL, rec.VersionNumber, len(readers), len(writers))
		return nil
	},
}

func init() {
	grantCmd.Flags().StringSlice("read", nil, "Replace the read permission list (comma-separated emails)")
	grantCmd.Flags().StringSlice("write", nil, "Replace the write permission list (comma-separated emails)")
	rootCmd.AddCommand(grantCmd)
}

package commands

import (
	"fmt"
	"io"
	"os"

	"docvault/pkg/types"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:   "cat [hash]",
	Short: "Show raw object content by hash",
	Long: `Read an object straight out of the content store by its SHA256 hash.
Short hashes are expanded (at least 4 characters). Bypasses the version
index entirely, so this is a debugging door, not an access-controlled path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// 短哈希扩展成完整哈希
		hash, err := DV.Store.ExpandHash(ctx, types.HashPrefix(args[0]))
		if err != nil {
			return fmt.Errorf("invalid hash argument '%s': %w", args[0], err)
		}

		reader, err := DV.Store.Get(ctx, hash)
		if err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		defer reader.Close()

		_, err = io.Copy(os.Stdout, reader)
		return err
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a DocVault repository",
	Long:  `Create an empty DocVault repository or reinitialize an existing one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}

		repoPath := filepath.Join(wd, ".dv")
		objectsPath := filepath.Join(repoPath, "objects")

		if _, err := os.Stat(repoPath); err == nil {
			fmt.Printf("⚠️  DocVault repository already exists in %s\n", repoPath)
			return nil
		}

		// .dv/objects 存内容对象，.dv/meta.db 由首次访问时自动创建
		if err := os.MkdirAll(objectsPath, 0755); err != nil {
			return fmt.Errorf("failed to create repo directory: %w", err)
		}

		fmt.Printf("✅ Initialized empty DocVault repository in %s\n", repoPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

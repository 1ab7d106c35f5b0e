// cmd/dv/commands/put.go

package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"docvault/pkg/ignore"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// dirUploadWorkers 目录上传的并发度
// 磁盘后端基本瞬间完成；这个值是为 S3 这类网络后端准备的
const dirUploadWorkers = 8

var putCmd = &cobra.Command{
	Use:   "put [path]",
	Short: "Store a new version of a file (or every file in a directory)",
	Long: `Upload file contents as a new version under a logical file URL.
If path is a directory, every non-ignored file inside it is uploaded,
using its relative path as the file URL. Respects .dvignore rules.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		caller, err := currentUser(cmd.Context())
		if err != nil {
			return err
		}
		targetPath := args[0]

		info, err := os.Stat(targetPath)
		if err != nil {
			return err
		}

		if info.IsDir() {
			return putDirectory(cmd, targetPath, caller.ID)
		}
		return putSingleFile(cmd, targetPath, caller.ID)
	},
}

func putSingleFile(cmd *cobra.Command, path string, callerID uint64) error {
	fileURL, _ := cmd.Flags().GetString("url")
	if fileURL == "" {
		// 不指定 --url 就拿文件路径本身当逻辑路径
		fileURL = filepath.ToSlash(filepath.Clean(path))
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	rec, err := DV.Engine.PutVersion(cmd.Context(), callerID, fileURL, content)
	if err != nil {
		return err
	}
	fmt.Printf("✅ %s -> version %d (id=%d, hash=%s...)\n", rec.FileURL, rec.VersionNumber, rec.ID, rec.FileHash[:8])
	return nil
}

// putDirectory 并发上传目录下的所有文件
// 每个文件的逻辑路径 = 相对于目录根的相对路径
func putDirectory(cmd *cobra.Command, root string, callerID uint64) error {
	matcher, err := ignore.NewMatcher(root)
	if err != nil {
		return fmt.Errorf("failed to load ignore rules: %w", err)
	}

	// 1. 先收集文件清单 (遍历是顺序的，上传才并发)
	var paths []string
	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}

		if matcher.Matches(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		paths = append(paths, rel)
		return nil
	}
	if err := filepath.WalkDir(root, walkFn); err != nil {
		return fmt.Errorf("walk failed: %w", err)
	}

	if len(paths) == 0 {
		fmt.Println("⚠️  No files to upload.")
		return nil
	}

	// 2. errgroup 并发上传，失败即整体取消
	start := time.Now()
	var uploaded, deduped int64

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(dirUploadWorkers)

	for _, rel := range paths {
		g.Go(func() error {
			content, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				return err
			}

			rec, err := DV.Engine.PutVersion(ctx, callerID, rel, content)
			if err != nil {
				return fmt.Errorf("failed to put %s: %w", rel, err)
			}

			// 追加之前就存在且内容一致 → 引擎做了 no-op 去重
			if rec.CreatedAt.Before(start) {
				atomic.AddInt64(&deduped, 1)
			} else {
				atomic.AddInt64(&uploaded, 1)
			}
			fmt.Printf("  %s -> v%d\n", rel, rec.VersionNumber)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("✅ Put %d files (%d unchanged) in %s\n", uploaded, deduped, time.Since(start).Round(time.Millisecond))
	return nil
}

func init() {
	putCmd.Flags().String("url", "", "Logical file URL (defaults to the file path)")
	rootCmd.AddCommand(putCmd)
}

package vault

import (
	"context"
	"fmt"
	"io"
	"testing"

	"docvault/pkg/meta"
	"docvault/pkg/storage/disk"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testVault 把引擎和它的依赖打包，方便测试里直接戳底层状态
type testVault struct {
	engine *Engine
	perms  *PermissionManager
	repo   *meta.Repository
	root   string // 磁盘内容库根目录
}

func newTestVault(t *testing.T) *testVault {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	db := meta.NewWithConn(conn)
	require.NoError(t, db.AutoMigrate(&meta.User{}, &meta.FileVersion{}))
	repo := meta.NewRepository(db)

	root := t.TempDir()
	store, err := disk.NewAdapter(root)
	require.NoError(t, err)

	return &testVault{
		engine: NewEngine(store, repo),
		perms:  NewPermissionManager(repo),
		repo:   repo,
		root:   root,
	}
}

func (v *testVault) mustUser(t *testing.T, email string) *meta.User {
	t.Helper()
	u, err := v.repo.CreateUser(context.Background(), email, email)
	require.NoError(t, err)
	return u
}

// mustRead 读完内容流并关闭
func mustRead(t *testing.T, r io.ReadCloser) []byte {
	t.Helper()
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return data
}

func intPtr(n int) *int { return &n }

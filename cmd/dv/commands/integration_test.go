package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"docvault/pkg/app"
	"docvault/pkg/meta"
	"docvault/pkg/storage/disk"
	"docvault/pkg/vault"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupIntegrationEnv 搭建一个使用 真实文件系统 + 内存数据库 的集成环境
func setupIntegrationEnv(t *testing.T) (*app.App, string) {
	// 1. 准备临时工作目录
	tmpDir := t.TempDir()

	// 2. 初始化 .dv 目录结构
	dvDir := filepath.Join(tmpDir, ".dv")
	objectsDir := filepath.Join(dvDir, "objects")
	require.NoError(t, os.MkdirAll(objectsDir, 0755))

	// 3. 真实的磁盘内容库
	store, err := disk.NewAdapter(objectsDir)
	require.NoError(t, err)

	// 4. 内存数据库代替 Postgres，测试极速运行且无外部依赖
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	metaDB := meta.NewWithConn(db)
	require.NoError(t, metaDB.AutoMigrate(&meta.User{}, &meta.FileVersion{}))
	repo := meta.NewRepository(metaDB)

	// 5. 组装 App 并注入全局变量 DV (cmd 包依赖它)
	application := &app.App{
		Store:    store,
		Repo:     repo,
		Engine:   vault.NewEngine(store, repo),
		Perms:    vault.NewPermissionManager(repo),
		RepoPath: dvDir,
	}
	DV = application

	return application, tmpDir
}

// TestIntegration_VersioningFlow 跑一遍完整的协作场景：
// 两个用户、版本追加、去重、共享、权限替换
func TestIntegration_VersioningFlow(t *testing.T) {
	app, _ := setupIntegrationEnv(t)
	ctx := context.Background()

	// 注册两个用户
	u1, err := app.Repo.CreateUser(ctx, "u1@example.com", "User One")
	require.NoError(t, err)
	u2, err := app.Repo.CreateUser(ctx, "u2@example.com", "User Two")
	require.NoError(t, err)

	// U1 上传两个版本
	v0, err := app.Engine.PutVersion(ctx, u1.ID, "documents/reviews/review.pdf", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 0, v0.VersionNumber)

	v1, err := app.Engine.PutVersion(ctx, u1.ID, "documents/reviews/review.pdf", []byte("world"))
	require.NoError(t, err)
	assert.Equal(t, 1, v1.VersionNumber)

	// 重复上传同样的内容：no-op
	again, err := app.Engine.PutVersion(ctx, u1.ID, "documents/reviews/review.pdf", []byte("world"))
	require.NoError(t, err)
	assert.Equal(t, v1.ID, again.ID)

	// U2 还看不到任何东西
	_, _, err = app.Engine.GetVersion(ctx, u2.ID, "documents/reviews/review.pdf", nil)
	assert.ErrorIs(t, err, vault.ErrNotFound)

	// U1 把版本 0 共享给 U2
	readers := []string{"u2@example.com"}
	_, err = app.Perms.Update(ctx, v0.ID, vault.PermissionUpdate{ReadEmails: &readers})
	require.NoError(t, err)

	// U2 现在能读到版本 0 的内容 ("hello")，但读不到版本 1
	rec, reader, err := app.Engine.GetVersion(ctx, u2.ID, "documents/reviews/review.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, rec.VersionNumber)
	assert.Equal(t, []byte("hello"), mustReadAll(t, reader))

	_, _, err = app.Engine.GetVersion(ctx, u2.ID, "documents/reviews/review.pdf", intp(1))
	assert.ErrorIs(t, err, vault.ErrNotFound)

	// 权限整体替换成空集合：U2 失去访问
	empty := []string{}
	_, err = app.Perms.Update(ctx, v0.ID, vault.PermissionUpdate{ReadEmails: &empty})
	require.NoError(t, err)
	_, _, err = app.Engine.GetVersion(ctx, u2.ID, "documents/reviews/review.pdf", nil)
	assert.ErrorIs(t, err, vault.ErrNotFound)

	// 快照把当前索引状态固化进内容库
	snap, err := app.Engine.TakeSnapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, snap.Entries, 2)

	exists, err := app.Store.Has(ctx, snap.ID())
	require.NoError(t, err)
	assert.True(t, exists, "快照对象必须落进内容库")

	t.Logf("✅ Integration Test Passed: snapshot %s persisted (Disk + SQL)", snap.ID())
}

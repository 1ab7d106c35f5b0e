package meta

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestRepo 建一个共享缓存的内存 SQLite 库
// 用 t.Name() 当库名，保证测试之间互不干扰
func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	db := NewWithConn(conn)
	require.NoError(t, db.AutoMigrate(&User{}, &FileVersion{}))

	return NewRepository(db)
}

// mustCreateUser 建用户，失败直接终止测试
func mustCreateUser(t *testing.T, r *Repository, email string) *User {
	t.Helper()
	u, err := r.CreateUser(context.Background(), email, email)
	require.NoError(t, err)
	return u
}

// mustAppend 追加一条版本记录，失败直接终止测试
func mustAppend(t *testing.T, r *Repository, fileURL string, ownerID uint64, version int, hash string) *FileVersion {
	t.Helper()
	v := &FileVersion{
		FileURL:       fileURL,
		OwnerID:       ownerID,
		VersionNumber: version,
		FileHash:      hash,
	}
	require.NoError(t, r.AppendVersion(context.Background(), v))
	return v
}

// pkg/app/app.go
package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"docvault/pkg/meta"
	"docvault/pkg/storage"
	"docvault/pkg/storage/cache"
	"docvault/pkg/storage/disk"
	"docvault/pkg/storage/s3"
	"docvault/pkg/vault"

	"github.com/spf13/viper"
)

// App 是整个应用程序的依赖容器 (Dependency Container)
// 它持有所有“单例”服务
type App struct {
	Store  storage.Store
	Repo   *meta.Repository
	Engine *vault.Engine
	Perms  *vault.PermissionManager

	RepoPath string
}

// NewApp 是工厂函数，负责组装这一台机器
// 它遵循 Viper 的配置，但不知道具体的 CLI 命令
func NewApp(ctx context.Context) (*App, error) {
	// 1. 仓库根路径 (Single Source of Truth)
	storePath := viper.GetString("storage.path")
	if storePath == "" {
		return nil, fmt.Errorf("storage path not set")
	}
	repoPath := filepath.Dir(storePath)

	// 2. 内容库 (disk / s3，可选 Redis 存在性缓存装饰)
	store, err := initStore(ctx, storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	// 3. 元数据库 (版本索引 + 用户 + 权限名单)
	db, err := meta.NewDB(ctx, meta.Config{
		Driver:   viper.GetString("database.driver"),
		Path:     viper.GetString("database.path"),
		Host:     viper.GetString("database.host"),
		Port:     viper.GetInt("database.port"),
		User:     viper.GetString("database.user"),
		Password: viper.GetString("database.password"),
		DBName:   viper.GetString("database.dbname"),
		SSLMode:  viper.GetString("database.sslmode"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init metadata db: %w", err)
	}
	repo := meta.NewRepository(db)

	return &App{
		Store:    store,
		Repo:     repo,
		Engine:   vault.NewEngine(store, repo),
		Perms:    vault.NewPermissionManager(repo),
		RepoPath: repoPath,
	}, nil
}

// initStore 按配置组装内容库
// 后端选型和缓存装饰都在这一个地方决定，上层只看到 storage.Store 接口
func initStore(ctx context.Context, storePath string) (storage.Store, error) {
	var (
		backend storage.Store
		err     error
	)

	switch storeType := viper.GetString("storage.type"); storeType {
	case "", "disk":
		backend, err = disk.NewAdapter(storePath)
		if err != nil {
			return nil, err
		}

	case "s3":
		bucket := viper.GetString("s3.bucket")
		if bucket == "" {
			return nil, fmt.Errorf("s3 bucket is required")
		}
		backend, err = s3.NewAdapter(ctx, s3.Config{
			Endpoint:        viper.GetString("s3.endpoint"),
			Region:          viper.GetString("s3.region"),
			Bucket:          bucket,
			AccessKeyID:     viper.GetString("s3.access_key_id"),
			SecretAccessKey: viper.GetString("s3.secret_access_key"),
		})
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unsupported storage type: %q", storeType)
	}

	// 可选的 Redis 存在性缓存
	if redisURL := viper.GetString("cache.redis_url"); redisURL != "" {
		ttl := viper.GetDuration("cache.ttl")
		if ttl == 0 {
			ttl = time.Hour
		}
		cached, err := cache.NewCachedStore(backend, cache.Config{
			RedisURL: redisURL,
			TTL:      ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to init redis cache: %w", err)
		}
		return cached, nil
	}

	return backend, nil
}

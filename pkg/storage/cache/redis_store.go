package cache

import (
	"context"
	"fmt"
	"io"
	"time"

	"docvault/pkg/core"
	"docvault/pkg/storage"
	"docvault/pkg/types"

	"github.com/redis/go-redis/v9"
)

// CachedStore 是一个装饰器，为底层的 storage.Store 添加 Redis 存在性缓存
// 只缓存 "这个 Hash 存不存在"，不缓存 Blob 数据本身：
// 文件内容可能很大，Redis 内存宝贵，存在性信息性价比最高——
// 它正好服务于去重检查这个最高频的查询
type CachedStore struct {
	backend storage.Store
	client  *redis.Client
	ttl     time.Duration
}

type Config struct {
	RedisURL string        // 标准连接字符串: redis://<user>:<password>@<host>:<port>/<db>
	TTL      time.Duration // 缓存过期时间 (例如 24h)
}

func NewCachedStore(backend storage.Store, cfg Config) (*CachedStore, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Fail-fast 连接检查
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &CachedStore{
		backend: backend,
		client:  client,
		ttl:     cfg.TTL,
	}, nil
}

// cacheKey 生成 Redis Key，加前缀防止冲突
func (s *CachedStore) cacheKey(hash types.Hash) string {
	return "dv:obj:" + hash.String()
}

// Has 优先查 Redis，毫秒级去重判断
func (s *CachedStore) Has(ctx context.Context, hash types.Hash) (bool, error) {
	key := s.cacheKey(hash)

	val, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		// 缓存故障降级：Redis 挂了就退化为无缓存模式，直接查底层存储
		fmt.Printf("⚠️  redis error (degrading to backend): %v\n", err)
	} else if val > 0 {
		// Cache Hit: 无需访问底层存储
		return true, nil
	}

	// Cache Miss，查底层存储
	found, err := s.backend.Has(ctx, hash)
	if err != nil {
		return false, err
	}

	// 缓存回填：异步写，不阻塞主流程
	// 用 context.Background() 保证上层 ctx 取消后回填仍能完成
	if found {
		go func() {
			fillCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			s.client.Set(fillCtx, key, "1", s.ttl)
		}()
	}

	return found, nil
}

// Put 上传对象。利用 Has 的缓存能力做预检
func (s *CachedStore) Put(ctx context.Context, obj core.Object) error {
	exists, err := s.Has(ctx, obj.ID())
	if err != nil {
		return err
	}
	if exists {
		return nil // 幂等：已存在
	}

	if err := s.backend.Put(ctx, obj); err != nil {
		return err
	}

	// 只有底层写成功了才写缓存；这里的 Set 错误可以忽略
	s.client.Set(ctx, s.cacheKey(obj.ID()), "1", s.ttl)
	return nil
}

// Get 透传 (不缓存数据)
func (s *CachedStore) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	return s.backend.Get(ctx, hash)
}

// ExpandHash 透传
func (s *CachedStore) ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error) {
	return s.backend.ExpandHash(ctx, prefix)
}

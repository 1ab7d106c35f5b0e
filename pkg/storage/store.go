package storage

import (
	"context"
	"errors"
	"io"

	"docvault/pkg/core"
	"docvault/pkg/types"
)

var (
	ErrNotFound      = errors.New("object not found")
	ErrAmbiguousHash = errors.New("ambiguous hash prefix")
)

// Store 定义了内容库后端的接口
// 实现可以是本地磁盘、对象存储 (S3/MinIO)，外面还可以再包一层缓存装饰器
//
// 内容库是 write-once / read-many 的：
// 对象落盘之后永远不变，也没有删除操作 (孤儿对象的回收不在本层职责内)
type Store interface {
	// Put 持久化一个对象。幂等：同一个 Hash 重复写入是无害的空操作。
	// 并发写同一个 Hash 也是安全的——内容按构造相同，last-write-wins 即可
	Put(ctx context.Context, obj core.Object) error

	// Get 根据 Hash 读取原始数据
	// 返回 io.ReadCloser 而不是 []byte，以支持大文件的流式读取
	Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error)

	// Has 检查对象是否存在 (去重判断的依据)
	Has(ctx context.Context, hash types.Hash) (bool, error)

	// ExpandHash 把短哈希扩展为完整 Hash
	// 匹配 0 个 -> ErrNotFound; 多于 1 个 -> ErrAmbiguousHash
	ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error)
}

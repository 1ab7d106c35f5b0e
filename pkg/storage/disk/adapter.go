package disk

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"docvault/pkg/core"
	"docvault/pkg/storage"
	"docvault/pkg/types"
)

// Adapter 实现了 storage.Store 接口
// 目录布局：root/aa/bbcc... (取 Hash 前 2 个字符做 Sharding，
// 避免单目录下文件数量爆炸)
type Adapter struct {
	root string // 内容库根目录，进程级配置注入，不在调用点临时读取
}

// NewAdapter 创建磁盘内容库
func NewAdapter(root string) (*Adapter, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create content store root: %w", err)
	}
	return &Adapter{root: root}, nil
}

// objectPath 返回 Hash 对应的物理路径
func (a *Adapter) objectPath(hash types.Hash) string {
	h := hash.String()
	if len(h) < 2 {
		return filepath.Join(a.root, h)
	}
	return filepath.Join(a.root, h[:2], h[2:])
}

// Put 原子写入：先写临时文件，再 Rename 到最终位置
// 保证任何时刻最终路径上的文件要么不存在，要么是完整的。
// 临时文件在任何失败分支上都会被清理
func (a *Adapter) Put(ctx context.Context, obj core.Object) error {
	target := a.objectPath(obj.ID())

	// 幂等性：已存在直接跳过 (这就是内容寻址的好处)
	if _, err := os.Stat(target); err == nil {
		return nil
	}

	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create shard dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".put-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	// Rename 成功后这个 Remove 会失败且无害；失败路径上它负责兜底清理
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(obj.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write object data: %w", err)
	}
	// 必须先关闭才能 Rename
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to commit object: %w", err)
	}
	return nil
}

func (a *Adapter) Get(ctx context.Context, hash types.Hash) (io.ReadCloser, error) {
	f, err := os.Open(a.objectPath(hash))
	if os.IsNotExist(err) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	return f, nil
}

func (a *Adapter) Has(ctx context.Context, hash types.Hash) (bool, error) {
	_, err := os.Stat(a.objectPath(hash))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// ExpandHash 在 Sharding 目录里按前缀查找完整 Hash
func (a *Adapter) ExpandHash(ctx context.Context, prefix types.HashPrefix) (types.Hash, error) {
	p := prefix.String()
	if len(p) < 4 {
		return "", fmt.Errorf("hash prefix too short: %q", p)
	}

	shard := p[:2]
	rest := p[2:]

	entries, err := os.ReadDir(filepath.Join(a.root, shard))
	if os.IsNotExist(err) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to scan shard dir: %w", err)
	}

	var matches []types.Hash
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), rest) {
			matches = append(matches, types.Hash(shard+e.Name()))
		}
	}

	switch len(matches) {
	case 0:
		return "", storage.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return "", storage.ErrAmbiguousHash
	}
}

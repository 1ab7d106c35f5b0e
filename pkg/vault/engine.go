package vault

import (
	"context"
	"errors"
	"fmt"
	"io"

	"docvault/pkg/core"
	"docvault/pkg/meta"
	"docvault/pkg/storage"
	"docvault/pkg/types"
)

// maxPutRetries 限制版本号竞争的重试次数
// 冲突概率正比于同一条 (file_url, owner) 序列上的并发写者数量，正常负载下一次就够
const maxPutRetries = 5

// VersionIndex 是引擎依赖的版本索引操作子集
// *meta.Repository 是生产实现；接口留给测试注入故障 (比如制造版本号冲突)
type VersionIndex interface {
	LatestVersion(ctx context.Context, fileURL string, ownerID uint64) (*meta.FileVersion, error)
	ExactVersion(ctx context.Context, fileURL string, ownerID uint64, version int) (*meta.FileVersion, error)
	SharedLatest(ctx context.Context, fileURL string, callerID uint64) (*meta.FileVersion, error)
	SharedExact(ctx context.Context, fileURL string, callerID uint64, version int) (*meta.FileVersion, error)
	AppendVersion(ctx context.Context, v *meta.FileVersion) error
	ListVersions(ctx context.Context, fileURL string, ownerID uint64) ([]meta.FileVersion, error)
	ListAll(ctx context.Context) ([]meta.FileVersion, error)
}

// Engine 把内容库和版本索引装配成版本化文件存储：
//   - 内容按 SHA256 寻址，相同内容全局只存一份
//   - 版本号在 (file_url, owner) 序列内从 0 连续递增
//   - 写入顺序固定为"先落 Blob，再写索引"：索引里出现的版本
//     一定能取到内容；反过来，孤儿 Blob 无害
type Engine struct {
	store storage.Store
	repo  VersionIndex
}

func NewEngine(store storage.Store, repo VersionIndex) *Engine {
	return &Engine{store: store, repo: repo}
}

// PutVersion 为 caller 在 fileURL 上追加一个新版本，返回落库的版本记录。
//
// 若最新版本的内容哈希与本次相同，则不产生新版本，直接返回最新版本 (幂等去重)。
// 并发追加同一条序列时，靠唯一索引仲裁版本号，失败方重读重试。
func (e *Engine) PutVersion(ctx context.Context, callerID uint64, fileURL string, content []byte) (*meta.FileVersion, error) {
	// 1. 入参校验：空内容和非法路径一样，在产生任何状态之前拒绝
	if len(content) == 0 {
		return nil, ErrEmptyContent
	}
	normalized, err := core.NormalizeFileURL(fileURL)
	if err != nil {
		return nil, err
	}

	// 2. 计算内容地址
	blob := core.NewBlob(content)
	hash := blob.ID().String()

	var blobStored bool
	for attempt := 0; attempt < maxPutRetries; attempt++ {
		// 3. 读序列当前的最新版本
		latest, err := e.repo.LatestVersion(ctx, normalized, callerID)
		if err != nil {
			return nil, err
		}

		// 4. 内容没变就是 no-op——重试路径上也要重查，
		//    对手方可能刚刚写入了同样的内容
		if latest != nil && latest.FileHash == hash {
			return latest, nil
		}

		next := 0
		if latest != nil {
			next = latest.VersionNumber + 1
		}

		// 5. 先保证 Blob 落盘 (循环内只做一次)
		//    内容库是写一次读多次的，重复 Put 是幂等的
		if !blobStored {
			if err := e.store.Put(ctx, blob); err != nil {
				return nil, fmt.Errorf("failed to store content: %w", err)
			}
			blobStored = true
		}

		// 6. 条件追加：版本号被抢走就回到第 3 步
		record := &meta.FileVersion{
			FileURL:       normalized,
			OwnerID:       callerID,
			VersionNumber: next,
			FileHash:      hash,
		}
		err = e.repo.AppendVersion(ctx, record)
		if errors.Is(err, meta.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return record, nil
	}

	return nil, ErrTooManyConflicts
}

// GetVersion 解析并读取一个文件版本，返回版本记录和内容流。
//
// 解析顺序是契约的一部分：
//  1. caller 自己的序列里找 (指定版本或最新)
//  2. 找不到再看别人共享给 caller 的版本
//  3. 都没有 → ErrNotFound
//
// 即使别人共享的版本存在，caller 自己的同名序列也会优先命中——
// 所有权遮蔽共享。
func (e *Engine) GetVersion(ctx context.Context, callerID uint64, fileURL string, version *int) (*meta.FileVersion, io.ReadCloser, error) {
	normalized, err := core.NormalizeFileURL(fileURL)
	if err != nil {
		return nil, nil, err
	}

	record, err := e.resolve(ctx, callerID, normalized, version)
	if err != nil {
		return nil, nil, err
	}
	if record == nil {
		return nil, nil, ErrNotFound
	}

	// 索引有记录但内容库取不到，说明存储被破坏——对外同样表现为 NotFound
	reader, err := e.store.Get(ctx, types.Hash(record.FileHash))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("index entry exists but content is missing (hash %s): %w", record.FileHash, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read content: %w", err)
	}
	return record, reader, nil
}

// Stat 只做版本解析，不取内容 (用于 dv log 等只读元数据的场景)
func (e *Engine) Stat(ctx context.Context, callerID uint64, fileURL string, version *int) (*meta.FileVersion, error) {
	normalized, err := core.NormalizeFileURL(fileURL)
	if err != nil {
		return nil, err
	}
	record, err := e.resolve(ctx, callerID, normalized, version)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}
	return record, nil
}

func (e *Engine) resolve(ctx context.Context, callerID uint64, fileURL string, version *int) (*meta.FileVersion, error) {
	// 自己的序列优先
	var (
		record *meta.FileVersion
		err    error
	)
	if version != nil {
		record, err = e.repo.ExactVersion(ctx, fileURL, callerID, *version)
	} else {
		record, err = e.repo.LatestVersion(ctx, fileURL, callerID)
	}
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}

	// 共享回退
	if version != nil {
		return e.repo.SharedExact(ctx, fileURL, callerID, *version)
	}
	return e.repo.SharedLatest(ctx, fileURL, callerID)
}

// ListVersions 返回 caller 自己一条序列的版本历史，新的在前
func (e *Engine) ListVersions(ctx context.Context, callerID uint64, fileURL string) ([]meta.FileVersion, error) {
	normalized, err := core.NormalizeFileURL(fileURL)
	if err != nil {
		return nil, err
	}
	return e.repo.ListVersions(ctx, normalized, callerID)
}

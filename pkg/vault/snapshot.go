package vault

import (
	"context"
	"fmt"

	"docvault/pkg/core"
)

// TakeSnapshot 把整个版本索引固化成内容寻址的快照对象并存入内容库。
//
// 记录按 (file_url, owner, version) 稳定排序，权限名单在落库时已排序去重，
// 所以同样的索引状态永远产生同一个快照哈希
func (e *Engine) TakeSnapshot(ctx context.Context) (*core.Snapshot, error) {
	records, err := e.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list version index: %w", err)
	}

	entries := make([]core.SnapshotEntry, 0, len(records))
	for i := range records {
		readers, err := records[i].Readers()
		if err != nil {
			return nil, err
		}
		writers, err := records[i].Writers()
		if err != nil {
			return nil, err
		}
		entries = append(entries, core.SnapshotEntry{
			FileURL:       records[i].FileURL,
			VersionNumber: records[i].VersionNumber,
			FileHash:      records[i].FileHash,
			OwnerID:       records[i].OwnerID,
			Readers:       readers,
			Writers:       writers,
		})
	}

	snapshot, err := core.NewSnapshot(entries)
	if err != nil {
		return nil, err
	}

	if err := e.store.Put(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to store snapshot: %w", err)
	}
	return snapshot, nil
}

package vault

import (
	"context"
	"errors"
	"slices"

	"docvault/pkg/meta"
)

// PermissionUpdate 描述一次权限替换请求
// nil 的名单表示"不动"，空名单表示"清空"——两者语义不同
type PermissionUpdate struct {
	ReadEmails  *[]string
	WriteEmails *[]string
}

// PermissionManager 负责把 Email 名单落成版本记录上的授权集合
type PermissionManager struct {
	repo *meta.Repository
}

func NewPermissionManager(repo *meta.Repository) *PermissionManager {
	return &PermissionManager{repo: repo}
}

// Update 整体替换一条版本记录的权限名单 (clear-then-add)。
//
// 契约要点：
//   - 未注册的 Email 静默跳过，不报错
//   - 所有者永远不进名单 (所有者权限是隐含的，放进去只会造成冗余状态)
//   - 只影响这一条版本记录，不向后续版本传递
func (m *PermissionManager) Update(ctx context.Context, versionID uint64, update PermissionUpdate) (*meta.FileVersion, error) {
	// 先取记录：确认存在，并拿到 OwnerID 用于过滤
	record, err := m.repo.GetByID(ctx, versionID)
	if errors.Is(err, meta.ErrVersionNotFound) {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, err
	}

	readers, err := m.resolve(ctx, update.ReadEmails, record.OwnerID)
	if err != nil {
		return nil, err
	}
	writers, err := m.resolve(ctx, update.WriteEmails, record.OwnerID)
	if err != nil {
		return nil, err
	}

	return m.repo.ReplacePermissions(ctx, versionID, readers, writers)
}

// resolve 把可选的 Email 名单解析为用户 ID 集合，并剔除所有者
func (m *PermissionManager) resolve(ctx context.Context, emails *[]string, ownerID uint64) (*[]uint64, error) {
	if emails == nil {
		return nil, nil
	}
	ids, err := m.repo.ResolveEmails(ctx, *emails)
	if err != nil {
		return nil, err
	}
	ids = slices.DeleteFunc(ids, func(id uint64) bool { return id == ownerID })
	return &ids, nil
}

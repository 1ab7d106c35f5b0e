package meta

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrVersionConflict 表示并发上传抢占了同一个版本号 (唯一约束仲裁)
	// 调用方应当重读 latest 后重试
	ErrVersionConflict = errors.New("concurrent version append detected")

	ErrVersionNotFound = errors.New("file version not found")
	ErrUserNotFound    = errors.New("user not found")
)

// Repository 封装所有对元数据库的操作
// 它是"什么版本存在"这件事的唯一事实来源
type Repository struct {
	db *DB
}

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// isDuplicateKey 识别不同数据库 (PG 与 SQLite) 的唯一约束错误
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}

// -----------------------------------------------------------------------------
// 1. 版本索引 (Version Index)
// -----------------------------------------------------------------------------

// LatestVersion 返回 (file_url, owner) 序列中版本号最大的记录
// 没有任何版本时返回 (nil, nil)，由调用方解释为"首个版本从 0 开始"
func (r *Repository) LatestVersion(ctx context.Context, fileURL string, ownerID uint64) (*FileVersion, error) {
	var v FileVersion
	err := r.db.GetConn().WithContext(ctx).
		Where("file_url = ? AND owner_id = ?", fileURL, ownerID).
		Order("version_number DESC").
		First(&v).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest version: %w", err)
	}
	return &v, nil
}

// ExactVersion 返回 (file_url, owner, version) 精确命中的记录，miss 时 (nil, nil)
func (r *Repository) ExactVersion(ctx context.Context, fileURL string, ownerID uint64, version int) (*FileVersion, error) {
	var v FileVersion
	err := r.db.GetConn().WithContext(ctx).
		Where("file_url = ? AND owner_id = ? AND version_number = ?", fileURL, ownerID, version).
		First(&v).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query exact version: %w", err)
	}
	return &v, nil
}

// AppendVersion 原子条件追加：带着期望的版本号直接 INSERT，
// 让 (file_url, owner_id, version_number) 唯一索引做并发仲裁。
// 两个并发写者基于同一个 latest 算出同一个号，只有一个能成功，
// 另一个拿到 ErrVersionConflict 后重读重试——
// 不同 (file_url, owner) 序列之间互不阻塞
func (r *Repository) AppendVersion(ctx context.Context, v *FileVersion) error {
	if err := r.db.GetConn().WithContext(ctx).Create(v).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrVersionConflict
		}
		return fmt.Errorf("failed to append version: %w", err)
	}
	return nil
}

// GetByID 按主键取版本记录
func (r *Repository) GetByID(ctx context.Context, id uint64) (*FileVersion, error) {
	var v FileVersion
	err := r.db.GetConn().WithContext(ctx).
		Where("id = ?", id).
		First(&v).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVersionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query version by id: %w", err)
	}
	return &v, nil
}

// ListVersions 返回一条序列的全部版本，新的在前 (用于 dv log)
func (r *Repository) ListVersions(ctx context.Context, fileURL string, ownerID uint64) ([]FileVersion, error) {
	var versions []FileVersion
	err := r.db.GetConn().WithContext(ctx).
		Where("file_url = ? AND owner_id = ?", fileURL, ownerID).
		Order("version_number DESC").
		Find(&versions).Error
	return versions, err
}

// ListAll 返回整个索引，按 (file_url, owner, version) 稳定排序
// 排序是快照确定性的前提：同样的索引状态必须产生同样的快照字节
func (r *Repository) ListAll(ctx context.Context) ([]FileVersion, error) {
	var versions []FileVersion
	err := r.db.GetConn().WithContext(ctx).
		Order("file_url ASC, owner_id ASC, version_number ASC").
		Find(&versions).Error
	return versions, err
}

// -----------------------------------------------------------------------------
// 2. 共享解析 (Shared Access Lookup)
// -----------------------------------------------------------------------------
// 名单存的是 JSON 数组，成员判断放在 Go 侧做 (见 models.go 的设计说明)。
// 一条逻辑路径下的版本数量有限，全量拉取后过滤的代价可以接受。

// SharedLatest 返回 file_url 下 caller 出现在读/写名单中的最高版本
// miss 时 (nil, nil)
func (r *Repository) SharedLatest(ctx context.Context, fileURL string, callerID uint64) (*FileVersion, error) {
	return r.findShared(ctx, fileURL, callerID, nil)
}

// SharedExact 同上，但限定精确的版本号
func (r *Repository) SharedExact(ctx context.Context, fileURL string, callerID uint64, version int) (*FileVersion, error) {
	return r.findShared(ctx, fileURL, callerID, &version)
}

func (r *Repository) findShared(ctx context.Context, fileURL string, callerID uint64, version *int) (*FileVersion, error) {
	query := r.db.GetConn().WithContext(ctx).
		Where("file_url = ?", fileURL).
		Order("version_number DESC")
	if version != nil {
		query = query.Where("version_number = ?", *version)
	}

	var candidates []FileVersion
	if err := query.Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to query shared versions: %w", err)
	}

	for i := range candidates {
		ok, err := candidates[i].SharedWith(callerID)
		if err != nil {
			return nil, err
		}
		if ok {
			return &candidates[i], nil
		}
	}
	return nil, nil
}

// -----------------------------------------------------------------------------
// 3. 权限写入 (Permission Table)
// -----------------------------------------------------------------------------

// ReplacePermissions 整体替换一条版本记录的权限名单 (clear-then-add)
// readers/writers 传 nil 表示"不动这个名单"；传空集合表示"清空"
// 只影响这一条记录——权限不跨版本继承
func (r *Repository) ReplacePermissions(ctx context.Context, versionID uint64, readers, writers *[]uint64) (*FileVersion, error) {
	v, err := r.GetByID(ctx, versionID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if readers != nil {
		encoded, err := EncodeIDSet(*readers)
		if err != nil {
			return nil, err
		}
		updates["read_permissions"] = encoded
	}
	if writers != nil {
		encoded, err := EncodeIDSet(*writers)
		if err != nil {
			return nil, err
		}
		updates["write_permissions"] = encoded
	}
	if len(updates) == 0 {
		return v, nil
	}

	err = r.db.GetConn().WithContext(ctx).
		Model(&FileVersion{}).
		Where("id = ?", versionID).
		Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to replace permissions: %w", err)
	}

	return r.GetByID(ctx, versionID)
}

// -----------------------------------------------------------------------------
// 4. 用户 (身份协作方的本地投影)
// -----------------------------------------------------------------------------

func (r *Repository) CreateUser(ctx context.Context, email, name string) (*User, error) {
	u := User{Email: email, Name: name}
	if err := r.db.GetConn().WithContext(ctx).Create(&u).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, fmt.Errorf("user %s already exists", email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	err := r.db.GetConn().WithContext(ctx).
		Where("email = ?", email).
		First(&u).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	err := r.db.GetConn().WithContext(ctx).
		Order("id ASC").
		Find(&users).Error
	return users, err
}

// ResolveEmails 把 Email 名单解析为用户 ID 集合
// 未知的 Email 静默跳过 (不是错误)——这是刻意的契约，见权限更新语义
func (r *Repository) ResolveEmails(ctx context.Context, emails []string) ([]uint64, error) {
	if len(emails) == 0 {
		return []uint64{}, nil
	}

	var users []User
	err := r.db.GetConn().WithContext(ctx).
		Where("email IN ?", emails).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve emails: %w", err)
	}

	ids := make([]uint64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

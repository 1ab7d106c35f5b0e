package meta

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"gorm.io/datatypes"
)

// User 是身份协作方在本地的最小投影
// 核心层不做认证，只拿 ID/Email 做授权比对和权限名单解析
type User struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	Email     string `gorm:"uniqueIndex;type:varchar(255);not null"`
	Name      string `gorm:"type:varchar(255)"`
	CreatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

// FileVersion 是版本索引的核心记录：
// (file_url, owner_id) 确定一条版本序列，version_number 在序列内连续递增
//
// 注意唯一索引 idx_url_owner_version——它是并发版本号分配的仲裁者：
// 两个并发上传者抢同一个号，后到的会吃到唯一约束冲突 (见 Repository.AppendVersion)
type FileVersion struct {
	ID            uint64 `gorm:"primaryKey;autoIncrement"`
	FileURL       string `gorm:"type:varchar(512);not null;uniqueIndex:idx_url_owner_version,priority:1;index"`
	OwnerID       uint64 `gorm:"not null;uniqueIndex:idx_url_owner_version,priority:2"`
	VersionNumber int    `gorm:"not null;uniqueIndex:idx_url_owner_version,priority:3"`

	// FileHash 指向内容库里的 Blob (SHA256 Hex)
	FileHash string `gorm:"type:char(64);not null"`

	// 权限名单：被授权用户的 ID 数组，JSON 编码
	// 权限是 per-version 的——给版本 N 授权不会传递到 N+1
	// 所有者不出现在名单里 (所有者天然拥有全部权限)
	//
	// 用 JSON 而不是关联表：名单通常很小，而且 SQLite 和 Postgres
	// 都能原样存取，避免跨数据库的 JSONB 查询兼容性问题 (成员判断在 Go 侧做)
	ReadPermissions  datatypes.JSON
	WritePermissions datatypes.JSON

	CreatedAt time.Time
}

func (FileVersion) TableName() string {
	return "file_versions"
}

// -----------------------------------------------------------------------------
// 权限名单的编解码辅助
// -----------------------------------------------------------------------------

// EncodeIDSet 把用户 ID 集合编码为 JSON 数组
// 排序后再编码，保证同样的集合永远产生同样的字节 (快照确定性依赖这一点)
func EncodeIDSet(ids []uint64) (datatypes.JSON, error) {
	if ids == nil {
		ids = []uint64{}
	}
	sorted := slices.Clone(ids)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	data, err := json.Marshal(sorted)
	if err != nil {
		return nil, fmt.Errorf("failed to encode id set: %w", err)
	}
	return datatypes.JSON(data), nil
}

// DecodeIDSet 解码 JSON 数组；空值视为空集合
func DecodeIDSet(raw datatypes.JSON) ([]uint64, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var ids []uint64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("corrupted permission set: %w", err)
	}
	return ids, nil
}

// Readers 返回读权限名单
func (v *FileVersion) Readers() ([]uint64, error) {
	return DecodeIDSet(v.ReadPermissions)
}

// Writers 返回写权限名单
func (v *FileVersion) Writers() ([]uint64, error) {
	return DecodeIDSet(v.WritePermissions)
}

// SharedWith 判断 userID 是否出现在读或写名单中
// 解码失败按"无权限"处理并返回错误，调用方决定是否上抛
func (v *FileVersion) SharedWith(userID uint64) (bool, error) {
	readers, err := v.Readers()
	if err != nil {
		return false, err
	}
	if slices.Contains(readers, userID) {
		return true, nil
	}

	writers, err := v.Writers()
	if err != nil {
		return false, err
	}
	return slices.Contains(writers, userID), nil
}

package core

import (
	"time"

	"docvault/pkg/types"
)

// SnapshotEntry 是版本索引中一条记录的投影
// 字段用短 key 编码，保持快照体积紧凑
type SnapshotEntry struct {
	FileURL       string   `cbor:"u"`
	VersionNumber int      `cbor:"v"`
	FileHash      string   `cbor:"h"`
	OwnerID       uint64   `cbor:"o"`
	Readers       []uint64 `cbor:"r,omitempty"`
	Writers       []uint64 `cbor:"w,omitempty"`
}

// Snapshot 是整个版本索引在某一时刻的内容寻址快照
// 它本身也作为对象存进内容库：同样的索引状态只会产生同一个快照对象
// 用途：离线审计、备份、跨实例比对
type Snapshot struct {
	// 自身标识 (不参与序列化)
	hash     types.Hash `cbor:"-"`
	rawBytes []byte     `cbor:"-"`

	TypeVal ObjectType      `cbor:"t"`  // 必须是 "snapshot"
	TakenAt int64           `cbor:"at"` // Unix 时间戳
	Entries []SnapshotEntry `cbor:"es"`
}

// NewSnapshot 构造并“密封”一个快照对象
// 密封之后 hash 和字节序列都已固定，不可再修改
func NewSnapshot(entries []SnapshotEntry) (*Snapshot, error) {
	s := &Snapshot{
		TypeVal: TypeSnapshot,
		TakenAt: time.Now().Unix(),
		Entries: entries,
	}

	h, b, err := CalculateHash(s)
	if err != nil {
		return nil, err
	}
	s.hash = h
	s.rawBytes = b
	return s, nil
}

func (s *Snapshot) Type() ObjectType { return TypeSnapshot }
func (s *Snapshot) ID() types.Hash   { return s.hash }
func (s *Snapshot) Bytes() []byte    { return s.rawBytes }

package core

import "docvault/pkg/types"

// ObjectType 定义了 DocVault 内容库中的对象类型
type ObjectType string

const (
	TypeBlob     ObjectType = "blob"     // 原始文件内容 (按内容哈希存储，全局去重)
	TypeSnapshot ObjectType = "snapshot" // 版本索引快照 (Canonical CBOR，用于审计/备份)
)

// Object 是所有内容寻址对象的通用接口
type Object interface {
	// Type 返回对象类型
	Type() ObjectType

	// ID 返回对象的哈希值 (同时也是存储地址)
	ID() types.Hash

	// Bytes 返回对象的序列化数据 (用于存储)
	Bytes() []byte
}

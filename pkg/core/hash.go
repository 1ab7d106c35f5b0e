package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"docvault/pkg/types"

	"github.com/fxamacker/cbor/v2"
)

// 定义确定性编码选项
// Snapshot 这类结构化对象必须保证：同样的内容永远编码出同样的字节序列，
// 否则内容寻址就失去了意义
var encOptions = cbor.EncOptions{
	// 1. 强制 Map Key 排序 (Canonical)
	// 保证相同的对象生成唯一的 Hash
	Sort: cbor.SortCanonical,

	// 2. 时间格式化为 Unix 整数
	// 禁止 Tag 0/1 (RFC 3339 字符串)，字符串时间不具备唯一表示
	Time:    cbor.TimeUnix,
	TimeTag: cbor.EncTagNone,

	// 3. 禁止不定长编码 (Indefinite Length)
	// 数组和 Map 必须在头部声明长度
	IndefLength: cbor.IndefLengthForbidden,
}

// 全局复用的编码模式
var em, _ = encOptions.EncMode()

// 解码选项：带安全限制的严格模式
var decOptions = cbor.DecOptions{
	// 防 DoS：限制容器元素数量和嵌套深度
	MaxArrayElements: 100000,
	MaxMapPairs:      100000,
	MaxNestedLevels:  100,

	// 与编码侧对应的严格性配置
	IndefLength: cbor.IndefLengthForbidden,
	DupMapKey:   cbor.DupMapKeyEnforcedAPF,
	TimeTag:     cbor.DecTagIgnored,
}

var dm, _ = decOptions.DecMode()

// CalculateHash 计算结构化对象的 Hash 和序列化数据
func CalculateHash(v any) (types.Hash, []byte, error) {
	data, err := em.Marshal(v)
	if err != nil {
		return "", nil, fmt.Errorf("failed to marshal object: %w", err)
	}

	hashBytes := sha256.Sum256(data)
	return types.Hash(hex.EncodeToString(hashBytes[:])), data, nil
}

// CalculateBlobHash 计算原始内容的 Hash (去重键 + 存储地址)
func CalculateBlobHash(data []byte) types.Hash {
	hashBytes := sha256.Sum256(data)
	return types.Hash(hex.EncodeToString(hashBytes[:]))
}

// DecodeObject 通用的解码函数 (供外部使用)
func DecodeObject(data []byte, v any) error {
	return dm.Unmarshal(data, v)
}

// pkg/types/common.go
package types

// Hash 代表内容对象的唯一标识符 (SHA256 Hex String)
// 它既是去重键，也是存储地址。应当是不可变的“值对象”。
type Hash string

func (h Hash) String() string { return string(h) }

// 验证 Hash 合法性
func (h Hash) IsZero() bool  { return h == "" }
func (h Hash) IsValid() bool { return len(h) == 64 } // 简单的长度检查

// HashPrefix 代表用户输入的短哈希 (例如 "a8fd")
// 需要经过 Store.ExpandHash 扩展才能变成完整 Hash
type HashPrefix string

func (p HashPrefix) String() string { return string(p) }

// UserID 代表调用者身份标识
// 身份认证在上游完成，核心层只拿它做授权比对
type UserID uint64

// FileURL 代表文件的逻辑路径 (例如 "docs/report.pdf")
// 它是版本历史的用户侧标识，与物理存储位置无关
// 合法性校验见 core.NormalizeFileURL
type FileURL string

func (u FileURL) String() string { return string(u) }

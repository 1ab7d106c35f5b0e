package core

import (
	"errors"
	"strings"
)

// 文件路径校验错误 (ValidationError 类别)
// 这些错误直接拒绝请求，不产生任何状态变化
var (
	ErrEmptyFileURL     = errors.New("file url must not be empty")
	ErrMissingExtension = errors.New("file url must contain a file extension")
)

// NormalizeFileURL 校验并规范化逻辑路径
// 规则 (bit-exact)：
//  1. 空字符串直接拒绝
//  2. 不含 '.' 的路径拒绝 (没有扩展名段)
//  3. 恰好剥掉一个前导 '/' (如果有)
//  4. 其余字符一律放行，不做额外校验
//
// Example: "/reports/q1.pdf" -> "reports/q1.pdf"
func NormalizeFileURL(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmptyFileURL
	}
	if !strings.Contains(raw, ".") {
		return "", ErrMissingExtension
	}
	return strings.TrimPrefix(raw, "/"), nil
}

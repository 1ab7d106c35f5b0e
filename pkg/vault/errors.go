package vault

import "errors"

// 面向调用方的错误分类
// 注意：GetVersion 对"不存在"和"无权限"统一返回 ErrNotFound，
// 不向调用方泄露某条路径上是否存在别人的文件
var (
	// ErrEmptyContent 上传内容为空时拒绝请求，不产生任何状态变化
	ErrEmptyContent = errors.New("content must not be empty")

	ErrNotFound        = errors.New("file version not found")
	ErrVersionNotFound = errors.New("version record not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrTooManyConflicts 表示版本号竞争重试次数耗尽 (极端并发下才会出现)
	ErrTooManyConflicts = errors.New("too many concurrent writes, giving up")
)

package ignore

import (
	"os"
	"path/filepath"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Matcher 封装了忽略逻辑
// 目录上传 (dv put <dir>) 时用它过滤不该进库的文件
type Matcher struct {
	ignorer *gitignore.GitIgnore
}

// NewMatcher 初始化忽略匹配器
// rootPath: 上传根目录 (用于查找 .dvignore 文件)
func NewMatcher(rootPath string) (*Matcher, error) {
	// 1. 系统级默认忽略规则，强制生效
	defaultRules := []string{
		// --- 关键系统目录 ---
		".dv",  // 绝对禁止上传仓库元数据目录，否则会导致无限递归死循环！
		".git", // 忽略 Git 仓库数据

		// --- 安全与配置 ---
		"config.yaml", // 防止 S3 Secret Key 泄露
		".env",        // 防止环境变量文件泄露

		// --- 常见垃圾文件 ---
		".DS_Store", // macOS
		"Thumbs.db", // Windows
	}

	var ignorer *gitignore.GitIgnore
	var err error

	// 2. 用户的 .dvignore 与默认规则合并编译
	ignoreFilePath := filepath.Join(rootPath, ".dvignore")

	if _, errStat := os.Stat(ignoreFilePath); errStat == nil {
		ignorer, err = gitignore.CompileIgnoreFileAndLines(ignoreFilePath, defaultRules...)
	} else {
		ignorer = gitignore.CompileIgnoreLines(defaultRules...)
	}

	if err != nil {
		return nil, err
	}

	return &Matcher{ignorer: ignorer}, nil
}

// Matches 检查给定的路径是否匹配忽略规则
// path: 相对于上传根目录的相对路径 (例如 "docs/report.pdf")
// 返回 true 表示应该跳过
func (m *Matcher) Matches(path string) bool {
	if m.ignorer == nil {
		return false
	}
	return m.ignorer.MatchesPath(path)
}

package xfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultDirPerm 默认目录权限（gosec G301）
const DefaultDirPerm = 0o750

// EnsureDir 以 [DefaultDirPerm] 创建 filename 的父目录，已存在时不报错
func EnsureDir(filename string) error {
	return EnsureDirWithPerm(filename, DefaultDirPerm)
}

// EnsureDirWithPerm 以 perm 创建 filename 的父目录。
//
// perm 必须包含所有者执行位，否则目录无法进入。已存在的目录不会修改权限。
// 底层使用 os.MkdirAll，会跟随符号链接；不可信输入应先经 [SanitizePath] 或 [JoinUnder]。
func EnsureDirWithPerm(filename string, perm os.FileMode) error {
	if filename == "" {
		return fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	if perm&0o100 == 0 {
		return fmt.Errorf("directory permission %04o missing owner execute bit: %w", perm, ErrInvalidPerm)
	}
	dir := filepath.Dir(filename)
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, perm)
}

package xfile

import "errors"

var (
	// ErrEmptyPath 必需的路径参数为空
	ErrEmptyPath = errors.New("xfile: path is required")

	// ErrInvalidPath 路径格式无效（目录路径、根目录不是绝对路径等）
	ErrInvalidPath = errors.New("xfile: invalid path")

	// ErrPathTraversal 路径中出现 ".." 段
	ErrPathTraversal = errors.New("xfile: path traversal detected")

	// ErrPathEscaped 拼接结果超出根目录
	ErrPathEscaped = errors.New("xfile: path escapes base directory")

	// ErrNullByte 路径中包含空字节，内核会在该处截断路径
	ErrNullByte = errors.New("xfile: path contains null byte")

	// ErrInvalidPerm 目录权限缺少所有者执行位
	ErrInvalidPerm = errors.New("xfile: invalid directory permission")
)

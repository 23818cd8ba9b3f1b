package xsink

import "errors"

var (
	// ErrStopped sink 已停止，不再接受任何消息
	ErrStopped = errors.New("xsink: sink stopped")

	// ErrLocalTime 无法确定本地时区偏移。
	// 这是唯一会中断调用方操作的运行期错误：没有安全的本地时间回退方案。
	ErrLocalTime = errors.New("xsink: local time offset unavailable")

	// ErrMalformedText 待写入内容不是合法 UTF-8，写入管道会净化后重试
	ErrMalformedText = errors.New("xsink: malformed text")

	// ErrInvalidName sink 名称为空
	ErrInvalidName = errors.New("xsink: invalid sink name")

	// ErrInvalidFilename 文件名为空或包含路径分隔符
	ErrInvalidFilename = errors.New("xsink: invalid filename")

	// ErrInvalidDir 特殊目录描述缺少应用名或无法解析根目录
	ErrInvalidDir = errors.New("xsink: invalid directory")

	// ErrInvalidRotation 轮转参数为负数
	ErrInvalidRotation = errors.New("xsink: invalid rotation policy")

	// ErrExists 注册表中已存在同名 sink
	ErrExists = errors.New("xsink: sink already exists")

	// ErrNotFound 注册表中不存在该 sink
	ErrNotFound = errors.New("xsink: sink not found")
)

package xproc

import (
	"os"
	"path/filepath"
	"sync"
)

// 包级变量便于测试替换
var (
	osExecutable = os.Executable
	osHostname   = os.Hostname
)

var (
	processNameOnce  sync.Once
	processNameValue string

	hostnameOnce  sync.Once
	hostnameValue string
)

// ProcessID 返回当前进程 ID
func ProcessID() int {
	return os.Getpid()
}

// baseName 对 "."、".." 和根路径返回 ""
func baseName(path string) string {
	name := filepath.Base(path)
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func resolveProcessName() string {
	if exe, err := osExecutable(); err == nil && exe != "" {
		if name := baseName(exe); name != "" {
			return name
		}
	}
	if len(os.Args) == 0 || os.Args[0] == "" {
		return ""
	}
	return baseName(os.Args[0])
}

// ProcessName 返回可执行文件名（不含路径），无法确定时为 ""。
//
// 优先取 [os.Executable]，失败时回退到 os.Args[0]。
func ProcessName() string {
	processNameOnce.Do(func() {
		processNameValue = resolveProcessName()
	})
	return processNameValue
}

// Hostname 返回主机名，获取失败时为 ""
func Hostname() string {
	hostnameOnce.Do(func() {
		name, err := osHostname()
		if err != nil {
			name = ""
		}
		hostnameValue = name
	})
	return hostnameValue
}

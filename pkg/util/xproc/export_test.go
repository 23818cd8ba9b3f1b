package xproc

import "sync"

// reset 清空缓存并替换系统调用，返回恢复函数
func reset(exe func() (string, error), host func() (string, error)) func() {
	origExe, origHost := osExecutable, osHostname
	if exe != nil {
		osExecutable = exe
	}
	if host != nil {
		osHostname = host
	}
	drop := func() {
		processNameOnce = sync.Once{}
		processNameValue = ""
		hostnameOnce = sync.Once{}
		hostnameValue = ""
	}
	drop()
	return func() {
		osExecutable, osHostname = origExe, origHost
		drop()
	}
}

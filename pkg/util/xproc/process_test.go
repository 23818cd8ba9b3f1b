package xproc

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNoExe = errors.New("no executable")

func failExe() (string, error) { return "", errNoExe }

func TestProcessID(t *testing.T) {
	assert.Equal(t, os.Getpid(), ProcessID())
}

func TestProcessName(t *testing.T) {
	defer reset(func() (string, error) { return "/usr/local/bin/xsinkd", nil }, nil)()
	assert.Equal(t, "xsinkd", ProcessName())
}

// 修改全局 os.Args，不能并行
func TestProcessNameFallback(t *testing.T) {
	origArgs := os.Args
	defer func() { os.Args = origArgs }()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"绝对路径", []string{"/usr/bin/myapp"}, "myapp"},
		{"相对路径", []string{"./relative/path/app"}, "app"},
		{"空参数", nil, ""},
		{"空字符串", []string{""}, ""},
		{"根目录", []string{"/"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer reset(failExe, nil)()
			os.Args = tt.args
			assert.Equal(t, tt.want, ProcessName())
		})
	}
}

func TestHostname(t *testing.T) {
	calls := 0
	defer reset(nil, func() (string, error) {
		calls++
		return "host-1", nil
	})()

	assert.Equal(t, "host-1", Hostname())
	assert.Equal(t, "host-1", Hostname())
	assert.Equal(t, 1, calls)
}

func TestHostnameFailure(t *testing.T) {
	defer reset(nil, func() (string, error) { return "partial", errors.New("boom") })()
	assert.Empty(t, Hostname())
}

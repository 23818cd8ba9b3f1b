package xsink

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/omeyang/xsink/pkg/util/xfile"
)

// DirKind 目录类型
type DirKind int

const (
	// DirPlain 直接使用 Path
	DirPlain DirKind = iota
	// DirUserData 平台用户数据目录
	DirUserData
	// DirUserLog 平台用户日志目录
	DirUserLog
)

// String 返回配置中使用的名称
func (k DirKind) String() string {
	switch k {
	case DirPlain:
		return "plain"
	case DirUserData:
		return "user_data"
	case DirUserLog:
		return "user_log"
	default:
		return fmt.Sprintf("DirKind(%d)", int(k))
	}
}

// logsSegment DirUserLog 追加的最后一段
const logsSegment = "Logs"

// Dir 日志目录：普通路径，或按平台约定解析的用户数据/日志目录。
//
// 特殊目录按 (根目录, [Author], App, [Version], ["Logs"]) 的顺序拼接。
type Dir struct {
	Path    string
	Kind    DirKind
	App     string
	Author  string
	Version string
}

// PlainDir 普通目录
func PlainDir(path string) *Dir {
	return &Dir{Path: path}
}

// UserLogDir 平台用户日志目录
func UserLogDir(app, author, version string) *Dir {
	return &Dir{Kind: DirUserLog, App: app, Author: author, Version: version}
}

// UserDataDir 平台用户数据目录
func UserDataDir(app, author, version string) *Dir {
	return &Dir{Kind: DirUserData, App: app, Author: author, Version: version}
}

// Resolve 返回实际目录，"" 表示禁用写入
func (d Dir) Resolve() (string, error) {
	return d.resolve(hostEnv())
}

// dirEnv 解析特殊目录所需的宿主信息
type dirEnv struct {
	goos   string
	getenv func(string) string
	home   func() (string, error)
}

func hostEnv() dirEnv {
	return dirEnv{goos: runtime.GOOS, getenv: os.Getenv, home: os.UserHomeDir}
}

func (d Dir) resolve(env dirEnv) (string, error) {
	if d.Kind == DirPlain {
		if d.Path == "" {
			return "", nil
		}
		return filepath.Clean(d.Path), nil
	}
	if d.App == "" {
		return "", fmt.Errorf("%w: %s requires an app name", ErrInvalidDir, d.Kind)
	}
	root, err := d.root(env)
	if err != nil {
		return "", err
	}

	elems := make([]string, 0, 4)
	if d.Author != "" {
		elems = append(elems, d.Author)
	}
	elems = append(elems, d.App)
	if d.Version != "" {
		elems = append(elems, d.Version)
	}
	if d.Kind == DirUserLog {
		elems = append(elems, logsSegment)
	}
	path, err := xfile.JoinUnder(root, elems...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidDir, err)
	}
	return path, nil
}

// root 平台根目录：
//   - linux 等: $XDG_DATA_HOME 或 ~/.local/share；日志用 $XDG_STATE_HOME 或 ~/.local/state
//   - darwin: ~/Library/Application Support；日志用 ~/Library
//   - windows: %LOCALAPPDATA%
func (d Dir) root(env dirEnv) (string, error) {
	switch env.goos {
	case "windows":
		if v := env.getenv("LOCALAPPDATA"); v != "" {
			return v, nil
		}
		return "", fmt.Errorf("%w: LOCALAPPDATA not set", ErrInvalidDir)
	case "darwin":
		home, err := env.home()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidDir, err)
		}
		if d.Kind == DirUserLog {
			return filepath.Join(home, "Library"), nil
		}
		return filepath.Join(home, "Library", "Application Support"), nil
	default:
		xdg, fallback := "XDG_DATA_HOME", filepath.Join(".local", "share")
		if d.Kind == DirUserLog {
			xdg, fallback = "XDG_STATE_HOME", filepath.Join(".local", "state")
		}
		if v := env.getenv(xdg); v != "" && filepath.IsAbs(v) {
			return v, nil
		}
		home, err := env.home()
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidDir, err)
		}
		return filepath.Join(home, fallback), nil
	}
}

package xconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// Format 配置文件格式
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// delim 键路径分隔符，sink 名称与元数据键中不能包含它
const delim = "."

// Config 配置快照加重载能力
type Config interface {
	// Client 返回当前 koanf 实例；Reload 后旧实例仍可读，但内容过期
	Client() *koanf.Koanf
	// Unmarshal 把 path 下的配置解码到 target，path 为空表示整个配置
	Unmarshal(path string, target any) error
	Reload() error
	// Path 配置文件路径，从字节创建时为 ""
	Path() string
	Format() Format
}

type koanfConfig struct {
	mu     sync.RWMutex
	k      *koanf.Koanf
	path   string
	format Format
	// reload 串行化 Reload，避免旧内容覆盖新内容
	reload sync.Mutex
}

// New 从文件创建配置，按扩展名识别格式（.yaml/.yml/.json）
func New(path string) (Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}
	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}
	k, err := loadFile(path, format)
	if err != nil {
		return nil, err
	}
	return &koanfConfig{k: k, path: path, format: format}, nil
}

// NewFromBytes 从内存数据创建配置，空数据得到空配置
func NewFromBytes(data []byte, format Format) (Config, error) {
	if format != FormatYAML && format != FormatJSON {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	k := koanf.New(delim)
	if len(data) > 0 {
		if err := loadData(k, data, format); err != nil {
			return nil, err
		}
	}
	return &koanfConfig{k: k, format: format}, nil
}

func (c *koanfConfig) Client() *koanf.Koanf {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.k
}

func (c *koanfConfig) Unmarshal(path string, target any) error {
	if err := c.Client().Unmarshal(path, target); err != nil {
		return fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return nil
}

// Reload 重新读取文件，解析失败时保留旧配置
func (c *koanfConfig) Reload() error {
	if c.path == "" {
		return ErrNotReloadable
	}
	c.reload.Lock()
	defer c.reload.Unlock()

	k, err := loadFile(c.path, c.format)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.k = k
	c.mu.Unlock()
	return nil
}

func (c *koanfConfig) Path() string { return c.path }

func (c *koanfConfig) Format() Format { return c.format }

func detectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown extension %q", ErrUnsupportedFormat, ext)
	}
}

func loadFile(path string, format Format) (*koanf.Koanf, error) {
	//#nosec G304 -- 配置路径来自命令行参数
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	k := koanf.New(delim)
	if err := loadData(k, data, format); err != nil {
		return nil, err
	}
	return k, nil
}

func loadData(k *koanf.Koanf, data []byte, format Format) error {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return ErrUnsupportedFormat
	}
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return fmt.Errorf("%w: %w", ErrParseFailed, err)
	}
	return nil
}

package xconf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		format  Format
	}{
		{"yaml", "a.yaml", "diag:\n  level: debug\n", FormatYAML},
		{"yml", "a.yml", "diag:\n  level: debug\n", FormatYAML},
		{"json", "a.JSON", `{"diag":{"level":"debug"}}`, FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := New(writeFile(t, dir, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.format, cfg.Format())
			assert.Equal(t, "debug", cfg.Client().String("diag.level"))

			var diag struct {
				Level string `koanf:"level"`
			}
			require.NoError(t, cfg.Unmarshal("diag", &diag))
			assert.Equal(t, "debug", diag.Level)
		})
	}
}

func TestNew_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := New("")
	assert.ErrorIs(t, err, ErrEmptyPath)

	_, err = New(writeFile(t, dir, "a.toml", "x = 1"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, ErrLoadFailed)

	_, err = New(writeFile(t, dir, "bad.json", "{"))
	assert.ErrorIs(t, err, ErrParseFailed)
}

func TestNewFromBytes(t *testing.T) {
	cfg, err := NewFromBytes([]byte("a: 1\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Client().Int("a"))
	assert.Empty(t, cfg.Path())
	assert.ErrorIs(t, cfg.Reload(), ErrNotReloadable)

	empty, err := NewFromBytes(nil, FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, empty.Client().Keys())

	_, err = NewFromBytes([]byte("a"), Format("toml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "c.yaml", "v: 1\n")
	cfg, err := New(path)
	require.NoError(t, err)
	old := cfg.Client()

	writeFile(t, dir, "c.yaml", "v: 2\n")
	require.NoError(t, cfg.Reload())
	assert.Equal(t, 2, cfg.Client().Int("v"))
	assert.Equal(t, 1, old.Int("v"))

	// 解析失败保留旧配置
	writeFile(t, dir, "c.yaml", "v: [\n")
	assert.ErrorIs(t, cfg.Reload(), ErrParseFailed)
	assert.Equal(t, 2, cfg.Client().Int("v"))
}

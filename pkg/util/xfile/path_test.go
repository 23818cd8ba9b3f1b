package xfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SanitizePath
// =============================================================================

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"绝对路径", "/var/log/app.log", "/var/log/app.log", nil},
		{"相对路径", "logs/app.log", "logs/app.log", nil},
		{"文件名包含双点", "app..2024.log", "app..2024.log", nil},
		{"冗余斜杠", "/var//log/./app.log", "/var/log/app.log", nil},
		{"绝对路径中的双点被折叠", "/var/log/../app.log", "/var/app.log", nil},
		{"空路径", "", "", ErrEmptyPath},
		{"空字节", "app\x00.log", "", ErrNullByte},
		{"目录路径", "/var/log/", "", ErrInvalidPath},
		{"反斜杠结尾", "logs\\", "", ErrInvalidPath},
		{"相对穿越", "../etc/passwd", "", ErrPathTraversal},
		{"中间穿越", "logs/../../etc", "", ErrPathTraversal},
		{"根目录", "/", "", ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestHasDotDotSegment(t *testing.T) {
	assert.True(t, hasDotDotSegment(".."))
	assert.True(t, hasDotDotSegment("a/../b"))
	assert.True(t, hasDotDotSegment(`a\..\b`))
	assert.False(t, hasDotDotSegment("..config"))
	assert.False(t, hasDotDotSegment("a/...b"))
	assert.False(t, hasDotDotSegment(""))
}

// =============================================================================
// JoinUnder
// =============================================================================

func TestJoinUnder(t *testing.T) {
	tests := []struct {
		name    string
		base    string
		elems   []string
		want    string
		wantErr error
	}{
		{"单段", "/data", []string{"app"}, "/data/app", nil},
		{"多段", "/data", []string{"acme", "app", "1.0", "Logs"}, "/data/acme/app/1.0/Logs", nil},
		{"无段", "/data/", nil, "/data", nil},
		{"双点开头的合法名", "/data", []string{"..cache"}, "/data/..cache", nil},
		{"空根目录", "", []string{"app"}, "", ErrEmptyPath},
		{"相对根目录", "data", []string{"app"}, "", ErrInvalidPath},
		{"空段", "/data", []string{"app", ""}, "", ErrEmptyPath},
		{"绝对段", "/data", []string{"/etc"}, "", ErrInvalidPath},
		{"驱动器段", "/data", []string{"C:app"}, "", ErrInvalidPath},
		{"穿越段", "/data", []string{"../etc"}, "", ErrPathTraversal},
		{"空字节段", "/data", []string{"a\x00b"}, "", ErrNullByte},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := JoinUnder(tt.base, tt.elems...)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

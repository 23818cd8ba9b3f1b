package xsink

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	prev := Options{
		Dir:      PlainDir("/a"),
		Filename: Ptr("old"),
		Level:    Ptr(slog.LevelInfo),
		Rotate:   &Rotation{MaxBytes: 10, Keep: 2},
	}
	next := Options{
		Filename: Ptr("new"),
		Metadata: AllMetadata(),
	}
	got := Merge(prev, next)

	assert.Equal(t, "/a", got.Dir.Path)
	assert.Equal(t, "new", *got.Filename)
	assert.Equal(t, slog.LevelInfo, *got.Level)
	assert.True(t, got.Metadata.All)
	assert.Equal(t, &Rotation{MaxBytes: 10, Keep: 2}, got.Rotate)
	assert.Nil(t, got.Format)
	assert.Nil(t, got.MetadataFilter)

	// 旧配置不被修改
	assert.Equal(t, "old", *prev.Filename)
	assert.Nil(t, prev.Metadata)
}

func TestMerge_EveryField(t *testing.T) {
	next := Options{
		Dir:            PlainDir("/b"),
		Filename:       Ptr("f"),
		Level:          Ptr(slog.LevelError),
		Format:         Ptr("$message"),
		Metadata:       SelectMetadata("k"),
		MetadataFilter: &Filter{{Key: "k", Want: 1}},
		Rotate:         &Rotation{},
	}
	assert.Equal(t, next, Merge(Options{}, next))
	assert.Equal(t, next, Merge(next, Options{}))
}

func TestMerge_ResetLevel(t *testing.T) {
	prev := Options{Dir: PlainDir("/a"), Level: Ptr(slog.LevelError)}

	got := Merge(prev, Options{ResetLevel: true})
	assert.Nil(t, got.Level)
	assert.False(t, got.ResetLevel)
	assert.Equal(t, prev.Dir, got.Dir)

	// 同时提供时 Level 生效
	got = Merge(prev, Options{ResetLevel: true, Level: Ptr(slog.LevelWarn)})
	assert.Equal(t, slog.LevelWarn, *got.Level)

	// 未提供 Level 也未要求清除时保留旧值
	got = Merge(prev, Options{})
	assert.Equal(t, slog.LevelError, *got.Level)
}

func TestResolve(t *testing.T) {
	r, err := resolve("svc", Options{})
	require.NoError(t, err)
	assert.Empty(t, r.dir)
	assert.Equal(t, "svc", r.filename)
	assert.Nil(t, r.level)
	assert.Equal(t, compileTemplate(DefaultFormat), r.tmpl)

	r, err = resolve("svc", Options{
		Dir:            PlainDir("/var/log/./svc/"),
		Rotate:         &Rotation{MaxBytes: 100, Keep: 3},
		MetadataFilter: &Filter{{Key: "a", Want: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, "/var/log/svc", r.dir)
	assert.Equal(t, int64(100), r.maxBytes)
	assert.Equal(t, 3, r.keep)
	assert.Len(t, r.filter, 1)
}

func TestResolve_InvalidFilename(t *testing.T) {
	for _, name := range []string{"", "a/b", `a\b`, "a\x00b"} {
		_, err := resolve("svc", Options{Filename: Ptr(name)})
		assert.ErrorIs(t, err, ErrInvalidFilename, "filename %q", name)
	}
}

func TestResolve_InvalidRotation(t *testing.T) {
	_, err := resolve("svc", Options{Rotate: &Rotation{Keep: -1}})
	assert.ErrorIs(t, err, ErrInvalidRotation)
}

package xconf

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omeyang/xsink/pkg/observability/xsink"
)

const sinksYAML = `
sinks:
  app:
    path: /var/log/app
    filename: service
    level: warning
    format: "$time $metadata[$level] $message\n"
    metadata: all
    metadata_filter:
      flag: true
      region: [eu, us]
      request.id: 7
    rotate: {max_bytes: 10485760, keep: 5}
  audit:
    dir: {kind: user_log, app: demo, author: acme, version: "1.0"}
    metadata: [request_id, user]
  quiet:
    path: ""
    metadata: []
`

func TestDecodeSinks(t *testing.T) {
	cfg, err := NewFromBytes([]byte(sinksYAML), FormatYAML)
	require.NoError(t, err)

	sinks, err := DecodeSinks(cfg)
	require.NoError(t, err)
	require.Len(t, sinks, 3)

	app := sinks["app"]
	assert.Equal(t, xsink.PlainDir("/var/log/app"), app.Dir)
	assert.Equal(t, xsink.Ptr("service"), app.Filename)
	assert.Equal(t, xsink.Ptr(slog.LevelWarn), app.Level)
	assert.Equal(t, xsink.Ptr("$time $metadata[$level] $message\n"), app.Format)
	assert.Equal(t, xsink.AllMetadata(), app.Metadata)
	require.NotNil(t, app.MetadataFilter)
	assert.Equal(t, xsink.Filter{
		{Key: "flag", Want: true},
		{Key: "region", Want: xsink.OneOf{"eu", "us"}},
		{Key: "request.id", Want: 7},
	}, *app.MetadataFilter)
	assert.Equal(t, &xsink.Rotation{MaxBytes: 10485760, Keep: 5}, app.Rotate)

	audit := sinks["audit"]
	assert.Equal(t, xsink.UserLogDir("demo", "acme", "1.0"), audit.Dir)
	assert.Equal(t, xsink.SelectMetadata("request_id", "user"), audit.Metadata)
	assert.Nil(t, audit.Level)
	assert.Nil(t, audit.MetadataFilter)

	quiet := sinks["quiet"]
	assert.Equal(t, &xsink.Dir{}, quiet.Dir)
	assert.Equal(t, &xsink.MetadataKeys{Keys: []string{}}, quiet.Metadata)
}

func TestDecodeSinks_JSON(t *testing.T) {
	cfg, err := NewFromBytes([]byte(`{"sinks":{"app":{"dir":{"kind":"user_data","app":"demo"},"rotate":{"max_bytes":"1024","keep":2}}}}`), FormatJSON)
	require.NoError(t, err)

	sinks, err := DecodeSinks(cfg)
	require.NoError(t, err)
	assert.Equal(t, xsink.UserDataDir("demo", "", ""), sinks["app"].Dir)
	assert.Equal(t, &xsink.Rotation{MaxBytes: 1024, Keep: 2}, sinks["app"].Rotate)
}

func TestDecodeSinks_PathOnly(t *testing.T) {
	cfg, err := NewFromBytes([]byte("sinks:\n  app:\n    path: /tmp/x\n"), FormatYAML)
	require.NoError(t, err)

	sinks, err := DecodeSinks(cfg)
	require.NoError(t, err)
	require.Contains(t, sinks, "app")
	assert.Equal(t, xsink.Options{Dir: xsink.PlainDir("/tmp/x")}, sinks["app"])
}

func TestDecodeSinks_LevelAll(t *testing.T) {
	cfg, err := NewFromBytes([]byte("sinks:\n  app:\n    level: ALL\n"), FormatYAML)
	require.NoError(t, err)

	sinks, err := DecodeSinks(cfg)
	require.NoError(t, err)
	assert.True(t, sinks["app"].ResetLevel)
	assert.Nil(t, sinks["app"].Level)
}

func TestDecodeSinks_Empty(t *testing.T) {
	cfg, err := NewFromBytes([]byte("other: 1\n"), FormatYAML)
	require.NoError(t, err)

	sinks, err := DecodeSinks(cfg)
	require.NoError(t, err)
	assert.Empty(t, sinks)
}

func TestDecodeSinks_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"未知字段", "sinks:\n  app:\n    colour: red\n"},
		{"未知级别", "sinks:\n  app:\n    level: loud\n"},
		{"未知目录类型", "sinks:\n  app:\n    dir: {kind: cache}\n"},
		{"path 与 dir 同时出现", "sinks:\n  app:\n    path: /tmp\n    dir: {kind: plain, path: /tmp}\n"},
		{"metadata 非法字符串", "sinks:\n  app:\n    metadata: some\n"},
		{"metadata 键不是字符串", "sinks:\n  app:\n    metadata: [[a]]\n"},
		{"metadata 类型错误", "sinks:\n  app:\n    metadata: {a: 1}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewFromBytes([]byte(tt.yaml), FormatYAML)
			require.NoError(t, err)
			_, err = DecodeSinks(cfg)
			assert.ErrorIs(t, err, ErrInvalidSink)
		})
	}
}

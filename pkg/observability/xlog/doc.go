// Package xlog 基于 log/slog 的诊断日志。
//
// xsinkd 用它记录自身运行状态与 sink 内部错误，与 sink 写出的业务日志分开。
//
// # 创建 Logger
//
// Builder 模式，first-error-wins：遇到第一个配置错误后，Build 返回该错误。
//
//	logger, cleanup, err := xlog.New().
//		SetLevelString("debug").
//		SetFormat("json").
//		SetRotation("/var/log/xsinkd/diag.log", xrotate.WithMaxSize(50)).
//		Build()
//	if err != nil {
//		return err
//	}
//	defer cleanup()
//
// SetRotation 使用 [xrotate.NewLumberjack] 按大小轮转诊断日志文件。
//
// # 日志级别
//
// LevelDebug(-4)、LevelInfo(0)、LevelWarn(4)、LevelError(8)，名称与 sink 日志行中的 $level 一致，
// 也接受 "info+2" 这类偏移写法。
// [ParseLevel] 同时供 xconf 解析 sink 配置中的 level 字段。
//
// # 便捷属性
//
// [Sink]、[SinkID]、[Path]、[Generation]、[Trigger]、[Line]、[Err]、[Duration]、[Component]。
//
// # 转发到 sink
//
// [NewSinkHandler] 把 slog 记录转成 xsink.Event 交给一个 sink，
// 让标准 slog 调用方直接写入滚动文件。
package xlog

// Package xmetrics 定义日志落盘的指标接口与 OpenTelemetry 实现。
//
// xsink 只依赖 [Recorder] 接口；未配置时使用 [NoopRecorder]。
//
// # 使用示例
//
//	rec, err := xmetrics.NewOTelRecorder(xmetrics.WithMeterProvider(mp))
//	if err != nil {
//		return err
//	}
//	s, err := xsink.Open("app", xsink.WithRecorder(rec))
//
// # 指标命名
//
//   - xsink.events.written    成功写入的事件数
//   - xsink.events.dropped    丢弃的事件数，属性 reason
//   - xsink.bytes.written     写入的字节数
//   - xsink.write.duration    单次写入耗时（秒）
//   - xsink.write.recoveries  写入恢复次数，属性 action
//   - xsink.rotations         轮转次数，属性 trigger
//   - xsink.files.pruned      清理的文件数
//
// 所有指标都带 sink 属性。
package xmetrics

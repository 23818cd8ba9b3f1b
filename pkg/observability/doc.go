// Package observability 提供日志输出与可观测性相关的子包。
//
// 子包列表：
//   - xsink: 单写者日志 sink，按日期与代号轮转文件
//   - xrotate: 日志文件命名、扫描与清理，以及诊断日志的按大小轮转
//   - xlog: 结构化日志，基于 log/slog 扩展，可桥接到 xsink
//   - xmetrics: sink 指标记录接口与 OpenTelemetry 实现
//
// 设计原则：
//   - sink 内部状态只由自己的 goroutine 访问
//   - 写入失败不向调用方传播，通过回调与指标暴露
package observability

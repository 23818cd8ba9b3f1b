// Package xrotate 提供日志文件轮转功能。
//
// Rotator 接口定义了轮转器的核心行为（Write/Close/Rotate）。
//
// # 当前实现
//
//   - [NewGeneration]: 按 "{filename}_{YYYY-MM-DD}.{generation}.log" 命名的日期+代号轮转，
//     由单一所有者串行驱动（见 xsink），支持按大小轮转、按天滚动和保留代数清理
//   - [NewLumberjack]: 基于 lumberjack v2 的按大小轮转，并发安全，用于进程自身的诊断日志
//
// # 命名与清理
//
// [Path]、[NextGeneration]、[Prune] 是无状态函数：
//
//	p, ok := xrotate.Path("/var/log/app", "app", xrotate.DateOf(now), 3)
//	// p == "/var/log/app/app_2024-05-01.3.log"
//
// 同一日期下代号从 0 开始严格递增，不复用、不重命名；当天代号最大的文件即最近活跃的文件。
// 清理仅针对单一日期向下扫描，不处理更早日期遗留的文件。
package xrotate

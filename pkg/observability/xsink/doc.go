// Package xsink 提供单写者的滚动文件日志。
//
// 每个 [Sink] 由一个 goroutine 独占状态：接收事件、按级别与元数据过滤、
// 按模板格式化，然后追加到 "{dir}/{filename}_{YYYY-MM-DD}.{generation}.log"。
//
// # 轮转
//
//   - 按大小：写入前活跃文件达到 Rotation.MaxBytes 时切换到下一代，
//     并清理当天低于 gen+1-Keep 的旧代
//   - 按天：本地零点的定时消息把代号重置为 0，并清理前一天较早的代，只保留最后 Keep 代
//
// 启动与重新配置时扫描目录，从已有最大代号 +1 开始，不会覆盖旧文件。
//
// # 写入恢复
//
// 文件被外部移走、删除或替换时自动在原路径重建。写入失败后恢复一次：
// 非法 UTF-8 内容先经 [Sanitize] 净化，其他错误重新打开文件。仍失败则丢弃事件。
// 调用方永远看不到 I/O 错误，只能通过 [WithOnError] 与 [WithRecorder] 观察。
//
// # 使用示例
//
//	s, err := xsink.Open("app", xsink.WithOnError(func(name string, err error) {
//		diag.Warn("sink error", "sink", name, "error", err)
//	}))
//	if err != nil {
//		return err
//	}
//	defer s.Stop(context.Background())
//
//	err = s.Configure(ctx, xsink.Options{
//		Dir:      xsink.PlainDir("/var/log/app"),
//		Level:    xsink.Ptr(slog.LevelInfo),
//		Metadata: xsink.AllMetadata(),
//		Rotate:   &xsink.Rotation{MaxBytes: 10 << 20, Keep: 5},
//	})
//
//	_ = s.Log(ctx, xsink.Event{
//		Level:    slog.LevelInfo,
//		Message:  xsink.Text("user login"),
//		Metadata: []xsink.Field{{Key: "user", Value: "alice"}},
//	})
//
// 多个 sink 用 [Registry] 按名称管理。
package xsink

// Package xrun 基于 errgroup 的进程生命周期管理。
//
// [Group] 并发运行多个命名服务：任一服务返回错误或 context 被取消时，
// 其余服务通过 ctx.Done() 收到通知。[Run] 在此基础上监听终止信号，
// 收到 SIGINT/SIGTERM/SIGQUIT 时以 [*SignalError] 作为取消原因。
//
// SIGHUP 默认同样终止进程；通过 [WithHangup] 可改为回调（xsinkd 用它重载配置）。
//
//	err := xrun.Run(ctx, []xrun.Option{
//		xrun.WithLogger(logger),
//		xrun.WithHangup(reload),
//	},
//		xrun.Service{Name: "ingest", Run: ingest},
//		xrun.Service{Name: "watch", Run: watcher.Run},
//	)
//	if errors.Is(err, xrun.ErrSignal) {
//		// 正常退出
//	}
//
// Wait 过滤由 Group 自身取消引起的 context.Canceled，但保留显式的取消原因。
package xrun

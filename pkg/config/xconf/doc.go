// Package xconf 加载 xsinkd 的 YAML/JSON 配置，基于 koanf。
//
// [New] 从文件加载，[NewFromBytes] 从内存加载（测试或内嵌配置）。
// [Config.Reload] 并发安全：解析成功后整体替换 koanf 实例，失败时保留旧配置。
//
// # sink 配置
//
// [DecodeSinks] 把 "sinks" 下的每一项解码为 xsink.Options：
//
//	sinks:
//	  app:
//	    path: /var/log/app
//	    filename: app
//	    level: info
//	    format: "$time $metadata[$level] $message\n"
//	    metadata: all            # 或 [request_id, user]，或 []
//	    metadata_filter: {flag: true, region: [eu, us]}
//	    rotate: {max_bytes: 10485760, keep: 5}
//	  audit:
//	    dir: {kind: user_log, app: demo, author: acme, version: "1.0"}
//
// 未出现的字段保持 nil，交给 xsink.Merge 保留 sink 当前值。
// 未知字段视为配置错误。
//
// # 监视
//
// [Watch] 监视配置文件所在目录（兼容编辑器的 rename 式原子写入），
// 防抖后调用 Reload 并回调。[Watcher.Run] 阻塞到 ctx 取消，返回后不会再有回调。
package xconf

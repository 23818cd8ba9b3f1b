// xsinkd 把 NDJSON 事件流写入按配置管理的滚动日志文件。
//
// 用法:
//
//	xsinkd run --config sinks.yaml [--input events.ndjson] [--diag-log path] [--diag-level info]
//	xsinkd path --config sinks.yaml [--sink name] [--generation n]
//
// run 为每个 sink 启动一个写入 goroutine，监视配置文件变更（新增、删除、
// 修改 sink 立即生效），SIGHUP 同样触发重载。事件格式:
//
//	{"sink":"app","level":"warn","msg":"disk almost full","time":"2024-05-01T10:00:00Z","meta":{"disk":"/dev/sda1"}}
//
// 省略 sink 的事件发给所有 sink。msg 可以是字符串，或由字符串与码点组成的数组。
// 输入读完（EOF）或收到 SIGINT/SIGTERM 后停止所有 sink 并退出。
//
// path 只解析并打印每个 sink 当前的活跃文件路径，不写入任何内容。
//
// 退出码:
//
//	0: 成功（包括信号退出）
//	1: 运行时错误（配置文件无法加载、sink 启动失败等）
//	2: 参数错误
package main

import (
	"context"
	"os"
)

// 版本信息，构建时通过 -ldflags "-X main.Version=..." 注入
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args, os.Stdin, os.Stdout, os.Stderr))
}

// Package xproc 提供当前进程与所在主机的标识。
//
// 结果在首次调用时解析并缓存，用于日志行中的 $node 字段和诊断日志的进程属性。
package xproc

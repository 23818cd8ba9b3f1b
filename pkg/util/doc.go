// Package util 提供通用工具相关的子包。
//
// 子包列表：
//   - xfile: 文件与目录工具，目录创建、路径规范化与穿越检查
//   - xproc: 进程与主机标识，PID、进程名称与主机名
package util

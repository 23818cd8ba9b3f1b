// Package xfile 提供日志目录与文件路径的校验和创建工具。
//
//   - SanitizePath: 规范化文件路径，拒绝空路径、空字节、相对穿越和目录路径
//   - JoinUnder: 把若干相对路径段拼接到根目录之下，结果保证仍在根目录内
//   - EnsureDir: 为文件创建父目录
//
// 穿越检测按路径段精确匹配，"..config" 这类文件名不会被误判。
// 本包只处理文件系统路径，不做 URL 解码。
//
// 预定义错误支持 [errors.Is] 判断：
//
//	_, err := xfile.JoinUnder("/var/log", "../etc")
//	if errors.Is(err, xfile.ErrPathTraversal) {
//	    // 拒绝配置
//	}
package xfile

package xfile

import (
	"fmt"
	"path/filepath"
	"strings"
)

func containsNullByte(path string) bool {
	return strings.ContainsRune(path, 0)
}

// isWindowsAbsPath 识别 "C:..."、"\\server\..." 与 "\foo" 形式。
// 非 Windows 平台上 filepath.IsAbs 不认这些写法，需要单独拒绝。
func isWindowsAbsPath(path string) bool {
	if len(path) >= 2 && isASCIILetter(path[0]) && path[1] == ':' {
		return true
	}
	return len(path) >= 1 && path[0] == '\\'
}

func isASCIILetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// hasDotDotSegment 判断路径中是否有恰好为 ".." 的段，'/' 与 '\' 都视为分隔符。
// 逐字节扫描，不分配内存。
func hasDotDotSegment(path string) bool {
	i := 0
	for i < len(path) {
		if path[i] == '/' || path[i] == '\\' {
			i++
			continue
		}
		j := i
		for j < len(path) && path[j] != '/' && path[j] != '\\' {
			j++
		}
		if j-i == 2 && path[i] == '.' && path[i+1] == '.' {
			return true
		}
		i = j
	}
	return false
}

// SanitizePath 规范化文件路径。
//
// 拒绝空路径、空字节、以分隔符结尾的目录路径，以及规范化后仍含 ".." 段的相对穿越。
// 绝对路径中的 ".." 由 filepath.Clean 正常折叠（"/var/log/../x.log" -> "/var/x.log"）。
// 只做格式校验，不把路径限制在某个目录下，那是 [JoinUnder] 的职责。
func SanitizePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename is required: %w", ErrEmptyPath)
	}
	if containsNullByte(filename) {
		return "", fmt.Errorf("filename contains null byte: %w", ErrNullByte)
	}
	// Clean 会去掉尾部分隔符，必须先检查
	if strings.HasSuffix(filename, "/") || strings.HasSuffix(filename, "\\") {
		return "", fmt.Errorf("path is a directory: %w", ErrInvalidPath)
	}

	cleaned := filepath.Clean(filename)
	if hasDotDotSegment(cleaned) {
		return "", fmt.Errorf("path traversal in filename: %w", ErrPathTraversal)
	}
	base := filepath.Base(cleaned)
	if base == "." || base == string(filepath.Separator) {
		return "", fmt.Errorf("no file name specified: %w", ErrInvalidPath)
	}
	return cleaned, nil
}

// JoinUnder 把 elems 依次拼接到绝对路径 base 之下。
//
// 每一段都必须是非空相对路径，不含空字节与 ".." 段；拼接结果必须仍位于 base 内。
// 不解析符号链接。用于由应用名、作者、版本号等配置项组成日志目录。
func JoinUnder(base string, elems ...string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("base directory is required: %w", ErrEmptyPath)
	}
	if containsNullByte(base) {
		return "", fmt.Errorf("base contains null byte: %w", ErrNullByte)
	}
	cleanBase := filepath.Clean(base)
	if !filepath.IsAbs(cleanBase) {
		return "", fmt.Errorf("base must be an absolute path: %w", ErrInvalidPath)
	}

	joined := cleanBase
	for _, elem := range elems {
		clean, err := validateElem(elem)
		if err != nil {
			return "", err
		}
		joined = filepath.Join(joined, clean)
	}

	rel, err := filepath.Rel(cleanBase, joined)
	if err != nil || hasDotDotSegment(rel) {
		return "", fmt.Errorf("%s: %w", joined, ErrPathEscaped)
	}
	return joined, nil
}

func validateElem(elem string) (string, error) {
	if elem == "" {
		return "", fmt.Errorf("path element is required: %w", ErrEmptyPath)
	}
	if containsNullByte(elem) {
		return "", fmt.Errorf("path element contains null byte: %w", ErrNullByte)
	}
	if filepath.IsAbs(elem) || isWindowsAbsPath(elem) {
		return "", fmt.Errorf("path element %q must be relative: %w", elem, ErrInvalidPath)
	}
	clean := filepath.Clean(elem)
	if hasDotDotSegment(clean) {
		return "", fmt.Errorf("path element %q: %w", elem, ErrPathTraversal)
	}
	return clean, nil
}

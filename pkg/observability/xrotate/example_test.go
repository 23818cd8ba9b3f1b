package xrotate_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/omeyang/xsink/pkg/observability/xrotate"
)

func ExamplePath() {
	date := xrotate.Date{Year: 2024, Month: time.May, Day: 1}
	p, ok := xrotate.Path("/var/log/app", "app", date, 3)
	fmt.Println(filepath.ToSlash(p), ok)
	// Output: /var/log/app/app_2024-05-01.3.log true
}

func ExampleNewGeneration() {
	dir, err := os.MkdirTemp("", "xrotate-example-*")
	if err != nil {
		fmt.Println("创建临时目录失败:", err)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	date := xrotate.Date{Year: 2024, Month: time.May, Day: 1}
	g := xrotate.NewGeneration(dir, "app", date,
		xrotate.WithMaxBytes(8), // 达到 8 字节后切换到下一代
		xrotate.WithKeep(2),     // 每天保留 2 代
	)
	defer g.Close()

	for _, line := range []string{"first line\n", "second line\n", "third line\n"} {
		if _, err := g.Write([]byte(line)); err != nil {
			fmt.Println("写入失败:", err)
			return
		}
	}

	entries, _ := os.ReadDir(dir)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	fmt.Println(strings.Join(names, " "))
	// Output: app_2024-05-01.1.log app_2024-05-01.2.log
}

// Package export 将合并结果集写出为 JSON/CSV/Markdown 三种格式。
// 三种文件内容等价，均按加星时间升序排列；写出采用先写临时文件再原子替换，
// 崩溃不会破坏上一次的完好导出。
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github-stars-manager/internal/common"
)

// csvColumns CSV 表头，与 JSON 字段保持一一对应
var csvColumns = []string{
	"repo_full_name",
	"owner",
	"html_url",
	"description",
	"topics",
	"category",
	"tags",
	"summary",
	"starred_at",
	"analyzed_at",
}

// writeAtomic 在目标目录内写临时文件后 rename 替换
// rename 在同一文件系统内是原子的，替换失败时旧文件保持完好
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return common.WrapError(common.ErrCodePersistence, "创建输出目录失败", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return common.WrapError(common.ErrCodePersistence, "创建临时文件失败", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return common.WrapError(common.ErrCodePersistence, "写入临时文件失败", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return common.WrapError(common.ErrCodePersistence, "关闭临时文件失败", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return common.WrapError(common.ErrCodePersistence,
			fmt.Sprintf("替换输出文件 %s 失败", path), err)
	}
	return nil
}

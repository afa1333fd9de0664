package export

import (
	"bytes"
	"encoding/json"

	"github-stars-manager/internal/common"
	"github-stars-manager/internal/domain"
)

// JSONExporter 结构化记录文件，同时是下次运行重建去重键集合的数据来源
type JSONExporter struct {
	path string
}

func NewJSONExporter(path string) *JSONExporter {
	return &JSONExporter{path: path}
}

func (e *JSONExporter) Path() string {
	return e.path
}

func (e *JSONExporter) Export(rows []*domain.AnalysisResult) error {
	if rows == nil {
		rows = []*domain.AnalysisResult{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// 保留中文与 URL 原文，不做 HTML 转义
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return common.WrapError(common.ErrCodePersistence, "JSON 序列化失败", err)
	}

	return writeAtomic(e.path, buf.Bytes())
}

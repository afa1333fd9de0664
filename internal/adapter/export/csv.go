package export

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github-stars-manager/internal/common"
	"github-stars-manager/internal/domain"
)

// CSVExporter 表格行文件，topics 与 tags 以分号拼接便于表格查看
type CSVExporter struct {
	path string
}

func NewCSVExporter(path string) *CSVExporter {
	return &CSVExporter{path: path}
}

func (e *CSVExporter) Path() string {
	return e.path
}

func (e *CSVExporter) Export(rows []*domain.AnalysisResult) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvColumns); err != nil {
		return common.WrapError(common.ErrCodePersistence, "CSV 写入表头失败", err)
	}
	for _, r := range rows {
		record := []string{
			r.RepoFullName,
			r.Owner,
			r.HTMLURL,
			r.Description,
			strings.Join(r.Topics, ";"),
			r.Category,
			strings.Join(r.Tags, ";"),
			r.Summary,
			r.StarredAt,
			r.AnalyzedAt,
		}
		if err := w.Write(record); err != nil {
			return common.WrapError(common.ErrCodePersistence, "CSV 写入数据行失败", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return common.WrapError(common.ErrCodePersistence, "CSV 刷新缓冲失败", err)
	}

	return writeAtomic(e.path, buf.Bytes())
}

package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github-stars-manager/internal/domain"
)

// MarkdownExporter 表格文档，便于在 GitHub 上直接浏览
type MarkdownExporter struct {
	path string
}

func NewMarkdownExporter(path string) *MarkdownExporter {
	return &MarkdownExporter{path: path}
}

func (e *MarkdownExporter) Path() string {
	return e.path
}

func (e *MarkdownExporter) Export(rows []*domain.AnalysisResult) error {
	var buf bytes.Buffer
	buf.WriteString("# GitHub Stars 分析结果\n\n")

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"仓库", "类别", "标签", "摘要", "加星时间"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	// Markdown 表格样式：只保留 | 分隔与表头分隔行
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range rows {
		table.Append([]string{
			fmt.Sprintf("[%s](%s)", r.RepoFullName, r.HTMLURL),
			r.Category,
			strings.Join(r.Tags, ", "),
			// 摘要中的换行会破坏表格结构
			strings.ReplaceAll(r.Summary, "\n", " "),
			r.StarredAt,
		})
	}
	table.Render()

	return writeAtomic(e.path, buf.Bytes())
}

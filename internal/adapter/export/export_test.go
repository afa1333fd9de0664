package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-stars-manager/internal/domain"
)

func sampleRows() []*domain.AnalysisResult {
	return []*domain.AnalysisResult{
		{
			RepoFullName: "a/b",
			Owner:        "a",
			HTMLURL:      "https://github.com/a/b",
			Description:  "first repo",
			Topics:       []string{"cli", "go"},
			Category:     "开发工具",
			Tags:         []string{"cli", "tooling"},
			Summary:      "命令行工具",
			StarredAt:    "2021-06-09T03:38:10Z",
			AnalyzedAt:   "2024-03-01T08:30:00Z",
		},
		{
			RepoFullName: "c/d",
			Owner:        "c",
			HTMLURL:      "https://github.com/c/d",
			Description:  "second, with \"quotes\"",
			Topics:       nil,
			Category:     "数据库",
			Tags:         []string{"sql"},
			Summary:      "多行\n摘要",
			StarredAt:    "2021-07-01T00:00:00Z",
			AnalyzedAt:   "2024-03-01T08:30:00Z",
		},
	}
}

func TestJSONExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results_all.json")
	e := NewJSONExporter(path)

	require.NoError(t, e.Export(sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []*domain.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "a/b", decoded[0].RepoFullName)
	assert.Equal(t, "开发工具", decoded[0].Category)

	// 中文与 URL 不做转义
	assert.Contains(t, string(data), "开发工具")
	assert.Contains(t, string(data), "https://github.com/a/b")
	assert.NotContains(t, string(data), `\u`)
}

func TestJSONExporterEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results_all.json")
	e := NewJSONExporter(path)

	require.NoError(t, e.Export(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}

func TestCSVExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results_all.csv")
	e := NewCSVExporter(path)

	require.NoError(t, e.Export(sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")

	assert.Equal(t, strings.Join(csvColumns, ","), lines[0])
	// topics/tags 以分号拼接
	assert.Contains(t, lines[1], "cli;go")
	assert.Contains(t, lines[1], "cli;tooling")
	assert.Contains(t, lines[1], "a/b")
}

func TestMarkdownExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results_all.md")
	e := NewMarkdownExporter(path)

	require.NoError(t, e.Export(sampleRows()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "# GitHub Stars 分析结果\n\n"))
	assert.Contains(t, content, "[a/b](https://github.com/a/b)")
	assert.Contains(t, content, "cli, tooling")
	// 摘要中的换行被替换为空格
	assert.Contains(t, content, "多行 摘要")
	assert.NotContains(t, content, "多行\n摘要")
}

func TestExportersAreDeterministic(t *testing.T) {
	dir := t.TempDir()
	rows := sampleRows()

	exporters := map[string]interface {
		Export([]*domain.AnalysisResult) error
		Path() string
	}{
		"json": NewJSONExporter(filepath.Join(dir, "r.json")),
		"csv":  NewCSVExporter(filepath.Join(dir, "r.csv")),
		"md":   NewMarkdownExporter(filepath.Join(dir, "r.md")),
	}

	for name, e := range exporters {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, e.Export(rows))
			first, err := os.ReadFile(e.Path())
			require.NoError(t, err)

			// 相同输入重复导出必须字节级一致
			require.NoError(t, e.Export(rows))
			second, err := os.ReadFile(e.Path())
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestWriteAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	require.NoError(t, writeAtomic(path, []byte("hello")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())

	// 覆盖写入同样不残留临时文件
	require.NoError(t, writeAtomic(path, []byte("world")))
	entries, err = os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "world", string(data))
}

package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github-stars-manager/internal/domain"
)

func TestNormalize(t *testing.T) {
	n := NewNormalizer(nil, nil, "开发工具")

	tests := []struct {
		name      string
		candidate string
		rec       *domain.StarRecord
		expected  string
	}{
		{
			name:      "候选在允许列表中直接采用",
			candidate: "数据库",
			rec:       &domain.StarRecord{RepoFullName: "a/b"},
			expected:  "数据库",
		},
		{
			name:      "候选不合法时按关键词映射",
			candidate: "随便编的分类",
			rec: &domain.StarRecord{
				RepoFullName: "redis/redis",
				Description:  "In-memory database",
				Topics:       []string{"redis", "cache"},
			},
			expected: "数据库",
		},
		{
			name:      "无法确定时返回默认分类",
			candidate: "",
			rec: &domain.StarRecord{
				RepoFullName: "someone/xyzzy",
				Description:  "???",
			},
			expected: "开发工具",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, n.Normalize(tt.candidate, tt.rec))
		})
	}
}

func TestClassifyByKeywords(t *testing.T) {
	n := NewNormalizer(nil, nil, "开发工具")

	rec := &domain.StarRecord{
		RepoFullName: "pytorch/pytorch",
		Description:  "Tensors and Dynamic neural networks",
		Topics:       []string{"deep-learning", "gpu"},
	}
	assert.Equal(t, "AI/机器学习", n.ClassifyByKeywords(rec))

	// 大小写不敏感
	rec = &domain.StarRecord{RepoFullName: "x/y", Description: "A Flutter App"}
	assert.Equal(t, "移动应用", n.ClassifyByKeywords(rec))

	rec = &domain.StarRecord{RepoFullName: "someone/qqqq", Description: "~~~"}
	assert.Equal(t, "", n.ClassifyByKeywords(rec))
}

func TestFallbackTags(t *testing.T) {
	n := NewNormalizer(nil, nil, "")

	rec := &domain.StarRecord{
		Topics: []string{"CLI", " tooling ", "", "go", "linter", "devops", "build", "extra"},
	}

	tags := n.FallbackTags(rec)
	assert.Equal(t, []string{"cli", "tooling", "go", "linter", "devops", "build"}, tags)

	assert.Empty(t, n.FallbackTags(&domain.StarRecord{}))
}

func TestLoadCategoriesFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "categories.json")
	require.NoError(t, os.WriteFile(path, []byte(`["基础设施", "开发工具", " "]`), 0644))

	cats := LoadCategories(path)
	assert.Equal(t, []string{"基础设施", "开发工具"}, cats)
}

func TestLoadCategoriesFallbacks(t *testing.T) {
	t.Setenv("CATEGORIES_FILE", "")
	t.Setenv("CATEGORIES", "")

	// 文件缺失 + 环境变量为空 -> 内置默认
	assert.Equal(t, DefaultAllowedCategories, LoadCategories(""))

	// 环境变量提供逗号分隔列表
	t.Setenv("CATEGORIES", "工具, 库 ,")
	assert.Equal(t, []string{"工具", "库"}, LoadCategories(""))

	// 文件损坏时继续回退
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(broken, []byte(`{not json`), 0644))
	assert.Equal(t, []string{"工具", "库"}, LoadCategories(broken))
}

func TestLoadRules(t *testing.T) {
	t.Setenv("CATEGORY_RULES_FILE", "")

	// 缺省时返回内置规则
	rules := LoadRules("")
	assert.Equal(t, DefaultCategoryRules, rules)

	dir := t.TempDir()
	path := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"基础设施": ["K8s", "Terraform"]}`), 0644))

	rules = LoadRules(path)
	// 关键词统一转小写
	assert.Equal(t, map[string][]string{"基础设施": {"k8s", "terraform"}}, rules)
}

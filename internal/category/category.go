// Package category 管理允许的分类集合与本地关键词规则，
// 用于把模型输出规范化到固定分类，以及在模型不可用时做规则回退。
package category

import (
	"encoding/json"
	"os"
	"strings"

	"github-stars-manager/internal/domain"
)

// DefaultAllowedCategories 默认允许的分类集合，可通过文件或环境变量覆盖
var DefaultAllowedCategories = []string{
	"Web应用",
	"移动应用",
	"桌面应用",
	"数据库",
	"AI/机器学习",
	"开发工具",
	"安全工具",
	"游戏",
	"设计工具",
	"效率工具",
	"教育学习",
	"社交网络",
	"数据分析",
}

// DefaultCategoryRules 本地关键词到分类的映射，用于无 API 或解析失败时的规则回退
var DefaultCategoryRules = map[string][]string{
	"Web应用":   {"web", "http", "rest", "frontend", "backend", "website", "spa", "vue", "react", "svelte", "nextjs", "nuxt"},
	"移动应用":    {"android", "ios", "mobile", "apk", "react native", "flutter", "cordova"},
	"桌面应用":    {"desktop", "electron", "qt", "gtk", "win32", "macos", "wxwidgets"},
	"数据库":     {"database", "db", "sql", "nosql", "postgres", "mysql", "mongodb", "redis", "cassandra", "sqlite"},
	"AI/机器学习": {"machine learning", "ml", "ai", "deep learning", "transformer", "llm", "pytorch", "tensorflow", "keras"},
	"开发工具":    {"dev", "developer", "sdk", "library", "framework", "build", "compile", "cli", "lint", "ci", "testing", "tool"},
	"安全工具":    {"security", "vuln", "pentest", "penetration", "exploit", "auth", "encryption", "ssl", "xss", "cve"},
	"游戏":      {"game", "gaming", "unity", "unreal", "godot"},
	"设计工具":    {"design", "ui", "ux", "figma", "sketch", "graphics", "svg", "illustration"},
	"效率工具":    {"productivity", "todo", "note", "task", "calendar", "automation", "workflow"},
	"教育学习":    {"education", "learn", "learning", "tutorial", "course", "teaching", "docs", "examples"},
	"社交网络":    {"social", "network", "chat", "messaging", "community", "forum", "sns"},
	"数据分析":    {"data analysis", "analytics", "bi", "pandas", "numpy", "visualization", "chart", "plot"},
}

// LoadCategories 加载允许的分类列表，优先级：文件 > CATEGORIES 环境变量 > 内置默认
// 文件格式为 JSON 数组；环境变量为逗号分隔
func LoadCategories(filePath string) []string {
	if filePath == "" {
		filePath = os.Getenv("CATEGORIES_FILE")
	}
	if filePath != "" {
		if data, err := os.ReadFile(filePath); err == nil {
			var raw []string
			if err := json.Unmarshal(data, &raw); err == nil {
				var cats []string
				for _, c := range raw {
					if c = strings.TrimSpace(c); c != "" {
						cats = append(cats, c)
					}
				}
				if len(cats) > 0 {
					return cats
				}
			}
		}
	}

	if env := os.Getenv("CATEGORIES"); env != "" {
		var cats []string
		for _, c := range strings.Split(env, ",") {
			if c = strings.TrimSpace(c); c != "" {
				cats = append(cats, c)
			}
		}
		if len(cats) > 0 {
			return cats
		}
	}

	return DefaultAllowedCategories
}

// LoadRules 加载分类关键词规则文件 (JSON 对象 {"分类": ["关键词", ...]})
// 文件缺失或损坏时返回内置默认规则
func LoadRules(filePath string) map[string][]string {
	if filePath == "" {
		filePath = os.Getenv("CATEGORY_RULES_FILE")
	}
	if filePath != "" {
		if data, err := os.ReadFile(filePath); err == nil {
			var raw map[string][]string
			if err := json.Unmarshal(data, &raw); err == nil && len(raw) > 0 {
				rules := make(map[string][]string, len(raw))
				for cat, words := range raw {
					lowered := make([]string, 0, len(words))
					for _, w := range words {
						lowered = append(lowered, strings.ToLower(w))
					}
					rules[cat] = lowered
				}
				return rules
			}
		}
	}
	return DefaultCategoryRules
}

// Normalizer 把模型给出的分类候选收敛到允许集合中
type Normalizer struct {
	allowed         []string
	rules           map[string][]string
	defaultCategory string
}

func NewNormalizer(allowed []string, rules map[string][]string, defaultCategory string) *Normalizer {
	if len(allowed) == 0 {
		allowed = DefaultAllowedCategories
	}
	if len(rules) == 0 {
		rules = DefaultCategoryRules
	}
	if defaultCategory == "" {
		defaultCategory = "开发工具"
	}
	return &Normalizer{
		allowed:         allowed,
		rules:           rules,
		defaultCategory: defaultCategory,
	}
}

// Allowed 返回允许的分类列表 (用于构造提示词)
func (n *Normalizer) Allowed() []string {
	return n.allowed
}

// DefaultCategory 返回兜底分类
func (n *Normalizer) DefaultCategory() string {
	return n.defaultCategory
}

// Normalize 规范化分类：
// 1) 候选在允许列表中则直接采用；
// 2) 否则按本地关键词规则映射；
// 3) 仍无法确定时返回默认分类。
func (n *Normalizer) Normalize(candidate string, rec *domain.StarRecord) string {
	for _, c := range n.allowed {
		if candidate == c {
			return candidate
		}
	}
	if mapped := n.ClassifyByKeywords(rec); mapped != "" {
		return mapped
	}
	return n.defaultCategory
}

// ClassifyByKeywords 将仓库名、简介与 topics 合并为小写文本后做关键词匹配，
// 未命中返回空字符串
func (n *Normalizer) ClassifyByKeywords(rec *domain.StarRecord) string {
	text := strings.ToLower(strings.Join([]string{
		rec.RepoFullName,
		rec.Description,
		strings.Join(rec.Topics, " "),
	}, " "))

	for _, cat := range n.allowed {
		for _, w := range n.rules[cat] {
			if w != "" && strings.Contains(text, w) {
				return cat
			}
		}
	}
	return ""
}

// FallbackTags 分类调用失败时由 topics 派生标签，最多 6 个
func (n *Normalizer) FallbackTags(rec *domain.StarRecord) []string {
	tags := make([]string, 0, len(rec.Topics))
	for _, t := range rec.Topics {
		if t = strings.TrimSpace(strings.ToLower(t)); t != "" {
			tags = append(tags, t)
		}
		if len(tags) >= 6 {
			break
		}
	}
	return tags
}

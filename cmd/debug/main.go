package main

import (
	"context"
	"fmt"
	"log"

	"github-stars-manager/internal/adapter/github"
	"github-stars-manager/internal/adapter/zhipu"
	"github-stars-manager/internal/category"
	"github-stars-manager/internal/config"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ 配置无效: %v", err)
	}

	ctx := context.Background()

	// 初始化组件
	fetcher := github.NewFetcher(cfg.GitHubToken)
	normalizer := category.NewNormalizer(
		category.LoadCategories(cfg.CategoriesFile),
		category.LoadRules(cfg.CategoryRulesFile),
		cfg.DefaultCategory,
	)
	classifier := zhipu.NewClassifier(cfg.APIKey, cfg.BaseURL, cfg.Model, normalizer.Allowed())

	fmt.Println("🔍 调试模式：拉取并分析加星仓库")

	// 1. 拉取加星仓库
	fmt.Println("📥 正在拉取加星仓库列表...")
	records, err := fetcher.FetchStarred(ctx, 30)
	if err != nil {
		log.Printf("❌ 拉取加星仓库失败: %v", err)
		return
	}
	fmt.Printf("✅ 共拉取 %d 条加星记录\n", len(records))

	if len(records) == 0 {
		fmt.Println("❌ 当前账号没有任何加星仓库")
		return
	}

	// 2. 只分析前几条以节省 API 调用
	limit := min(3, len(records))
	fmt.Printf("🧠 对前 %d 条记录进行分析:\n", limit)
	for i, rec := range records[:limit] {
		fmt.Printf("  分析仓库 #%d: %s (加星于 %s)\n", i+1, rec.RepoFullName, rec.StarredAt)

		cls, err := classifier.Classify(ctx, rec)
		if err != nil {
			log.Printf("    ⚠️ 分析失败，规则回退分类: %s\n", normalizer.Normalize("", rec))
			continue
		}

		fmt.Printf("    分类: %s (规范化后: %s)\n", cls.Category, normalizer.Normalize(cls.Category, rec))
		fmt.Printf("    标签: %v\n", cls.Tags)
		fmt.Printf("    摘要: %s\n", cls.Summary)
		fmt.Println()
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github-stars-manager/internal/adapter/archive"
	"github-stars-manager/internal/adapter/export"
	"github-stars-manager/internal/adapter/feishu"
	"github-stars-manager/internal/adapter/gemini"
	"github-stars-manager/internal/adapter/github"
	"github-stars-manager/internal/adapter/store"
	"github-stars-manager/internal/adapter/zhipu"
	"github-stars-manager/internal/category"
	"github-stars-manager/internal/config"
	"github-stars-manager/internal/port"
	"github-stars-manager/internal/service"
)

func main() {
	// 1. 加载配置 (.env + 环境变量)
	cfg := config.Load()

	// 2. 定义命令行参数，命令行优先于环境变量
	batchSize := flag.Int("batch-size", 10, "单次运行最多分析的新仓库数量，0 表示不限制")
	sleep := flag.Float64("sleep", 0.6, "相邻两次模型调用之间的间隔（秒）")
	perPage := flag.Int("per-page", 100, "GitHub 分页大小 (1-100)")
	provider := flag.String("provider", cfg.Provider, "分类服务: zhipu 或 gemini")
	model := flag.String("model", cfg.Model, "模型名称")
	baseURL := flag.String("base-url", cfg.BaseURL, "ZHIPU/OpenAI 风格接口地址")
	outputDir := flag.String("output-dir", cfg.OutputDir, "结果文件输出目录")
	categoriesFile := flag.String("categories-file", cfg.CategoriesFile, "允许分类列表文件 (JSON 数组)")
	rulesFile := flag.String("category-rules-file", cfg.CategoryRulesFile, "关键词分类规则 JSON 文件")
	defaultCategory := flag.String("default-category", cfg.DefaultCategory, "回退分类")
	timeout := flag.Int("timeout", 30, "整体执行超时（分钟）")
	flag.Parse()

	cfg.Provider = *provider
	cfg.Model = *model
	cfg.BaseURL = *baseURL
	cfg.OutputDir = *outputDir
	cfg.CategoriesFile = *categoriesFile
	cfg.CategoryRulesFile = *rulesFile
	cfg.DefaultCategory = *defaultCategory

	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ 配置无效: %v", err)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("❌ 创建输出目录失败: %v", err)
	}

	// 3. 为整个批次设置超时
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(*timeout)*time.Minute)
	defer cancel()

	// 4. 初始化组件
	normalizer := category.NewNormalizer(
		category.LoadCategories(cfg.CategoriesFile),
		category.LoadRules(cfg.CategoryRulesFile),
		cfg.DefaultCategory,
	)

	classifier, err := buildClassifier(ctx, cfg, normalizer.Allowed())
	if err != nil {
		log.Fatalf("❌ AI 初始化失败: %v", err)
	}

	fetcher := github.NewFetcher(cfg.GitHubToken)

	resultStore := store.NewFileStore(
		filepath.Join(cfg.OutputDir, "results_all.json"),
		export.NewJSONExporter(filepath.Join(cfg.OutputDir, "results_all.json")),
		export.NewCSVExporter(filepath.Join(cfg.OutputDir, "results_all.csv")),
		export.NewMarkdownExporter(filepath.Join(cfg.OutputDir, "results_all.md")),
	)

	// 可选：Postgres 镜像
	var archiver port.Archiver
	if cfg.DatabaseDSN != "" {
		pg, err := archive.NewPostgresArchive(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("❌ DB 初始化失败: %v", err)
		}
		archiver = pg
	}

	// 可选：飞书推送
	var notifier port.Notifier
	if cfg.FeishuWebhook != "" {
		notifier = feishu.NewNotifier(cfg.FeishuWebhook)
	}

	// 5. 组装并执行批次
	pipeline := service.NewPipeline(fetcher, classifier, resultStore, normalizer, archiver, notifier)
	pipeline.SetBatchSize(*batchSize)
	pipeline.SetPerPage(*perPage)
	pipeline.SetSleep(time.Duration(*sleep * float64(time.Second)))

	if err := pipeline.Run(ctx); err != nil {
		log.Fatalf("❌ 批次执行失败: %v", err)
	}

	fmt.Printf("📄 结果文件已写入 %s\n", cfg.OutputDir)
}

// buildClassifier 根据配置选择分类服务
func buildClassifier(ctx context.Context, cfg *config.Config, allowed []string) (port.Classifier, error) {
	switch cfg.Provider {
	case "gemini":
		// MODEL 未显式指定时交给 gemini 适配器选择默认模型
		modelName := cfg.Model
		if modelName == config.DefaultModel {
			modelName = ""
		}
		return gemini.NewClassifier(ctx, cfg.GeminiAPIKey, modelName, allowed)
	default:
		return zhipu.NewClassifier(cfg.APIKey, cfg.BaseURL, cfg.Model, allowed), nil
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github-stars-manager/internal/category"
	"github-stars-manager/internal/common"
	"github-stars-manager/internal/domain"
	"github-stars-manager/internal/port"
)

// Pipeline 处理一次增量分析批次：拉取 -> 去重 -> 逐条分析 -> 合并 -> 落盘
type Pipeline struct {
	fetcher    port.Fetcher
	classifier port.Classifier
	store      port.Store
	normalizer *category.Normalizer
	archiver   port.Archiver
	notifier   port.Notifier

	batchSize int
	perPage   int
	sleep     time.Duration

	nowFunc   func() time.Time
	sleepFunc func(d time.Duration)
}

// NewPipeline 创建新的批次处理服务
// archiver 与 notifier 可为 nil，表示未启用对应能力
func NewPipeline(
	fetcher port.Fetcher,
	classifier port.Classifier,
	store port.Store,
	normalizer *category.Normalizer,
	archiver port.Archiver,
	notifier port.Notifier,
) *Pipeline {
	return &Pipeline{
		fetcher:    fetcher,
		classifier: classifier,
		store:      store,
		normalizer: normalizer,
		archiver:   archiver,
		notifier:   notifier,
		batchSize:  10,
		perPage:    100,
		sleep:      600 * time.Millisecond,
		nowFunc:    time.Now,
		sleepFunc:  time.Sleep,
	}
}

// SetBatchSize 设置单次运行最多分析的新记录条数，0 表示不限制
func (p *Pipeline) SetBatchSize(n int) {
	p.batchSize = n
}

// SetPerPage 设置 GitHub 分页大小
func (p *Pipeline) SetPerPage(n int) {
	p.perPage = n
}

// SetSleep 设置相邻两次模型调用之间的间隔
func (p *Pipeline) SetSleep(d time.Duration) {
	p.sleep = d
}

// Run 执行一次批次
func (p *Pipeline) Run(ctx context.Context) error {
	fmt.Println("🚀 [增量模式] 开始处理加星仓库...")

	// 1. 恢复上次运行的合并结果 (缺失或损坏时从空开始)
	if err := p.store.Load(); err != nil {
		return common.WrapError(common.ErrCodePersistence, "加载历史结果失败", err)
	}
	fmt.Printf("📂 已加载历史结果 %d 条\n", p.store.Size())

	// 2. 按加星时间升序拉取全部加星仓库
	fmt.Println("📥 正在拉取加星仓库列表...")
	records, err := p.fetcher.FetchStarred(ctx, p.perPage)
	if err != nil {
		// 保留抓取层的错误码 (认证/限流)，便于调用方区分处理
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			return err
		}
		return common.WrapError(common.ErrCodeGitHubAPI, "拉取加星仓库失败", err)
	}
	fmt.Printf("✅ 共拉取 %d 条加星记录\n", len(records))

	// 3. 去重：只保留尚未处理的记录
	fresh := p.store.FilterNew(records)
	fmt.Printf("🔍 其中未处理 %d 条\n", len(fresh))

	// 截断到批次大小，剩余的留给下次运行
	if p.batchSize > 0 && len(fresh) > p.batchSize {
		fmt.Printf("✂️ 本次只处理前 %d 条\n", p.batchSize)
		fresh = fresh[:p.batchSize]
	}

	// 4. 逐条分析
	results := make([]*domain.AnalysisResult, 0, len(fresh))
	for i, rec := range fresh {
		select {
		case <-ctx.Done():
			fmt.Println("⏰ 执行时间过长，提前结束分析阶段")
			return ctx.Err()
		default:
		}

		fmt.Printf("🧠 [%d/%d] 正在分析 %s...\n", i+1, len(fresh), rec.RepoFullName)
		results = append(results, p.analyzeOne(ctx, rec))

		// 相邻调用之间留出间隔，避免触发模型限流
		if i < len(fresh)-1 && p.sleep > 0 {
			p.sleepFunc(p.sleep)
		}
	}

	// 5. 合并并落盘 (落盘失败视为致命错误)
	inserted := p.store.Merge(results)
	if err := p.store.Persist(); err != nil {
		return common.WrapError(common.ErrCodePersistence, "写出结果文件失败", err)
	}
	fmt.Printf("💾 本批新增 %d 条，累计 %d 条\n", inserted, p.store.Size())

	// 6. 可选：镜像到数据库 (失败只记录，不影响主流程)
	p.mirrorToArchive(ctx, results)

	// 7. 可选：推送执行汇总
	if p.notifier != nil {
		report := p.buildReport(inserted, results)
		if err := p.notifier.Notify(ctx, report); err != nil {
			log.Printf("⚠️ 推送执行汇总失败: %v", err)
		}
	}

	fmt.Printf("🎉 本轮处理完成，共分析 %d 条记录\n", len(results))
	return nil
}

// analyzeOne 分析单条记录，模型失败时回退到关键词规则，保证批次不中断
func (p *Pipeline) analyzeOne(ctx context.Context, rec *domain.StarRecord) *domain.AnalysisResult {
	cls, err := p.classifier.Classify(ctx, rec)
	if err != nil {
		log.Printf("⚠️ 分析 %s 失败，使用规则回退: %v", rec.RepoFullName, err)
		return p.fallbackResult(rec)
	}

	cat := p.normalizer.Normalize(cls.Category, rec)
	tags := cls.Tags
	if len(tags) == 0 {
		tags = p.normalizer.FallbackTags(rec)
	}
	summary := cls.Summary
	if summary == "" {
		summary = fallbackSummary(rec)
	}
	return domain.NewAnalysisResult(rec, cat, tags, summary, p.nowFunc())
}

func (p *Pipeline) fallbackResult(rec *domain.StarRecord) *domain.AnalysisResult {
	cat := p.normalizer.ClassifyByKeywords(rec)
	if cat == "" {
		cat = p.normalizer.DefaultCategory()
	}
	return domain.NewAnalysisResult(rec, cat, p.normalizer.FallbackTags(rec), fallbackSummary(rec), p.nowFunc())
}

// fallbackSummary 生成占位摘要，明确标注非模型生成
func fallbackSummary(rec *domain.StarRecord) string {
	if rec.Description != "" {
		return fmt.Sprintf("(自动摘要) %s", rec.Description)
	}
	return "(自动摘要) 暂无描述"
}

func (p *Pipeline) mirrorToArchive(ctx context.Context, results []*domain.AnalysisResult) {
	if p.archiver == nil {
		return
	}
	for _, res := range results {
		exists, err := p.archiver.Exists(ctx, res.Key())
		if err != nil {
			log.Printf("⚠️ 检查记录 %s 是否已入库时出错: %v", res.RepoFullName, err)
			continue
		}
		if exists {
			continue
		}
		if err := p.archiver.Save(ctx, res); err != nil {
			log.Printf("⚠️ 记录 %s 入库失败: %v", res.RepoFullName, err)
		}
	}
}

func (p *Pipeline) buildReport(inserted int, results []*domain.AnalysisResult) *domain.RunReport {
	counts := make(map[string]int)
	for _, res := range results {
		counts[res.Category]++
	}
	return &domain.RunReport{
		NewCount:       inserted,
		TotalCount:     p.store.Size(),
		CategoryCounts: counts,
		FinishedAt:     p.nowFunc(),
	}
}

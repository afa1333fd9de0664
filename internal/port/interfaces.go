package port

import (
	"context"

	"github-stars-manager/internal/domain"
)

// Fetcher (侦察兵): 负责从 GitHub 拉取当前用户的加星仓库
// 按加星时间升序分页遍历，返回完整序列
type Fetcher interface {
	FetchStarred(ctx context.Context, perPage int) ([]*domain.StarRecord, error)
}

// Classifier (鉴定师): 负责调用大模型为单个仓库生成分类/标签/摘要
// 返回的是模型原始结果，规范化与回退由调用方完成
type Classifier interface {
	Classify(ctx context.Context, rec *domain.StarRecord) (*domain.Classification, error)
}

// Store (仓库管理员): 跨运行累积的合并结果集，系统唯一的持久化状态
type Store interface {
	// 读取上一次运行的合并结果；文件缺失或损坏时视为空 (软失败)
	Load() error

	// 按唯一键过滤出尚未处理的记录，保持输入顺序
	FilterNew(records []*domain.StarRecord) []*domain.StarRecord

	// 合并新结果；已存在的键不覆盖，返回实际插入条数
	Merge(results []*domain.AnalysisResult) int

	// 将全量结果写出到所有导出格式 (先写临时文件再替换)
	Persist() error

	// 按加星时间升序返回全量结果
	Results() []*domain.AnalysisResult

	Size() int
}

// Exporter 将合并结果序列化为一种输出格式
type Exporter interface {
	// Export 覆盖写出全量结果；对相同输入必须产生字节级一致的文件
	Export(rows []*domain.AnalysisResult) error

	Path() string
}

// Archiver 可选的数据库镜像，便于 SQL 查询累积结果
// 文件导出仍是权威的去重状态，镜像失败不影响主流程
type Archiver interface {
	Exists(ctx context.Context, key string) (bool, error)
	Save(ctx context.Context, res *domain.AnalysisResult) error
}

// Notifier (信使): 批次完成后推送执行汇总
type Notifier interface {
	Notify(ctx context.Context, report *domain.RunReport) error
}

package domain

import "time"

// StarRecord 代表一次加星事件对应的仓库快照 (来自 GitHub /user/starred)
// 一旦抓取完成即视为不可变
type StarRecord struct {
	RepoFullName string   `json:"repo_full_name"` // 例如 "gohugoio/hugo"
	Owner        string   `json:"owner"`
	HTMLURL      string   `json:"html_url"`
	Description  string   `json:"description"`
	Topics       []string `json:"topics"`
	// 加星时间，GitHub 返回的 RFC3339 字符串 (UTC)
	// 保持字符串形式：它参与唯一键拼接，且 RFC3339 按字典序即时间序
	StarredAt string `json:"starred_at"`
}

// Key 生成用于合并去重的唯一键："repo_full_name|starred_at"
// 同一仓库取消加星后再次加星会产生不同的键，属于两条独立记录
func (r *StarRecord) Key() string {
	return r.RepoFullName + "|" + r.StarredAt
}

// Classification AI 返回的原始分类结果 (规范化之前)
type Classification struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Summary  string   `json:"summary"`
}

// AnalysisResult 一条加星仓库的完整分析结果，与 StarRecord 一一对应
type AnalysisResult struct {
	RepoFullName string   `json:"repo_full_name"`
	Owner        string   `json:"owner"`
	HTMLURL      string   `json:"html_url"`
	Description  string   `json:"description"`
	Topics       []string `json:"topics"`

	// --- AI 分析维度 ---

	// 分类：已规范化到允许集合中
	Category string `json:"category"`

	// 标签：3-6 个，解析失败时由 topics 回退生成
	Tags []string `json:"tags"`

	// 一句话中文摘要；解析失败时为明确标注的占位文本
	Summary string `json:"summary"`

	StarredAt  string `json:"starred_at"`
	AnalyzedAt string `json:"analyzed_at"`
}

// NewAnalysisResult 由仓库快照与分类结果组装一条分析记录
func NewAnalysisResult(rec *StarRecord, category string, tags []string, summary string, analyzedAt time.Time) *AnalysisResult {
	return &AnalysisResult{
		RepoFullName: rec.RepoFullName,
		Owner:        rec.Owner,
		HTMLURL:      rec.HTMLURL,
		Description:  rec.Description,
		Topics:       rec.Topics,
		Category:     category,
		Tags:         tags,
		Summary:      summary,
		StarredAt:    rec.StarredAt,
		AnalyzedAt:   analyzedAt.UTC().Format(time.RFC3339),
	}
}

// Key 与 StarRecord.Key 保持同一构造规则
func (r *AnalysisResult) Key() string {
	return r.RepoFullName + "|" + r.StarredAt
}

// RunReport 单次批处理的执行汇总，用于推送通知
type RunReport struct {
	NewCount       int
	TotalCount     int
	CategoryCounts map[string]int
	FinishedAt     time.Time
}

// Package archive 把合并结果镜像到 Postgres，便于后续用 SQL 查询累积数据。
// 文件导出仍是权威的去重状态，镜像是尽力而为的旁路。
package archive

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github-stars-manager/internal/domain"
)

// Record 镜像表结构，切片字段以分号拼接为字符串便于 SQL 检索
type Record struct {
	Key          string `gorm:"primaryKey"`
	RepoFullName string
	Owner        string
	HTMLURL      string
	Description  string
	Topics       string
	Category     string
	Tags         string
	Summary      string `gorm:"type:text"`
	StarredAt    string
	AnalyzedAt   string
}

// PostgresArchive 实现了 port.Archiver 接口
type PostgresArchive struct {
	db *gorm.DB
}

// NewPostgresArchive 初始化数据库连接并自动迁移表结构
func NewPostgresArchive(dsn string) (*PostgresArchive, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	return &PostgresArchive{db: db}, nil
}

// Exists 检查唯一键是否已入库 (防重)
func (a *PostgresArchive) Exists(ctx context.Context, key string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&Record{}).Where("key = ?", key).Count(&count).Error
	return count > 0, err
}

// Save 写入一条分析结果
// 调用方只对新合并的键调用 Save，入库前仍用 Exists 防重
func (a *PostgresArchive) Save(ctx context.Context, res *domain.AnalysisResult) error {
	rec := &Record{
		Key:          res.Key(),
		RepoFullName: res.RepoFullName,
		Owner:        res.Owner,
		HTMLURL:      res.HTMLURL,
		Description:  res.Description,
		Topics:       strings.Join(res.Topics, ";"),
		Category:     res.Category,
		Tags:         strings.Join(res.Tags, ";"),
		Summary:      res.Summary,
		StarredAt:    res.StarredAt,
		AnalyzedAt:   res.AnalyzedAt,
	}
	return a.db.WithContext(ctx).Create(rec).Error
}

// Package store 实现跨运行累积的合并结果集 (Dedup/Merge Store)。
// 导出文件本身就是系统的持久化状态：每次运行启动时从上一次的 JSON 导出
// 重建键集合，运行结束时把全量结果覆盖写出到所有导出格式。
package store

import (
	"encoding/json"
	"log"
	"os"
	"sort"

	"github-stars-manager/internal/common"
	"github-stars-manager/internal/domain"
	"github-stars-manager/internal/port"
)

// FileStore 实现了 port.Store 接口
type FileStore struct {
	// 上次运行的 JSON 导出路径，Load 的数据来源
	jsonPath  string
	keys      map[string]struct{}
	rows      []*domain.AnalysisResult
	exporters []port.Exporter
}

func NewFileStore(jsonPath string, exporters ...port.Exporter) *FileStore {
	return &FileStore{
		jsonPath:  jsonPath,
		keys:      make(map[string]struct{}),
		exporters: exporters,
	}
}

// Load 读取上一次运行的合并结果并重建键集合
// 文件缺失或损坏按空库处理 (软失败)，不中断运行
func (s *FileStore) Load() error {
	s.keys = make(map[string]struct{})
	s.rows = nil

	data, err := os.ReadFile(s.jsonPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ 读取历史合并文件失败，按空库处理: %v", err)
		}
		return nil
	}

	var rows []*domain.AnalysisResult
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Printf("⚠️ 历史合并文件损坏，按空库处理: %v", err)
		return nil
	}

	for _, r := range rows {
		// 手工编辑过的文件可能残留 null 或缺字段的条目，跳过而不是崩溃
		if r == nil || r.RepoFullName == "" || r.StarredAt == "" {
			log.Printf("⚠️ 历史合并文件包含不完整条目，已跳过")
			continue
		}
		key := r.Key()
		if _, exists := s.keys[key]; exists {
			// 历史文件中的重复键只保留第一条
			continue
		}
		s.keys[key] = struct{}{}
		s.rows = append(s.rows, r)
	}
	s.sortRows()
	return nil
}

// FilterNew 按唯一键过滤出尚未处理的记录，保持输入顺序
// 同一次输入内部的重复键也只保留第一条
func (s *FileStore) FilterNew(records []*domain.StarRecord) []*domain.StarRecord {
	seen := make(map[string]struct{})
	var fresh []*domain.StarRecord
	for _, rec := range records {
		key := rec.Key()
		if _, exists := s.keys[key]; exists {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		fresh = append(fresh, rec)
	}
	return fresh
}

// Merge 插入新结果，已存在的键不覆盖 (幂等、仅追加)
// 返回实际插入条数
func (s *FileStore) Merge(results []*domain.AnalysisResult) int {
	inserted := 0
	for _, r := range results {
		key := r.Key()
		if _, exists := s.keys[key]; exists {
			continue
		}
		s.keys[key] = struct{}{}
		s.rows = append(s.rows, r)
		inserted++
	}
	if inserted > 0 {
		s.sortRows()
	}
	return inserted
}

// Persist 把全量结果写出到所有导出格式
// 任何一个导出失败即视为持久化失败；导出内部先写临时文件再替换，
// 失败不会破坏上一次的完好文件
func (s *FileStore) Persist() error {
	for _, e := range s.exporters {
		if err := e.Export(s.rows); err != nil {
			return common.WrapError(common.ErrCodePersistence, "写出 "+e.Path()+" 失败", err)
		}
	}
	return nil
}

// Results 按加星时间升序返回全量结果
func (s *FileStore) Results() []*domain.AnalysisResult {
	return s.rows
}

// Has 判断唯一键是否已存在
func (s *FileStore) Has(key string) bool {
	_, exists := s.keys[key]
	return exists
}

func (s *FileStore) Size() int {
	return len(s.rows)
}

// sortRows 维持导出顺序：加星时间升序，键作为决胜项保证确定性
// RFC3339 字符串的字典序即时间序
func (s *FileStore) sortRows() {
	sort.SliceStable(s.rows, func(i, j int) bool {
		if s.rows[i].StarredAt != s.rows[j].StarredAt {
			return s.rows[i].StarredAt < s.rows[j].StarredAt
		}
		return s.rows[i].Key() < s.rows[j].Key()
	})
}

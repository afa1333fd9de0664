package github

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github-stars-manager/internal/common"
	"github-stars-manager/internal/domain"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// Fetcher 实现了 port.Fetcher 接口
type Fetcher struct {
	client *github.Client
	// 翻页间隔，对 GitHub API 的礼貌性限速
	pageDelay time.Duration
}

// NewFetcher 初始化 GitHub 客户端
// token: GitHub Personal Access Token (空字符串为匿名访问，限制 60次/小时)
func NewFetcher(token string) *Fetcher {
	var client *github.Client

	if token == "" {
		client = github.NewClient(nil)
	} else {
		ctx := context.Background()
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		tc := oauth2.NewClient(ctx, ts)
		client = github.NewClient(tc)
	}

	return &Fetcher{
		client:    client,
		pageDelay: 300 * time.Millisecond,
	}
}

// FetchStarred 分页拉取当前用户的全部加星仓库，按加星时间升序返回
// ListStarred 会带上 star+json 的 Accept 头，响应中才包含 starred_at 字段
func (f *Fetcher) FetchStarred(ctx context.Context, perPage int) ([]*domain.StarRecord, error) {
	if perPage <= 0 || perPage > 100 {
		perPage = 100
	}

	opts := &github.ActivityListStarredOptions{
		Sort:      "created", // 按加星事件的创建时间
		Direction: "asc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var records []*domain.StarRecord
	for {
		var (
			page []*github.StarredRepository
			resp *github.Response
		)
		err := common.Do(ctx, func() error {
			var apiErr error
			page, resp, apiErr = f.client.Activity.ListStarred(ctx, "", opts)
			return classifyAPIError(apiErr)
		},
			common.WithMaxRetries(3),
			common.WithInitialDelay(time.Second),
		)
		if err != nil {
			return nil, fmt.Errorf("拉取加星仓库失败: %w", err)
		}

		for _, item := range page {
			rec := toStarRecord(item)
			if rec == nil {
				continue
			}
			records = append(records, rec)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage

		if f.pageDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.pageDelay):
			}
		}
	}

	return records, nil
}

// toStarRecord 将 GitHub 的数据结构转换为我们的 Domain 实体 (DTO 转换)
// full_name 或 starred_at 缺失的条目直接丢弃
func toStarRecord(item *github.StarredRepository) *domain.StarRecord {
	repo := item.GetRepository()
	if repo == nil {
		return nil
	}
	fullName := repo.GetFullName()
	starredAt := item.GetStarredAt()
	if fullName == "" || starredAt.IsZero() {
		return nil
	}

	owner := ""
	if idx := strings.Index(fullName, "/"); idx > 0 {
		owner = fullName[:idx]
	}

	return &domain.StarRecord{
		RepoFullName: fullName,
		Owner:        owner,
		HTMLURL:      repo.GetHTMLURL(),
		Description:  repo.GetDescription(),
		Topics:       repo.Topics,
		StarredAt:    starredAt.UTC().Format(time.RFC3339),
	}
}

// classifyAPIError 将 go-github 的错误归类到应用错误码
// 认证失败与限流没有重试价值，标记为 Permanent 让重试立即终止并上抛
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return common.Permanent(common.WrapError(common.ErrCodeGitHubRateLimit,
			fmt.Sprintf("GitHub 触发限流，%s 后重置", time.Until(rateErr.Rate.Reset.Time).Round(time.Second)), err))
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return common.Permanent(common.WrapError(common.ErrCodeGitHubRateLimit, "GitHub 触发二级限流", err))
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch respErr.Response.StatusCode {
		case 401, 403:
			return common.Permanent(common.WrapError(common.ErrCodeGitHubAuth, "GH_TOKEN 无效或已过期", err))
		}
	}

	return common.WrapError(common.ErrCodeGitHubAPI, "GitHub API 调用失败", err)
}

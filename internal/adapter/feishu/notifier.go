package feishu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github-stars-manager/internal/common"
	"github-stars-manager/internal/domain"
)

type Notifier struct {
	webhookURL string
}

func NewNotifier(webhook string) *Notifier {
	if webhook == "" {
		log.Println("⚠️ 警告: 飞书 Webhook 为空，推送功能将无法工作！")
	}
	return &Notifier{webhookURL: webhook}
}

// Notify 批次完成后发送飞书卡片消息 (Schema 2.0)
func (n *Notifier) Notify(ctx context.Context, report *domain.RunReport) error {
	if n.webhookURL == "" {
		return common.NewError(common.ErrCodeNotification, "Webhook URL 为空")
	}

	title := fmt.Sprintf("⭐ Star 分析批次完成: 新增 %d 项", report.NewCount)

	// 分类分布按名称排序，保证消息内容稳定
	var dist strings.Builder
	cats := make([]string, 0, len(report.CategoryCounts))
	for cat := range report.CategoryCounts {
		cats = append(cats, cat)
	}
	sort.Strings(cats)
	for _, cat := range cats {
		fmt.Fprintf(&dist, "- %s: %d\n", cat, report.CategoryCounts[cat])
	}

	mdContent := fmt.Sprintf(`**🆕 本批新增:** %d  |  **📚 累计总数:** %d

**📊 本批分类分布:**
%s
**🕐 完成时间:** %s
`,
		report.NewCount, report.TotalCount,
		dist.String(),
		report.FinishedAt.UTC().Format("2006-01-02 15:04:05"))

	payload := map[string]interface{}{
		"msg_type": "interactive",
		"card": map[string]interface{}{
			"schema": "2.0",
			"config": map[string]interface{}{
				"update_multi": true,
			},
			"header": map[string]interface{}{
				"title": map[string]interface{}{
					"tag":     "plain_text",
					"content": title,
				},
				"template": "blue",
			},
			"body": map[string]interface{}{
				"direction": "vertical",
				"elements": []map[string]interface{}{
					{
						"tag":       "markdown",
						"content":   mdContent,
						"text_size": "normal",
					},
				},
			},
		},
	}

	// 发送请求 (带重试机制)
	body, _ := json.Marshal(payload)
	err := common.Do(ctx, func() error {
		req, reqErr := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
		if reqErr != nil {
			return reqErr
		}
		req.Header.Set("Content-Type", "application/json")

		resp, postErr := http.DefaultClient.Do(req)
		if postErr != nil {
			return postErr
		}
		defer resp.Body.Close()

		if resp.StatusCode != 200 {
			return fmt.Errorf("飞书 API 报错: 状态码 %d", resp.StatusCode)
		}
		return nil
	},
		common.WithMaxRetries(3),
		common.WithInitialDelay(500*time.Millisecond),
	)
	if err != nil {
		return common.WrapError(common.ErrCodeNotification, "发送请求失败", err)
	}

	return nil
}

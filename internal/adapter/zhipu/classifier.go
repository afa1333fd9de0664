// Package zhipu 通过 ZHIPU/OpenAI 风格的 chat-completions 接口为仓库生成
// 分类、标签与摘要。接口地址与模型名均可配置，任何兼容 OpenAI 协议的
// 服务端都可以使用。
package zhipu

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github-stars-manager/internal/common"
	"github-stars-manager/internal/domain"
)

// Classifier 实现了 port.Classifier 接口
type Classifier struct {
	apiKey  string
	baseURL string
	model   string
	allowed []string // 允许的分类集合，注入提示词
	client  *http.Client
}

// NewClassifier 创建分类客户端
// 分类调用按基线设计不做重试：失败由调用方走本地回退
func NewClassifier(apiKey, baseURL, model string, allowed []string) *Classifier {
	return &Classifier{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		allowed: allowed,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	TopP           float64       `json:"top_p"`
	ResponseFormat respFormat    `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Classify 为单个仓库生成分类/标签/摘要
// 返回的分类是模型原文，规范化到允许集合由调用方完成
func (c *Classifier) Classify(ctx context.Context, rec *domain.StarRecord) (*domain.Classification, error) {
	if c.apiKey == "" {
		return nil, common.NewError(common.ErrCodeAIProcessing, "API_KEY 未设置，跳过模型分析")
	}

	repoCtx, _ := json.Marshal(map[string]interface{}{
		"name":        rec.RepoFullName,
		"url":         rec.HTMLURL,
		"description": rec.Description,
		"topics":      rec.Topics,
	})

	prompt := fmt.Sprintf(
		"你是一位资深开源项目分类助手。请根据仓库名称、简介和主题，给出简洁的中文摘要，"+
			"并从以下固定分类中严格选择一个作为类别：%s。"+
			"提供3-6个标签。只返回严格的 JSON（不要包含反引号或额外文本）："+
			"category（以上列表之一，字符串），tags（字符串数组），summary（不超过120字）。"+
			"\n\n仓库信息: %s",
		strings.Join(c.allowed, ", "), repoCtx)

	body, _ := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: "你是专业的开源项目分类与摘要助手。"},
			{Role: "user", Content: prompt},
		},
		Temperature:    0.2,
		TopP:           0.7,
		ResponseFormat: respFormat{Type: "json_object"},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "构造请求失败", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "模型接口调用失败", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, common.NewError(common.ErrCodeAIProcessing,
			fmt.Sprintf("模型接口返回状态码 %d: %s", resp.StatusCode, string(b)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, common.WrapError(common.ErrCodeAIParse, "响应体解析失败", err)
	}
	if len(cr.Choices) == 0 {
		return nil, common.NewError(common.ErrCodeAIParse, "模型返回内容为空")
	}

	return parseClassification(cr.Choices[0].Message.Content)
}

// parseClassification 鲁棒解析模型返回的 JSON 内容：
// 去除代码块围栏，失败时截取第一个 "{" 与最后一个 "}" 之间的子串再解析
func parseClassification(raw string) (*domain.Classification, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, common.NewError(common.ErrCodeAIParse, "模型返回内容为空")
	}

	// 去除 ```json ... ``` 围栏
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx != -1 {
			text = text[idx+1:]
		}
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var parsed rawClassification
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		// 即使模型夹带了额外文本，也尝试精准抠出中间的 { ... }
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start == -1 || end == -1 || end <= start {
			return nil, common.NewError(common.ErrCodeAIParse,
				fmt.Sprintf("无法提取 JSON，模型原文: %s", raw))
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
			return nil, common.WrapError(common.ErrCodeAIParse, "JSON 解析失败", err)
		}
	}

	return &domain.Classification{
		Category: strings.TrimSpace(parsed.Category),
		Tags:     parsed.tagList(),
		Summary:  strings.TrimSpace(parsed.Summary),
	}, nil
}

// rawClassification 容忍 tags 字段是数组或单个字符串两种形态
type rawClassification struct {
	Category string          `json:"category"`
	Tags     json.RawMessage `json:"tags"`
	Summary  string          `json:"summary"`
}

func (r *rawClassification) tagList() []string {
	if len(r.Tags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(r.Tags, &tags); err == nil {
		return tags
	}
	var single string
	if err := json.Unmarshal(r.Tags, &single); err == nil && single != "" {
		return []string{single}
	}
	return nil
}

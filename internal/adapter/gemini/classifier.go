// Package gemini 提供基于 Google Gemini 的分类实现，
// 与 zhipu 适配器实现同一个 port.Classifier 接口，可通过 PROVIDER 切换。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github-stars-manager/internal/common"
	"github-stars-manager/internal/domain"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type Classifier struct {
	client  *genai.Client
	model   *genai.GenerativeModel
	allowed []string
}

func NewClassifier(ctx context.Context, apiKey, modelName string, allowed []string) (*Classifier, error) {
	if apiKey == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, "GEMINI_API_KEY 未设置")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash-lite"
	}
	model := client.GenerativeModel(modelName)
	// 强制要求返回 JSON，降低解析错误的概率
	model.ResponseMIMEType = "application/json"

	return &Classifier{
		client:  client,
		model:   model,
		allowed: allowed,
	}, nil
}

func (g *Classifier) Classify(ctx context.Context, rec *domain.StarRecord) (*domain.Classification, error) {
	prompt := fmt.Sprintf(`
你是一位资深开源项目分类助手。请分析以下开源仓库：

仓库名称: %s
仓库地址: %s
仓库描述: %s
主题标签: %s

请从以下固定分类中严格选择一个作为类别：%s。

请严格按照 JSON 格式返回分析结果，包含以下字段：
1. category: 以上列表之一（字符串）。
2. tags: 3-6 个标签（字符串数组）。
3. summary: 不超过120字的中文摘要。

请直接返回 JSON，不要包含 Markdown 格式标记。
`, rec.RepoFullName, rec.HTMLURL, rec.Description,
		strings.Join(rec.Topics, ", "), strings.Join(g.allowed, ", "))

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, common.WrapError(common.ErrCodeAIProcessing, "Gemini 调用失败", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, common.NewError(common.ErrCodeAIParse, "Gemini 返回内容为空")
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return nil, common.NewError(common.ErrCodeAIParse, "Gemini 返回格式错误")
	}

	return parseClassification(string(text))
}

// parseClassification 解析 Gemini 返回的 JSON
// 即使返回 "```json { ... } ```"，也能精准抠出中间的 { ... }
func parseClassification(raw string) (*domain.Classification, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, common.NewError(common.ErrCodeAIParse,
			fmt.Sprintf("无法提取 JSON，模型原文: %s", raw))
	}

	var parsed struct {
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
		Summary  string   `json:"summary"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, common.WrapError(common.ErrCodeAIParse, "JSON 解析失败", err)
	}

	return &domain.Classification{
		Category: strings.TrimSpace(parsed.Category),
		Tags:     parsed.Tags,
		Summary:  strings.TrimSpace(parsed.Summary),
	}, nil
}

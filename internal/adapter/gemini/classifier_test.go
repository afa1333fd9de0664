package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github-stars-manager/internal/common"
	"github-stars-manager/internal/domain"
)

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    *domain.Classification
	}{
		{
			name:  "Valid JSON response",
			input: `{"category": "AI/机器学习", "tags": ["llm", "pytorch"], "summary": "深度学习框架"}`,
			expected: &domain.Classification{
				Category: "AI/机器学习",
				Tags:     []string{"llm", "pytorch"},
				Summary:  "深度学习框架",
			},
		},
		{
			name: "JSON with markdown fence",
			input: "```json\n" +
				`{"category": "开发工具", "tags": ["cli"], "summary": "构建工具"}` +
				"\n```",
			expected: &domain.Classification{
				Category: "开发工具",
				Tags:     []string{"cli"},
				Summary:  "构建工具",
			},
		},
		{
			name:        "Invalid JSON",
			input:       `{"category": invalid}`,
			expectError: true,
		},
		{
			name:        "No JSON content",
			input:       `Just some text without JSON`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := parseClassification(tt.input)

			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, common.HasCode(err, common.ErrCodeAIParse))
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

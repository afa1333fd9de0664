package config

import (
	"os"

	"github.com/joho/godotenv"

	"github-stars-manager/internal/common"
)

// 分类服务的内置默认值 (ZHIPU 开放平台的 OpenAI 风格接口)
const (
	DefaultBaseURL  = "https://open.bigmodel.cn/api/paas/v4/"
	DefaultModel    = "glm-4"
	DefaultCategory = "开发工具"
)

// Config 进程配置，启动时构造一次后按引用传递，不使用全局状态
type Config struct {
	// GitHub
	GitHubToken string // GH_TOKEN，CI 环境下回退到 GH_STAR_TOKEN

	// 分类服务
	Provider     string // "zhipu" (OpenAI 风格接口) 或 "gemini"
	APIKey       string // API_KEY (zhipu)
	GeminiAPIKey string // GEMINI_API_KEY，未设置时回退到 API_KEY
	BaseURL      string
	Model        string

	// 分类配置
	CategoriesFile    string
	CategoryRulesFile string
	DefaultCategory   string

	// 输出
	OutputDir string

	// 可选组件
	DatabaseDSN   string // 设置后启用 Postgres 镜像
	FeishuWebhook string // 设置后启用批次完成推送
}

// Load 加载配置：先读取本地 .env (不覆盖已存在的环境变量)，再读取环境变量
func Load() *Config {
	// .env 不存在时忽略错误
	_ = godotenv.Load()

	token := os.Getenv("GH_TOKEN")
	if token == "" {
		token = os.Getenv("GH_STAR_TOKEN")
	}

	return &Config{
		GitHubToken:       token,
		Provider:          getEnv("PROVIDER", "zhipu"),
		APIKey:            getEnv("API_KEY", ""),
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", os.Getenv("API_KEY")),
		BaseURL:           getEnv("BASE_URL", DefaultBaseURL),
		Model:             getEnv("MODEL", DefaultModel),
		CategoriesFile:    getEnv("CATEGORIES_FILE", ""),
		CategoryRulesFile: getEnv("CATEGORY_RULES_FILE", ""),
		DefaultCategory:   getEnv("DEFAULT_CATEGORY", DefaultCategory),
		OutputDir:         getEnv("OUTPUT_DIR", "outputs"),
		DatabaseDSN:       getEnv("DATABASE_DSN", ""),
		FeishuWebhook:     getEnv("FEISHU_WEBHOOK", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate 校验运行一次批处理所需的最小配置
// API_KEY 允许为空：分类阶段会走本地关键词回退
func (c *Config) Validate() error {
	if c.GitHubToken == "" {
		return common.NewError(common.ErrCodeInvalidInput, "未设置 GH_TOKEN，请在 .env 或环境变量中配置")
	}
	if c.Provider != "zhipu" && c.Provider != "gemini" {
		return common.NewError(common.ErrCodeInvalidInput, "PROVIDER 仅支持 zhipu 或 gemini")
	}
	return nil
}

// Package ollama 通过 OpenAI 兼容接口调用本地 Ollama 模型
package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

// DefaultEndpoint Ollama 的 OpenAI 兼容地址
const DefaultEndpoint = "http://localhost:11434/v1"

// Config Ollama配置
type Config struct {
	providers.BaseConfig
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	BatchSize   int     `json:"batch_size"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "llama3",
		Temperature: 0.3,
		BatchSize:   providers.DefaultLLMBatchSize,
	}
	config.APIEndpoint = DefaultEndpoint
	return config
}

// Provider Ollama提供商
type Provider struct {
	config Config
	client *openai.Client
	llm    providers.LLMTranslator
}

var (
	_ providers.Provider        = (*Provider)(nil)
	_ providers.BatchTranslator = (*Provider)(nil)
)

// New 创建新的Ollama提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = DefaultEndpoint
	}

	// Ollama 不校验密钥，但客户端需要一个非空值
	key := config.APIKey
	if key == "" {
		key = "ollama"
	}
	clientConfig := openai.DefaultConfig(key)
	clientConfig.BaseURL = strings.TrimRight(config.APIEndpoint, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: config.Timeout}

	p := &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
	p.llm = providers.LLMTranslator{Chat: p.chat, BatchSize: config.BatchSize}
	return p
}

func (p *Provider) chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: p.config.Temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", providers.StatusError(p.GetName(), apiErr.HTTPStatusCode, []byte(apiErr.Message))
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &providers.Error{Code: providers.ErrCodeEmptyResponse, Message: "no choices returned", Provider: p.GetName()}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	text, err := p.llm.Translate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &providers.ProviderResponse{Text: text, Model: p.config.Model}, nil
}

// TranslateBatch 合并为一次对话请求
func (p *Provider) TranslateBatch(ctx context.Context, req *providers.BatchRequest) ([]providers.BatchItem, error) {
	return p.llm.TranslateBatch(ctx, req)
}

// MaxBatchSize 合并请求的条数上限
func (p *Provider) MaxBatchSize() int {
	return p.llm.MaxBatchSize()
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "ollama"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		MaxTextLength:  4000,
		SupportsBatch:  true,
		SupportsDomain: true,
		RequiresAPIKey: false,
		IsLLM:          true,
	}
}

// HealthCheck 列出模型并确认配置的模型存在
func (p *Provider) HealthCheck(ctx context.Context) error {
	models, err := p.client.ListModels(ctx)
	if err != nil {
		return err
	}
	for _, m := range models.Models {
		if m.ID == p.config.Model || strings.HasPrefix(m.ID, p.config.Model+":") {
			return nil
		}
	}
	return providers.NewError(providers.ErrCodeConfig, "model "+p.config.Model+" is not installed")
}

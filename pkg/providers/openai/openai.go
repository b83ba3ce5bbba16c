// Package openai 基于官方 SDK 的 OpenAI 提供商
package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

// DefaultEndpoint 官方 API 地址
const DefaultEndpoint = "https://api.openai.com/v1/"

// Config OpenAI配置
type Config struct {
	providers.BaseConfig
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	OrgID       string  `json:"org_id,omitempty"`
	BatchSize   int     `json:"batch_size"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{
		BaseConfig:  providers.DefaultConfig(),
		Model:       "gpt-4",
		Temperature: 0.3,
		BatchSize:   providers.DefaultLLMBatchSize,
	}
	config.APIEndpoint = DefaultEndpoint
	return config
}

// Provider OpenAI提供商
type Provider struct {
	config Config
	client openai.Client
	llm    providers.LLMTranslator
}

var (
	_ providers.Provider        = (*Provider)(nil)
	_ providers.BatchTranslator = (*Provider)(nil)
)

// New 创建新的OpenAI提供商，SDK 自带的重试次数取自配置
func New(config Config) *Provider {
	endpoint := config.APIEndpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		option.WithBaseURL(endpoint),
		option.WithMaxRetries(max(config.MaxRetries, 0)),
	}
	if config.OrgID != "" {
		opts = append(opts, option.WithOrganization(config.OrgID))
	}
	for k, v := range config.Headers {
		opts = append(opts, option.WithHeader(k, v))
	}
	if config.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(config.Timeout))
	}

	p := &Provider{
		config: config,
		client: openai.NewClient(opts...),
	}
	p.llm = providers.LLMTranslator{Chat: p.chat, BatchSize: config.BatchSize}
	return p
}

// chat 发送一轮对话
func (p *Provider) chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		Model:       openai.ChatModel(p.config.Model),
		Temperature: openai.Float(p.config.Temperature),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", p.wrapError(err)
	}
	if len(completion.Choices) == 0 {
		return "", &providers.Error{Code: providers.ErrCodeEmptyResponse, Message: "no choices returned", Provider: p.GetName()}
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content), nil
}

// wrapError 把 SDK 的 HTTP 错误转换为提供商错误
func (p *Provider) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return providers.StatusError(p.GetName(), apiErr.StatusCode, []byte(apiErr.Message))
	}
	return err
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
	return "openai"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		MaxTextLength:  8000,
		SupportsBatch:  true,
		SupportsDomain: true,
		RequiresAPIKey: true,
		IsLLM:          true,
	}
}

// HealthCheck 发送一个极短的对话请求
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Hello"),
		},
		Model:     openai.ChatModel(p.config.Model),
		MaxTokens: openai.Int(10),
	})
	return p.wrapError(err)
}

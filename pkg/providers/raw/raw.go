// Package raw 不调用任何服务的提供商，用于离线运行和测试
package raw

import (
	"context"
	"regexp"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

// Mode 处理方式
type Mode string

const (
	// ModeEcho 原样返回
	ModeEcho Mode = "echo"
	// ModeReverse 按字符逆序返回
	ModeReverse Mode = "reverse"
)

// Config Raw 提供商配置
type Config struct {
	Mode      Mode `json:"mode"`
	BatchSize int  `json:"batch_size"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{Mode: ModeEcho, BatchSize: providers.DefaultLLMBatchSize}
}

// Provider Raw 提供商实现
type Provider struct {
	config Config
	llm    providers.LLMTranslator
}

var (
	_ providers.Provider        = (*Provider)(nil)
	_ providers.BatchTranslator = (*Provider)(nil)
)

// New 创建新的 Raw 提供商
func New(config Config) *Provider {
	if config.Mode == "" {
		config.Mode = ModeEcho
	}
	p := &Provider{config: config}
	p.llm = providers.LLMTranslator{Chat: p.chat, BatchSize: config.BatchSize}
	return p
}

var (
	singleText = regexp.MustCompile(`(?s)\n\n원문: (.*)$`)
	batchBody  = regexp.MustCompile(`(?s)@@NODE_START_\d+@@\n(.*?)\n@@NODE_END_\d+@@`)
)

// chat 模拟模型：只变换提示词中的原文部分，标记保持不变
func (p *Provider) chat(_ context.Context, _, user string, _ int) (string, error) {
	if m := batchBody.FindAllStringSubmatch(user, -1); len(m) > 0 {
		out := make([]string, len(m))
		for i, g := range m {
			out[i] = p.apply(g[1])
		}
		return providers.FormatBatch(out), nil
	}
	if m := singleText.FindStringSubmatch(user); m != nil {
		return p.apply(m[1]), nil
	}
	return p.apply(user), nil
}

func (p *Provider) apply(s string) string {
	if p.config.Mode != ModeReverse {
		return s
	}
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// Translate 与 TranslateBatch 共用同一套提示词和后处理
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	text, err := p.llm.Translate(ctx, req)
	if err != nil {
		return nil, err
	}
	return &providers.ProviderResponse{Text: text, Model: "raw"}, nil
}

// TranslateBatch 走与 LLM 提供商相同的合并标记流程
func (p *Provider) TranslateBatch(ctx context.Context, req *providers.BatchRequest) ([]providers.BatchItem, error) {
	return p.llm.TranslateBatch(ctx, req)
}

// MaxBatchSize 合并请求的条数上限
func (p *Provider) MaxBatchSize() int {
	return p.llm.MaxBatchSize()
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "raw"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		SupportedLanguages: []string{"*"},
		MaxTextLength:      1000000,
		SupportsBatch:      true,
	}
}

// HealthCheck 健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	return nil
}

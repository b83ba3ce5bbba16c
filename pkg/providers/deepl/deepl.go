// Package deepl DeepL REST API 提供商，原生支持一次请求翻译多条文本
package deepl

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/retry"
)

const (
	// DefaultEndpoint 付费版地址
	DefaultEndpoint = "https://api.deepl.com/v2"
	// FreeEndpoint 免费版地址，免费密钥以 :fx 结尾
	FreeEndpoint = "https://api-free.deepl.com/v2"

	// maxTexts 单次请求的文本条数上限
	maxTexts = 50
)

// Config DeepL配置
type Config struct {
	providers.BaseConfig
	Formality string `json:"formality,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{BaseConfig: providers.DefaultConfig()}
	config.APIEndpoint = DefaultEndpoint
	return config
}

// Provider DeepL提供商
type Provider struct {
	config  Config
	retrier *retry.NetworkRetrier
}

var (
	_ providers.Provider        = (*Provider)(nil)
	_ providers.BatchTranslator = (*Provider)(nil)
)

// New 创建新的DeepL提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = DefaultEndpoint
		if strings.HasSuffix(config.APIKey, ":fx") {
			config.APIEndpoint = FreeEndpoint
		}
	}
	return &Provider{
		config:  config,
		retrier: providers.NewRetrier(config.BaseConfig),
	}
}

// 领域提示作为 context 参数发送，不会被翻译也不计费
var domainContext = map[providers.Domain]string{
	providers.DomainArt:   "This text comes from an art publication. Keep the expressive and emotional tone.",
	providers.DomainTech:  "This text comes from a technical document. Use standard technical terminology.",
	providers.DomainSport: "This text comes from a sports article. Use the usual sports terminology and idioms.",
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	resp, err := p.translate(ctx, []string{req.Text}, req.SourceLanguage, req.TargetLanguage, req.Domain)
	if err != nil {
		return nil, err
	}
	if len(resp.Translations) == 0 {
		return nil, &providers.Error{Code: providers.ErrCodeEmptyResponse, Message: "no translation returned", Provider: p.GetName()}
	}
	return &providers.ProviderResponse{
		Text:           resp.Translations[0].Text,
		DetectedSource: strings.ToLower(resp.Translations[0].DetectedSourceLanguage),
	}, nil
}

// TranslateBatch 一次请求翻译多条文本
func (p *Provider) TranslateBatch(ctx context.Context, req *providers.BatchRequest) ([]providers.BatchItem, error) {
	resp, err := p.translate(ctx, req.Texts, req.SourceLanguage, req.TargetLanguage, req.Domain)
	if err != nil {
		return nil, err
	}

	items := make([]providers.BatchItem, len(req.Texts))
	for i := range items {
		if i >= len(resp.Translations) {
			items[i].Err = fmt.Errorf("item %d: %w", i+1, providers.ErrBatchItemMissing)
			continue
		}
		items[i].Text = resp.Translations[i].Text
	}
	return items, nil
}

// MaxBatchSize 单次请求的文本条数上限
func (p *Provider) MaxBatchSize() int {
	return maxTexts
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "deepl"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		SupportedLanguages: []string{
			"bg", "cs", "da", "de", "el", "en", "es", "et", "fi", "fr", "hu", "id", "it",
			"ja", "ko", "lt", "lv", "nb", "nl", "pl", "pt", "ro", "ru", "sk", "sl", "sv",
			"tr", "uk", "zh",
		},
		MaxTextLength:  130000,
		SupportsBatch:  true,
		SupportsDomain: true,
		RequiresAPIKey: true,
	}
}

// HealthCheck 查询用量接口
func (p *Provider) HealthCheck(ctx context.Context) error {
	resp, err := p.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, providers.Endpoint(p.config.APIEndpoint, "usage"), nil)
		if err != nil {
			return nil, err
		}
		p.setHeaders(req)
		return req, nil
	})
	if err != nil {
		return err
	}
	return providers.DecodeJSON(p.GetName(), resp, nil)
}

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "DeepL-Auth-Key "+p.config.APIKey)
	for k, v := range p.config.Headers {
		req.Header.Set(k, v)
	}
}

// translate 执行翻译请求
func (p *Provider) translate(ctx context.Context, texts []string, source, target string, domain providers.Domain) (*TranslateResponse, error) {
	params := url.Values{}
	for _, text := range texts {
		params.Add("text", text)
	}
	if !providers.IsAuto(source) {
		params.Set("source_lang", normalizeLanguageCode(source, true))
	}
	params.Set("target_lang", normalizeLanguageCode(target, false))
	if hint, ok := domainContext[domain]; ok {
		params.Set("context", hint)
	}
	if p.config.Formality != "" {
		params.Set("formality", p.config.Formality)
	}
	encoded := params.Encode()

	resp, err := p.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			providers.Endpoint(p.config.APIEndpoint, "translate"), strings.NewReader(encoded))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		p.setHeaders(req)
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("deepl request: %w", err)
	}

	var out TranslateResponse
	if err := providers.DecodeJSON(p.GetName(), resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// normalizeLanguageCode 标准化语言代码为DeepL格式
func normalizeLanguageCode(lang string, isSource bool) string {
	upper := strings.ToUpper(strings.ReplaceAll(lang, "_", "-"))
	if isSource {
		// 源语言只接受基础代码
		base, _, _ := strings.Cut(upper, "-")
		return base
	}

	// 英语和葡萄牙语作为目标语言需要指定变体
	switch upper {
	case "EN":
		return "EN-US"
	case "PT":
		return "PT-BR"
	case "ZH-CN", "ZH-HANS", "ZH-TW", "ZH-HANT":
		return "ZH"
	}
	return upper
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

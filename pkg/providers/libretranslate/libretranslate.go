// Package libretranslate LibreTranslate 提供商，可对接自建实例
package libretranslate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/retry"
)

// DefaultEndpoint 公共实例地址
const DefaultEndpoint = "https://libretranslate.com"

// Config LibreTranslate配置
type Config struct {
	providers.BaseConfig
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{BaseConfig: providers.DefaultConfig()}
	config.APIEndpoint = DefaultEndpoint
	return config
}

// Provider LibreTranslate提供商
type Provider struct {
	config  Config
	retrier *retry.NetworkRetrier
}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的LibreTranslate提供商
func New(config Config) *Provider {
	if config.APIEndpoint == "" {
		config.APIEndpoint = DefaultEndpoint
	}
	return &Provider{
		config:  config,
		retrier: providers.NewRetrier(config.BaseConfig),
	}
}

// Translate 执行翻译
func (p *Provider) Translate(ctx context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	source := "auto"
	if !providers.IsAuto(req.SourceLanguage) {
		source = normalizeLanguageCode(req.SourceLanguage)
	}
	body, err := json.Marshal(TranslateRequest{
		Q:      req.Text,
		Source: source,
		Target: normalizeLanguageCode(req.TargetLanguage),
		Format: "text",
		APIKey: p.config.APIKey,
	})
	if err != nil {
		return nil, err
	}

	resp, err := p.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost,
			providers.Endpoint(p.config.APIEndpoint, "translate"), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		for k, v := range p.config.Headers {
			r.Header.Set(k, v)
		}
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("libretranslate request: %w", err)
	}

	var out TranslateResponse
	if err := providers.DecodeJSON(p.GetName(), resp, &out); err != nil {
		return nil, err
	}
	if out.Error != "" {
		return nil, &providers.Error{Code: providers.ErrCodeInvalidRequest, Message: out.Error, Provider: p.GetName()}
	}

	result := &providers.ProviderResponse{Text: out.TranslatedText}
	if out.DetectedLanguage != nil {
		result.DetectedSource = out.DetectedLanguage.Language
	}
	return result, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "libretranslate"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		MaxTextLength:  5000,
		RequiresAPIKey: false,
	}
}

// HealthCheck 请求语言列表
func (p *Provider) HealthCheck(ctx context.Context) error {
	resp, err := p.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, providers.Endpoint(p.config.APIEndpoint, "languages"), nil)
	})
	if err != nil {
		return err
	}
	var langs []Language
	return providers.DecodeJSON(p.GetName(), resp, &langs)
}

// normalizeLanguageCode LibreTranslate 使用小写基础代码，中文区分简繁
func normalizeLanguageCode(lang string) string {
	lower := strings.ToLower(strings.ReplaceAll(lang, "_", "-"))
	switch lower {
	case "zh-hant", "zh-tw":
		return "zt"
	}
	base, _, _ := strings.Cut(lower, "-")
	return base
}

// Language 语言信息
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage *struct {
		Confidence float64 `json:"confidence"`
		Language   string  `json:"language"`
	} `json:"detectedLanguage,omitempty"`
	Error string `json:"error,omitempty"`
}

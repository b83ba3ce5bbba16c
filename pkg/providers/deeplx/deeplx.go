// Package deeplx DeepLX 自建服务提供商
package deeplx

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

// DefaultEndpoint 本地默认地址
const DefaultEndpoint = "http://localhost:1188/translate"

// Config DeepLX配置
type Config struct {
	providers.BaseConfig
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{BaseConfig: providers.DefaultConfig()}
	config.APIEndpoint = DefaultEndpoint
	return config
}

// Provider DeepLX提供商
type Provider struct {
	config  Config
	retrier *retry.NetworkRetrier
}

var _ providers.Provider = (*Provider)(nil)

// New 创建新的DeepLX提供商
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
	tr := TranslateRequest{
		Text:       req.Text,
		TargetLang: strings.ToUpper(req.TargetLanguage),
	}
	if !providers.IsAuto(req.SourceLanguage) {
		tr.SourceLang = strings.ToUpper(req.SourceLanguage)
	}
	out, err := p.post(ctx, tr)
	if err != nil {
		return nil, err
	}
	return &providers.ProviderResponse{
		Text:           out.Data,
		DetectedSource: strings.ToLower(out.SourceLang),
	}, nil
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "deeplx"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		MaxTextLength:  5000,
		RequiresAPIKey: false,
	}
}

// HealthCheck 翻译一个短词
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.post(ctx, TranslateRequest{Text: "Hello", SourceLang: "EN", TargetLang: "KO"})
	return err
}

func (p *Provider) post(ctx context.Context, tr TranslateRequest) (*TranslateResponse, error) {
	body, err := json.Marshal(tr)
	if err != nil {
		return nil, err
	}

	resp, err := p.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		r, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIEndpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		r.Header.Set("Content-Type", "application/json")
		if p.config.APIKey != "" {
			r.Header.Set("Authorization", "Bearer "+p.config.APIKey)
		}
		for k, v := range p.config.Headers {
			r.Header.Set(k, v)
		}
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("deeplx request: %w", err)
	}

	var out TranslateResponse
	if err := providers.DecodeJSON(p.GetName(), resp, &out); err != nil {
		return nil, err
	}
	// DeepLX 在响应体里另有状态码
	if out.Code != http.StatusOK {
		return nil, &providers.Error{
			Code:     providers.ErrCodeServer,
			Message:  fmt.Sprintf("code %d: %s", out.Code, out.Message),
			Provider: p.GetName(),
			Status:   out.Code,
		}
	}
	return &out, nil
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Text       string `json:"text"`
	SourceLang string `json:"source_lang,omitempty"`
	TargetLang string `json:"target_lang"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Code       int    `json:"code"`
	Message    string `json:"message,omitempty"`
	Data       string `json:"data"`
	SourceLang string `json:"source_lang,omitempty"`
}

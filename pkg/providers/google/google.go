// Package google Google Cloud Translation v2 提供商
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/retry"
)

// DefaultEndpoint Translation API v2 地址
const DefaultEndpoint = "https://translation.googleapis.com/language/translate/v2"

// maxSegments v2 接口单次请求的 q 条数上限
const maxSegments = 128

// Config Google Translate配置
type Config struct {
	providers.BaseConfig
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	config := Config{BaseConfig: providers.DefaultConfig()}
	config.APIEndpoint = DefaultEndpoint
	return config
}

// Provider Google Translate提供商
type Provider struct {
	config  Config
	retrier *retry.NetworkRetrier
}

var (
	_ providers.Provider        = (*Provider)(nil)
	_ providers.BatchTranslator = (*Provider)(nil)
)

// New 创建新的Google Translate提供商
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
	resp, err := p.translate(ctx, TranslateRequest{
		Q:      []string{req.Text},
		Source: sourceCode(req.SourceLanguage),
		Target: normalizeLanguageCode(req.TargetLanguage),
		Format: "text",
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data.Translations) == 0 {
		return nil, &providers.Error{Code: providers.ErrCodeEmptyResponse, Message: "no translation returned", Provider: p.GetName()}
	}
	t := resp.Data.Translations[0]
	return &providers.ProviderResponse{
		Text:           html.UnescapeString(t.TranslatedText),
		DetectedSource: t.DetectedSourceLanguage,
		Model:          "google-translate",
	}, nil
}

// TranslateBatch 通过多个 q 参数一次翻译多条文本
func (p *Provider) TranslateBatch(ctx context.Context, req *providers.BatchRequest) ([]providers.BatchItem, error) {
	resp, err := p.translate(ctx, TranslateRequest{
		Q:      req.Texts,
		Source: sourceCode(req.SourceLanguage),
		Target: normalizeLanguageCode(req.TargetLanguage),
		Format: "text",
	})
	if err != nil {
		return nil, err
	}

	items := make([]providers.BatchItem, len(req.Texts))
	for i := range items {
		if i >= len(resp.Data.Translations) {
			items[i].Err = fmt.Errorf("item %d: %w", i+1, providers.ErrBatchItemMissing)
			continue
		}
		items[i].Text = html.UnescapeString(resp.Data.Translations[i].TranslatedText)
	}
	return items, nil
}

// MaxBatchSize 单次请求的文本条数上限
func (p *Provider) MaxBatchSize() int {
	return maxSegments
}

// GetName 获取提供商名称
func (p *Provider) GetName() string {
	return "google"
}

// GetCapabilities 获取提供商能力
func (p *Provider) GetCapabilities() providers.Capabilities {
	return providers.Capabilities{
		MaxTextLength:  30000,
		SupportsBatch:  true,
		RequiresAPIKey: true,
	}
}

// HealthCheck 请求支持的语言列表
func (p *Provider) HealthCheck(ctx context.Context) error {
	resp, err := p.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		u := providers.Endpoint(p.config.APIEndpoint, "languages") + "?" + url.Values{"key": {p.config.APIKey}}.Encode()
		return http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	})
	if err != nil {
		return err
	}
	return providers.DecodeJSON(p.GetName(), resp, nil)
}

// translate 执行翻译请求
func (p *Provider) translate(ctx context.Context, tr TranslateRequest) (*TranslateResponse, error) {
	body, err := json.Marshal(tr)
	if err != nil {
		return nil, err
	}
	endpoint := p.config.APIEndpoint + "?" + url.Values{"key": {p.config.APIKey}}.Encode()

	resp, err := p.retrier.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range p.config.Headers {
			req.Header.Set(k, v)
		}
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("google request: %w", err)
	}

	var out TranslateResponse
	if err := providers.DecodeJSON(p.GetName(), resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func sourceCode(lang string) string {
	if providers.IsAuto(lang) {
		return ""
	}
	return normalizeLanguageCode(lang)
}

// normalizeLanguageCode 标准化语言代码，中文默认简体
func normalizeLanguageCode(lang string) string {
	lang = strings.ReplaceAll(lang, "_", "-")
	switch strings.ToLower(lang) {
	case "zh", "zh-hans", "zh-cn":
		return "zh-CN"
	case "zh-hant", "zh-tw":
		return "zh-TW"
	}
	return lang
}

// TranslateRequest 翻译请求
type TranslateRequest struct {
	Q      []string `json:"q"`
	Source string   `json:"source,omitempty"`
	Target string   `json:"target"`
	Format string   `json:"format"`
}

// TranslateResponse 翻译响应
type TranslateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText         string `json:"translatedText"`
			DetectedSourceLanguage string `json:"detectedSourceLanguage,omitempty"`
		} `json:"translations"`
	} `json:"data"`
}

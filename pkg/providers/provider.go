// Package providers 定义翻译提供商接口以及各提供商共用的提示词、批量标记和错误类型
package providers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// BaseConfig 基础配置
type BaseConfig struct {
	// API配置
	APIKey      string `json:"api_key,omitempty"`
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// 超时和重试
	Timeout    time.Duration `json:"timeout"`
	MaxRetries int           `json:"max_retries"`

	// 自定义头部
	Headers map[string]string `json:"headers,omitempty"`
}

// DefaultConfig 返回默认配置
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout:    2 * time.Minute,
		MaxRetries: 3,
		Headers:    make(map[string]string),
	}
}

// TranslationProvider 提供商基础接口
type TranslationProvider interface {
	// Translate 翻译单条文本
	Translate(ctx context.Context, req *ProviderRequest) (*ProviderResponse, error)

	// GetName 获取提供商名称
	GetName() string
}

// Provider 完整的提供商接口
type Provider interface {
	TranslationProvider

	// GetCapabilities 获取提供商能力
	GetCapabilities() Capabilities

	// HealthCheck 健康检查
	HealthCheck(ctx context.Context) error
}

// BatchTranslator 可以在一次请求中翻译多条文本的提供商
type BatchTranslator interface {
	// TranslateBatch 返回与 req.Texts 等长且顺序一致的结果
	TranslateBatch(ctx context.Context, req *BatchRequest) ([]BatchItem, error)

	// MaxBatchSize 单次请求最多包含的文本条数
	MaxBatchSize() int
}

// Capabilities 提供商能力
type Capabilities struct {
	SupportedLanguages []string `json:"supported_languages,omitempty"`
	MaxTextLength      int      `json:"max_text_length"`
	SupportsBatch      bool     `json:"supports_batch"`
	SupportsDomain     bool     `json:"supports_domain"`
	RequiresAPIKey     bool     `json:"requires_api_key"`
	IsLLM              bool     `json:"is_llm"`
}

// 错误码
const (
	ErrCodeRateLimit      = "rate_limit"
	ErrCodeTimeout        = "timeout"
	ErrCodeServer         = "server_error"
	ErrCodeAuth           = "auth_error"
	ErrCodeInvalidRequest = "invalid_request"
	ErrCodeEmptyResponse  = "empty_response"
	ErrCodeConfig         = "config_error"
)

// Error 提供商错误
type Error struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Provider string `json:"provider,omitempty"`
	Status   int    `json:"status,omitempty"`
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
	return e.Message
}

// IsRetryable 判断错误是否可重试
func (e *Error) IsRetryable() bool {
	switch e.Code {
	case ErrCodeRateLimit, ErrCodeTimeout, ErrCodeServer:
		return true
	default:
		return false
	}
}

// NewError 创建提供商错误
func NewError(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// StatusError 根据 HTTP 状态码构造错误，body 截断后放入消息
func StatusError(provider string, status int, body []byte) *Error {
	code := ErrCodeInvalidRequest
	switch {
	case status == http.StatusTooManyRequests:
		code = ErrCodeRateLimit
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = ErrCodeAuth
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		code = ErrCodeTimeout
	case status >= 500:
		code = ErrCodeServer
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return &Error{
		Code:     code,
		Message:  fmt.Sprintf("HTTP %d: %s", status, msg),
		Provider: provider,
		Status:   status,
	}
}

// ProviderRequest 提供商请求，语言使用规范化后的代码，源语言可以为 auto
type ProviderRequest struct {
	Text           string            `json:"text"`
	SourceLanguage string            `json:"source_language,omitempty"`
	TargetLanguage string            `json:"target_language,omitempty"`
	Domain         Domain            `json:"domain,omitempty"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// ProviderResponse 提供商响应
type ProviderResponse struct {
	Text           string `json:"text"`
	DetectedSource string `json:"detected_source,omitempty"`
	Model          string `json:"model,omitempty"`
	TokensIn       int    `json:"tokens_in,omitempty"`
	TokensOut      int    `json:"tokens_out,omitempty"`
}

// BatchRequest 批量请求
type BatchRequest struct {
	Texts          []string `json:"texts"`
	SourceLanguage string   `json:"source_language,omitempty"`
	TargetLanguage string   `json:"target_language,omitempty"`
	Domain         Domain   `json:"domain,omitempty"`
}

// BatchItem 批量结果中的一项，Err 非空表示该项没有得到译文
type BatchItem struct {
	Text string
	Err  error
}

// IsAuto 源语言是否为自动检测
func IsAuto(lang string) bool {
	return lang == "" || strings.EqualFold(lang, "auto")
}

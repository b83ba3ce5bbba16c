package translation

import (
	"context"
	"errors"
	"fmt"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

// 预定义错误
var (
	// ErrTranslationFailed 提供商没有返回可用的译文
	ErrTranslationFailed = errors.New("translation failed")

	// ErrInvalidLanguage 无法识别的语言
	ErrInvalidLanguage = errors.New("invalid language")
)

// 错误代码常量
const (
	ErrCodeConfig     = "CONFIG_ERROR"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeProvider   = "PROVIDER_ERROR"
	ErrCodeBatchParse = "BATCH_PARSE_ERROR"
	ErrCodeTimeout    = "TIMEOUT_ERROR"
	ErrCodeRateLimit  = "RATE_LIMIT_ERROR"
	ErrCodeCanceled   = "CANCELED"
)

// TranslationError 翻译错误
type TranslationError struct {
	Code    string // 错误代码
	Message string // 错误消息
	Cause   error  // 原因
	Retry   bool   // 是否可重试
}

// Error 实现error接口
func (e *TranslationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回原因错误
func (e *TranslationError) Unwrap() error {
	return e.Cause
}

// Is 所有翻译错误都匹配 ErrTranslationFailed
func (e *TranslationError) Is(target error) bool {
	return target == ErrTranslationFailed
}

// IsRetryable 是否可重试
func (e *TranslationError) IsRetryable() bool {
	return e.Retry
}

// NewTranslationError 创建翻译错误
func NewTranslationError(code, message string, cause error) *TranslationError {
	return &TranslationError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WrapError 按原因分类包装提供商返回的错误
func WrapError(err error, message string) *TranslationError {
	if err == nil {
		return nil
	}

	var te *TranslationError
	if errors.As(err, &te) {
		return te
	}

	code, retry := ErrCodeProvider, false
	var perr *providers.Error
	switch {
	case errors.Is(err, context.Canceled):
		code = ErrCodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code, retry = ErrCodeTimeout, true
	case errors.Is(err, providers.ErrBatchItemMissing):
		code = ErrCodeBatchParse
	case errors.As(err, &perr):
		retry = perr.IsRetryable()
		switch perr.Code {
		case providers.ErrCodeRateLimit:
			code = ErrCodeRateLimit
		case providers.ErrCodeConfig, providers.ErrCodeAuth:
			code = ErrCodeConfig
		case providers.ErrCodeTimeout:
			code = ErrCodeTimeout
		}
	}

	return &TranslationError{
		Code:    code,
		Message: message,
		Cause:   err,
		Retry:   retry,
	}
}

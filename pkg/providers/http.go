package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers/retry"
)

// NewRetrier 按基础配置创建 HTTP 重试器
func NewRetrier(cfg BaseConfig) *retry.NetworkRetrier {
	rc := retry.DefaultRetryConfig()
	if cfg.MaxRetries >= 0 {
		rc.MaxRetries = cfg.MaxRetries
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	return retry.NewNetworkRetrier(rc, &http.Client{Timeout: timeout})
}

// DecodeJSON 检查状态码并把响应体解码到 v，非 2xx 返回 *Error
func DecodeJSON(provider string, resp *http.Response, v any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Code: ErrCodeServer, Message: fmt.Sprintf("read response: %v", err), Provider: provider}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StatusError(provider, resp.StatusCode, body)
	}
	if v == nil {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &Error{Code: ErrCodeInvalidRequest, Message: fmt.Sprintf("decode response: %v", err), Provider: provider}
	}
	return nil
}

// Endpoint 拼接基础地址和路径
func Endpoint(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Package retry 为 REST 提供商提供带退避的 HTTP 重试
package retry

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// RetryConfig 重试配置
type RetryConfig struct {
	// 最大重试次数（不含首次请求）
	MaxRetries int `json:"max_retries"`

	// 网络错误额外允许的重试次数
	NetworkMaxRetries int `json:"network_max_retries"`

	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`

	// 退避因子（指数退避）
	BackoffFactor float64 `json:"backoff_factor"`

	// 网络错误的延迟通常更短
	NetworkInitialDelay time.Duration `json:"network_initial_delay"`
	NetworkMaxDelay     time.Duration `json:"network_max_delay"`
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:          3,
		NetworkMaxRetries:   5,
		InitialDelay:        1 * time.Second,
		MaxDelay:            30 * time.Second,
		BackoffFactor:       2.0,
		NetworkInitialDelay: 100 * time.Millisecond,
		NetworkMaxDelay:     5 * time.Second,
	}
}

// ErrorType 错误类型
type ErrorType int

const (
	ErrorTypeNone          ErrorType = iota
	ErrorTypeNetwork                 // 网络瞬时错误
	ErrorTypeRetryableHTTP           // 429
	ErrorTypeClientError             // 其他 4xx
	ErrorTypeServerError             // 5xx
	ErrorTypePermanent               // 永久性错误
)

// RequestFunc 每次尝试都重新构造请求，避免请求体在重试时已被读完
type RequestFunc func(ctx context.Context) (*http.Request, error)

// NetworkRetrier 网络重试器
type NetworkRetrier struct {
	config RetryConfig
	client *http.Client

	// sleep 可在测试中替换
	sleep func(ctx context.Context, d time.Duration) error
}

// NewNetworkRetrier 创建网络重试器
func NewNetworkRetrier(config RetryConfig, client *http.Client) *NetworkRetrier {
	if client == nil {
		client = http.DefaultClient
	}
	return &NetworkRetrier{
		config: config,
		client: client,
		sleep:  sleepContext,
	}
}

// WithSleep 替换等待函数
func (nr *NetworkRetrier) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *NetworkRetrier {
	nr.sleep = sleep
	return nr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do 执行请求，网络错误、429 和 5xx 会按退避策略重试
// 返回的响应可能是非 2xx（重试用尽或客户端错误），由调用方检查状态码
func (nr *NetworkRetrier) Do(ctx context.Context, newRequest RequestFunc) (*http.Response, error) {
	var (
		lastErr error
		total   int
		network int
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := newRequest(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := nr.client.Do(req)

		errorType := nr.classifyError(err, resp)
		if errorType == ErrorTypeNone {
			return resp, nil
		}

		isNetwork := errorType == ErrorTypeNetwork
		retry := false
		switch errorType {
		case ErrorTypeNetwork:
			retry = network < nr.config.NetworkMaxRetries && total < nr.config.MaxRetries+nr.config.NetworkMaxRetries
		case ErrorTypeServerError, ErrorTypeRetryableHTTP:
			retry = total < nr.config.MaxRetries
		}
		if !retry {
			if err != nil {
				return nil, err
			}
			return resp, nil
		}

		if resp != nil {
			drain(resp)
		}
		lastErr = err

		var delay time.Duration
		if isNetwork {
			delay = nr.calculateDelay(true, network)
			network++
		} else {
			delay = nr.calculateDelay(false, total)
		}
		total++

		if err := nr.sleep(ctx, delay); err != nil {
			if lastErr != nil {
				return nil, errors.Join(err, lastErr)
			}
			return nil, err
		}
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
}

// classifyError 分类错误
func (nr *NetworkRetrier) classifyError(err error, resp *http.Response) ErrorType {
	if err != nil {
		if IsNetworkError(err) {
			return ErrorTypeNetwork
		}
		return ErrorTypePermanent
	}

	switch {
	case resp.StatusCode >= 500:
		return ErrorTypeServerError
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorTypeRetryableHTTP
	case resp.StatusCode >= 400:
		return ErrorTypeClientError
	}
	return ErrorTypeNone
}

// IsNetworkError 判断是否为可重试的网络错误；上下文取消不算
func IsNetworkError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{
		"connection refused",
		"connection reset",
		"no such host",
		"broken pipe",
		"i/o timeout",
		"eof",
	} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// calculateDelay 指数退避，受最大延迟限制
func (nr *NetworkRetrier) calculateDelay(isNetworkError bool, retryCount int) time.Duration {
	delay, maxDelay := nr.config.InitialDelay, nr.config.MaxDelay
	if isNetworkError {
		delay, maxDelay = nr.config.NetworkInitialDelay, nr.config.NetworkMaxDelay
	}

	if retryCount > 0 {
		backoffFactor := nr.config.BackoffFactor
		if backoffFactor <= 1.0 {
			backoffFactor = 2.0
		}
		delay = time.Duration(float64(delay) * math.Pow(backoffFactor, float64(retryCount)))
	}

	if maxDelay > 0 && delay > maxDelay {
		delay = maxDelay
	}
	return delay
}

package translation

import (
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

// Options 单次批量翻译的语言与领域设置
type Options struct {
	SourceLang string
	TargetLang string
	Domain     providers.Domain
}

// Glossary 预定义译文，命中时不调用提供商
type Glossary interface {
	Lookup(text string) (string, bool)
	Applies(sourceLang, targetLang string) bool
}

// Option 编排器配置选项函数
type Option func(*serviceOptions)

// serviceOptions 编排器内部选项
type serviceOptions struct {
	cache     Cache
	glossary  Glossary
	itemPause time.Duration
	sleep     func(time.Duration)
	logger    *zap.Logger
	onResult  func(index int, r Result)
}

func defaultOptions() serviceOptions {
	return serviceOptions{
		itemPause: 100 * time.Millisecond,
		sleep:     time.Sleep,
		logger:    zap.NewNop(),
	}
}

// WithCache 设置缓存
func WithCache(cache Cache) Option {
	return func(o *serviceOptions) {
		o.cache = cache
	}
}

// WithGlossary 设置预定义译文
func WithGlossary(glossary Glossary) Option {
	return func(o *serviceOptions) {
		o.glossary = glossary
	}
}

// WithItemPause 设置逐条翻译时两次请求之间的间隔
func WithItemPause(d time.Duration) Option {
	return func(o *serviceOptions) {
		o.itemPause = d
	}
}

// WithSleep 替换等待函数，测试中用于跳过真实等待
func WithSleep(fn func(time.Duration)) Option {
	return func(o *serviceOptions) {
		if fn != nil {
			o.sleep = fn
		}
	}
}

// WithLogger 设置logger
func WithLogger(logger *zap.Logger) Option {
	return func(o *serviceOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithResultCallback 每条结果产生后回调
func WithResultCallback(fn func(index int, r Result)) Option {
	return func(o *serviceOptions) {
		o.onResult = fn
	}
}

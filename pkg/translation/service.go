package translation

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

// Result 单条文本的翻译结果
type Result struct {
	Success bool
	Text    string
	Err     string
}

// Stats 编排器累计统计
type Stats struct {
	Requests     int64 // 提供商调用次数，合并批量计为一次
	Translated   int64
	Failed       int64
	CacheHits    int64
	GlossaryHits int64
}

// Orchestrator 把一组有序文本交给提供商翻译，结果与输入一一对应
type Orchestrator struct {
	provider providers.TranslationProvider
	options  serviceOptions
	logger   *zap.Logger

	requests     atomic.Int64
	translated   atomic.Int64
	failed       atomic.Int64
	cacheHits    atomic.Int64
	glossaryHits atomic.Int64
}

// New 创建翻译编排器
func New(provider providers.TranslationProvider, opts ...Option) (*Orchestrator, error) {
	if provider == nil {
		return nil, NewTranslationError(ErrCodeConfig, "provider is nil", nil)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	return &Orchestrator{
		provider: provider,
		options:  options,
		logger:   options.logger.With(zap.String("provider", provider.GetName())),
	}, nil
}

// ProviderName 当前提供商名称
func (o *Orchestrator) ProviderName() string {
	return o.provider.GetName()
}

// Stats 返回累计统计
func (o *Orchestrator) Stats() Stats {
	return Stats{
		Requests:     o.requests.Load(),
		Translated:   o.translated.Load(),
		Failed:       o.failed.Load(),
		CacheHits:    o.cacheHits.Load(),
		GlossaryHits: o.glossaryHits.Load(),
	}
}

// TranslateBatch 翻译一组文本
// 空白文本直接成功并返回空串；提供商支持合并批量且待译条数不超过上限时一次提交，
// 否则逐条翻译并在请求之间暂停。单条失败不影响其他条目。
func (o *Orchestrator) TranslateBatch(ctx context.Context, texts []string, opts Options) []Result {
	results := make([]Result, len(texts))
	var pending []int

	useGlossary := o.options.glossary != nil && o.options.glossary.Applies(opts.SourceLang, opts.TargetLang)
	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			o.finish(i, &results[i], Result{Success: true})
			continue
		}
		if useGlossary {
			if v, ok := o.options.glossary.Lookup(text); ok {
				o.glossaryHits.Add(1)
				o.finish(i, &results[i], Result{Success: true, Text: v})
				continue
			}
		}
		if o.options.cache != nil {
			if v, ok := o.options.cache.Get(o.cacheKey(text, opts)); ok {
				o.cacheHits.Add(1)
				o.finish(i, &results[i], Result{Success: true, Text: v})
				continue
			}
		}
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return results
	}

	if bt, ok := o.provider.(providers.BatchTranslator); ok && len(pending) > 1 && len(pending) <= bt.MaxBatchSize() {
		o.translateCombined(ctx, bt, texts, pending, opts, results)
		return results
	}

	for n, i := range pending {
		if err := ctx.Err(); err != nil {
			o.fail(i, &results[i], texts[i], WrapError(err, "translation canceled"))
			continue
		}
		if n > 0 && o.options.itemPause > 0 {
			o.options.sleep(o.options.itemPause)
		}
		o.translateOne(ctx, texts[i], i, opts, &results[i])
	}
	return results
}

func (o *Orchestrator) translateOne(ctx context.Context, text string, index int, opts Options, result *Result) {
	o.requests.Add(1)
	start := time.Now()
	resp, err := o.provider.Translate(ctx, &providers.ProviderRequest{
		Text:           text,
		SourceLanguage: opts.SourceLang,
		TargetLanguage: opts.TargetLang,
		Domain:         opts.Domain,
	})
	if err == nil && (resp == nil || strings.TrimSpace(resp.Text) == "") {
		err = ErrTranslationFailed
	}
	if err != nil {
		o.fail(index, result, text, WrapError(err, "translate text"))
		return
	}

	o.logger.Debug("batch translated",
		zap.Int("index", index),
		zap.Int("chars", len(text)),
		zap.Duration("duration", time.Since(start)))
	o.store(text, resp.Text, opts)
	o.finish(index, result, Result{Success: true, Text: resp.Text})
}

func (o *Orchestrator) translateCombined(ctx context.Context, bt providers.BatchTranslator, texts []string, pending []int, opts Options, results []Result) {
	batch := make([]string, len(pending))
	for n, i := range pending {
		batch[n] = texts[i]
	}

	o.requests.Add(1)
	start := time.Now()
	items, err := bt.TranslateBatch(ctx, &providers.BatchRequest{
		Texts:          batch,
		SourceLanguage: opts.SourceLang,
		TargetLanguage: opts.TargetLang,
		Domain:         opts.Domain,
	})
	if err == nil && len(items) != len(batch) {
		err = NewTranslationError(ErrCodeBatchParse, "batch result count mismatch", nil)
	}
	if err != nil {
		terr := WrapError(err, "translate batch")
		for _, i := range pending {
			o.fail(i, &results[i], texts[i], terr)
		}
		return
	}

	o.logger.Debug("combined batch translated",
		zap.Int("items", len(batch)),
		zap.Duration("duration", time.Since(start)))
	for n, i := range pending {
		item := items[n]
		if item.Err == nil && strings.TrimSpace(item.Text) == "" {
			item.Err = ErrTranslationFailed
		}
		if item.Err != nil {
			o.fail(i, &results[i], texts[i], WrapError(item.Err, "translate batch item"))
			continue
		}
		o.store(texts[i], item.Text, opts)
		o.finish(i, &results[i], Result{Success: true, Text: item.Text})
	}
}

func (o *Orchestrator) cacheKey(text string, opts Options) string {
	return GenerateCacheKey(CacheKeyComponents{
		Provider:   o.provider.GetName(),
		SourceLang: opts.SourceLang,
		TargetLang: opts.TargetLang,
		Domain:     string(opts.Domain),
		Text:       text,
	})
}

func (o *Orchestrator) store(text, translated string, opts Options) {
	if o.options.cache == nil {
		return
	}
	if err := o.options.cache.Set(o.cacheKey(text, opts), translated); err != nil {
		o.logger.Warn("failed to write cache", zap.Error(err))
	}
}

func (o *Orchestrator) fail(index int, result *Result, text string, err *TranslationError) {
	o.failed.Add(1)
	level := o.logger.Warn
	if errors.Is(err, context.Canceled) {
		level = o.logger.Debug
	}
	level("翻译失败",
		zap.Int("index", index),
		zap.String("code", err.Code),
		zap.Bool("retryable", err.IsRetryable()),
		zap.Int("chars", len(text)),
		zap.Error(err))
	o.emit(index, result, Result{Success: false, Err: err.Error()})
}

func (o *Orchestrator) finish(index int, result *Result, r Result) {
	if r.Success {
		o.translated.Add(1)
	}
	o.emit(index, result, r)
}

func (o *Orchestrator) emit(index int, result *Result, r Result) {
	*result = r
	if o.options.onResult != nil {
		o.options.onResult(index, r)
	}
}

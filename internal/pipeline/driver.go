// Package pipeline 按顺序处理文件：读取、翻译、写出，并汇总结果
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
	"github.com/nerdneilsfield/go-office-translator/internal/formats"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
	"github.com/nerdneilsfield/go-office-translator/pkg/translation"
)

var (
	// ErrNoText 文档中没有可翻译的文本
	ErrNoText = errors.New("no translatable text")
	// ErrNothingTranslated 所有片段都翻译失败
	ErrNothingTranslated = errors.New("no fragment was translated")
)

// Translator 批量翻译有序文本，结果与输入一一对应
type Translator interface {
	TranslateBatch(ctx context.Context, texts []string, opts translation.Options) []translation.Result
}

// Formats 读取器与写入器的查找表
type Formats interface {
	ReaderFor(path string) (document.Reader, document.Format, error)
	Writer(kind formats.OutputKind, original document.Format) (document.Writer, error)
}

// Settings 一次运行的设置快照
type Settings struct {
	SourceLang     string
	TargetLang     string
	Domain         providers.Domain
	Output         formats.OutputKind
	OutputDir      string
	NameTemplate   string
	Transliterate  bool
	ChunkThreshold int
	ChunkSize      int
	ChunkPause     time.Duration
}

// DefaultSettings 默认设置：超过 10 个片段时每 10 个一组，组间暂停 1 秒
func DefaultSettings() Settings {
	return Settings{
		SourceLang:     translation.AutoDetect,
		TargetLang:     "en",
		Domain:         providers.DomainGeneral,
		Output:         formats.OutputNative,
		OutputDir:      "output",
		NameTemplate:   DefaultNameTemplate,
		ChunkThreshold: 10,
		ChunkSize:      10,
		ChunkPause:     time.Second,
	}
}

// Driver 顺序处理文件的后台工作者
type Driver struct {
	formats    Formats
	translator Translator
	settings   Settings
	logger     *zap.Logger

	sleep func(time.Duration)
	now   func() time.Time

	canceled atomic.Bool
}

// DriverOption 驱动配置选项
type DriverOption func(*Driver)

// WithSleep 替换组间暂停使用的等待函数
func WithSleep(fn func(time.Duration)) DriverOption {
	return func(d *Driver) {
		d.sleep = fn
	}
}

// WithClock 替换文件名中日期时间的来源
func WithClock(fn func() time.Time) DriverOption {
	return func(d *Driver) {
		d.now = fn
	}
}

// NewDriver 创建驱动
func NewDriver(f Formats, t Translator, settings Settings, logger *zap.Logger, opts ...DriverOption) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if settings.ChunkSize <= 0 {
		settings.ChunkSize = 10
	}
	if settings.ChunkThreshold <= 0 {
		settings.ChunkThreshold = settings.ChunkSize
	}
	d := &Driver{
		formats:    f,
		translator: t,
		settings:   settings,
		logger:     logger,
		sleep:      time.Sleep,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Cancel 请求停止，正在处理的文件会完成，之后的文件不再开始
func (d *Driver) Cancel() {
	d.canceled.Store(true)
}

// Start 在后台 goroutine 中运行，事件通道在完成事件之后关闭
func (d *Driver) Start(ctx context.Context, files []string) <-chan Event {
	events := make(chan Event, 16)
	go func() {
		defer close(events)
		d.Run(ctx, files, func(e Event) { events <- e })
	}()
	return events
}

// Run 同步处理所有文件，emit 可以为 nil
func (d *Driver) Run(ctx context.Context, files []string, emit func(Event)) *Report {
	if emit == nil {
		emit = func(Event) {}
	}
	report := &Report{Total: len(files), StartTime: d.now()}
	defer func() {
		report.EndTime = d.now()
		emit(Event{Kind: EventComplete, Total: report.Total, Succeeded: report.Succeeded(), Report: report})
	}()

	if err := os.MkdirAll(d.settings.OutputDir, 0o755); err != nil {
		report.fatal = fmt.Errorf("create output directory: %w", err)
		d.logger.Error("failed to create output directory", zap.String("dir", d.settings.OutputDir), zap.Error(err))
		emit(Event{Kind: EventLog, Message: report.fatal.Error()})
		return report
	}

	for i, file := range files {
		if d.canceled.Load() || ctx.Err() != nil {
			report.Canceled = true
			d.logger.Info("translation canceled", zap.Int("remaining", len(files)-i))
			emit(Event{Kind: EventLog, Message: "translation canceled"})
			break
		}

		name := filepath.Base(file)
		emit(Event{Kind: EventStart, File: file, Index: i, Total: len(files),
			Message: fmt.Sprintf("[%d/%d] %s", i+1, len(files), name)})

		result := d.processFile(ctx, file, func(done, total int) {
			emit(Event{Kind: EventFragments, File: file, Index: i, Done: done, Count: total})
		})
		report.Files = append(report.Files, result)

		if result.Succeeded() {
			emit(Event{Kind: EventLog, File: file, Message: fmt.Sprintf("%s -> %s (%d/%d)",
				name, filepath.Base(result.Output), result.Translated, result.Fragments)})
		} else {
			emit(Event{Kind: EventLog, File: file, Err: result.Err, Message: fmt.Sprintf("%s: %v", name, result.Err)})
		}
		emit(Event{Kind: EventProgress, File: file, Index: i, Processed: i + 1, Total: len(files), Succeeded: report.Succeeded()})
	}

	d.logger.Info("translation completed",
		zap.Int("total", report.Total),
		zap.Int("succeeded", report.Succeeded()),
		zap.Bool("canceled", report.Canceled))
	return report
}

// processFile 处理单个文件，所有错误都记录在结果中
func (d *Driver) processFile(ctx context.Context, file string, progress func(done, total int)) (result FileResult) {
	start := time.Now()
	result.Input = file
	logger := d.logger.With(zap.String("file", file))
	defer func() {
		result.Duration = time.Since(start)
	}()

	reader, format, err := d.formats.ReaderFor(file)
	if err != nil {
		logger.Warn("skipping unsupported file", zap.Error(err))
		result.Err = err
		return result
	}
	content, err := reader.Read(ctx, file)
	if err != nil {
		logger.Error("failed to read file", zap.Error(err))
		result.Err = err
		return result
	}
	result.Fragments = content.Len()
	if content.Len() == 0 {
		logger.Warn("no translatable text in file")
		result.Err = fmt.Errorf("%s: %w", file, ErrNoText)
		return result
	}

	result.Translated, result.Failed = d.translate(ctx, content, progress, logger)
	if result.Translated == 0 {
		result.Err = fmt.Errorf("%s: %w", file, ErrNothingTranslated)
		return result
	}

	writer, err := d.formats.Writer(d.settings.Output, format)
	if err != nil {
		result.Err = err
		return result
	}
	out := OutputPath(d.settings.OutputDir, d.settings.NameTemplate, file,
		d.settings.Output.Ext(format),
		NameFields{LangCode: translation.LanguageCode(d.settings.TargetLang), Time: d.now()},
		d.settings.Transliterate)

	written, err := writer.Write(ctx, content, out)
	if err != nil {
		logger.Error("failed to write file", zap.String("output", out), zap.Error(err))
		result.Err = err
		return result
	}
	result.Output = written
	logger.Info("file translated",
		zap.String("output", written),
		zap.Int("fragments", result.Fragments),
		zap.Int("failed", result.Failed))
	return result
}

// translate 分组翻译并按下标回填，失败的片段保留原文
func (d *Driver) translate(ctx context.Context, content *document.Content, progress func(done, total int), logger *zap.Logger) (translated, failed int) {
	texts := content.Texts()
	opts := translation.Options{
		SourceLang: d.settings.SourceLang,
		TargetLang: d.settings.TargetLang,
		Domain:     d.settings.Domain,
	}

	size := len(texts)
	if len(texts) > d.settings.ChunkThreshold {
		size = d.settings.ChunkSize
	}

	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		if start > 0 && d.settings.ChunkPause > 0 {
			d.sleep(d.settings.ChunkPause)
		}

		results := d.translator.TranslateBatch(ctx, texts[start:end], opts)
		for j := start; j < end; j++ {
			var r translation.Result
			if k := j - start; k < len(results) {
				r = results[k]
			} else {
				r = translation.Result{Err: "missing result"}
			}
			if r.Success && r.Text != "" {
				content.SetText(j, r.Text)
				translated++
				continue
			}
			failed++
			logger.Warn("failed to translate fragment, keeping original text",
				zap.Int("index", j),
				zap.String("location", content.Fragments[j].Location().String()),
				zap.String("error", r.Err))
		}
		progress(end, len(texts))
	}
	return translated, failed
}

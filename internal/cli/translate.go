package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/config"
	"github.com/nerdneilsfield/go-office-translator/internal/formats"
	"github.com/nerdneilsfield/go-office-translator/internal/history"
	"github.com/nerdneilsfield/go-office-translator/internal/logger"
	"github.com/nerdneilsfield/go-office-translator/internal/pipeline"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/factory"
	"github.com/nerdneilsfield/go-office-translator/pkg/translation"
)

// ErrAllFailed 没有任何文件翻译成功
var ErrAllFailed = errors.New("no file was translated")

// runSettings 由配置解析出的运行参数
type runSettings struct {
	pipeline pipeline.Settings
	provider string
}

// resolveSettings 规范化语言、领域和输出格式
func resolveSettings(cfg *config.Config) (runSettings, error) {
	t := cfg.Translation

	source, err := translation.NormalizeLanguage(t.SourceLang)
	if err != nil {
		return runSettings{}, fmt.Errorf("source language: %w", err)
	}
	target, err := translation.NormalizeLanguage(t.TargetLang)
	if err != nil {
		return runSettings{}, fmt.Errorf("target language: %w", err)
	}
	if target == translation.AutoDetect {
		return runSettings{}, fmt.Errorf("target language: %w: auto detection is only valid for the source", translation.ErrInvalidLanguage)
	}
	domain, err := providers.ParseDomain(t.Domain)
	if err != nil {
		return runSettings{}, err
	}
	kind, err := formats.ParseOutputKind(cfg.Output.Format)
	if err != nil {
		return runSettings{}, err
	}

	return runSettings{
		provider: strings.ToLower(strings.TrimSpace(t.Provider)),
		pipeline: pipeline.Settings{
			SourceLang:     source,
			TargetLang:     target,
			Domain:         domain,
			Output:         kind,
			OutputDir:      cfg.Output.Dir,
			NameTemplate:   cfg.Output.NameTemplate,
			Transliterate:  cfg.Output.SlugifyNames,
			ChunkThreshold: t.ChunkThreshold,
			ChunkSize:      t.ChunkSize,
			ChunkPause:     t.ChunkPause,
		},
	}, nil
}

// newOrchestrator 创建提供商、缓存和预定义译文
func newOrchestrator(cfg *config.Config, providerName string, log *zap.Logger) (*translation.Orchestrator, error) {
	provider, err := factory.CreateProvider(providerName, cfg.Provider(providerName))
	if err != nil {
		return nil, err
	}

	opts := []translation.Option{
		translation.WithLogger(log.Named("translation")),
		translation.WithItemPause(cfg.Translation.ItemPause),
	}

	cache, err := translation.NewCache(cfg.Translation.UseCache, cfg.Translation.CacheDir)
	if err != nil {
		log.Warn("cache unavailable, continuing without cache", zap.Error(err))
	} else if cache != nil {
		opts = append(opts, translation.WithCache(cache))
	}

	if cfg.Glossary != "" {
		glossary, err := config.LoadPredefinedTranslations(cfg.Glossary)
		if err != nil {
			return nil, err
		}
		opts = append(opts, translation.WithGlossary(glossary))
		log.Info("loaded predefined translations",
			zap.String("file", cfg.Glossary),
			zap.Int("entries", len(glossary.Translations)))
	}

	return translation.New(provider, opts...)
}

func runTranslate(cmd *cobra.Command, opts *rootOptions, files []string) error {
	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		return err
	}
	applyFlags(cmd, opts, cfg)

	log, err := logger.NewConsoleLogger(cfg.Debug, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	settings, err := resolveSettings(cfg)
	if err != nil {
		return err
	}
	orchestrator, err := newOrchestrator(cfg, settings.provider, log)
	if err != nil {
		return err
	}

	registry := formats.NewRegistry(log, formats.ResolveCapabilities(cfg.Output.PDFFonts, log))
	driver := pipeline.NewDriver(registry, orchestrator, settings.pipeline, log.Named("pipeline"))

	out := cmd.OutOrStdout()
	log.Info("starting translation",
		zap.Int("files", len(files)),
		zap.String("provider", orchestrator.ProviderName()),
		zap.String("source", settings.pipeline.SourceLang),
		zap.String("target", settings.pipeline.TargetLang),
		zap.String("domain", string(settings.pipeline.Domain)),
		zap.String("format", string(settings.pipeline.Output)))

	stop := cancelOnInterrupt(driver, out)
	defer stop()

	display := newConsoleProgress(out, !opts.noProgress && !color.NoColor)
	report := driver.Run(cmd.Context(), files, display.Handle)

	stats := orchestrator.Stats()
	log.Debug("translation statistics",
		zap.Int64("requests", stats.Requests),
		zap.Int64("translated", stats.Translated),
		zap.Int64("failed", stats.Failed),
		zap.Int64("cache_hits", stats.CacheHits),
		zap.Int64("glossary_hits", stats.GlossaryHits))

	if err := recordHistory(cfg, settings, orchestrator.ProviderName(), report, log); err != nil {
		log.Warn("failed to save translation history", zap.Error(err))
	}

	if !report.OK() {
		if err := report.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrAllFailed, err)
		}
		return ErrAllFailed
	}
	return nil
}

// cancelOnInterrupt 第一次 Ctrl+C 请求在当前文件结束后停止
func cancelOnInterrupt(d *pipeline.Driver, out io.Writer) func() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-sig:
			fmt.Fprintln(out, color.YellowString("正在停止，当前文件完成后结束..."))
			d.Cancel()
		case <-ctx.Done():
		}
	}()
	return func() {
		signal.Stop(sig)
		cancel()
	}
}

func recordHistory(cfg *config.Config, s runSettings, provider string, report *pipeline.Report, log *zap.Logger) error {
	if cfg.History.File == "" {
		return nil
	}
	store, err := history.Open(cfg.History.File, cfg.History.MaxItems, log)
	if err != nil {
		return err
	}

	record := history.Record{
		Timestamp:    report.StartTime,
		SourceLang:   s.pipeline.SourceLang,
		TargetLang:   s.pipeline.TargetLang,
		Domain:       string(s.pipeline.Domain),
		Provider:     provider,
		OutputFormat: string(s.pipeline.Output),
		SuccessCount: report.Succeeded(),
		Duration:     report.EndTime.Sub(report.StartTime),
		Canceled:     report.Canceled,
	}
	for _, f := range report.Files {
		record.Files = append(record.Files, history.FileRecord{Input: f.Input, Output: f.Output, Error: f.Error()})
	}
	_, err = store.Add(record)
	return err
}

// Package cli 实现 translator 命令行
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-office-translator/internal/config"
	"github.com/nerdneilsfield/go-office-translator/internal/formats"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/factory"
)

// rootOptions 命令行标志
type rootOptions struct {
	configFile   string
	sourceLang   string
	targetLang   string
	domain       string
	provider     string
	format       string
	nameTemplate string
	outputDir    string
	glossary     string
	noCache      bool
	slugify      bool
	noProgress   bool
	debug        bool
}

// NewRootCommand 创建根命令
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "translator [flags] file...",
		Short: "办公文档翻译工具",
		Long: fmt.Sprintf(`办公文档翻译工具：从 Excel、Word、PowerPoint 和 PDF 文件中提取文本，
交给翻译提供商翻译后，按原格式或指定格式写回。

支持的翻译提供商: %v
支持的输出格式: native (原格式), pdf, sheet (汇总表格), document (汇总文档)
文件名模板占位符: [원본명] [언어코드] [날짜] [시간]（或 [name] [lang] [date] [time]）`,
			factory.GetSupportedProviders()),
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, buildDate),
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd, opts, args)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&opts.sourceLang, "source", "s", "", "源语言，代码或名称 (默认 auto)")
	flags.StringVarP(&opts.targetLang, "target", "t", "", "目标语言，代码或名称 (默认 en)")
	flags.StringVarP(&opts.domain, "domain", "d", "", fmt.Sprintf("翻译领域 %v", providers.Domains))
	flags.StringVarP(&opts.provider, "provider", "p", "", "翻译提供商")
	flags.StringVarP(&opts.format, "format", "f", "", fmt.Sprintf("输出格式 %v", formats.OutputKinds))
	flags.StringVarP(&opts.nameTemplate, "name", "n", "", "输出文件名模板，例如 [원본명]_translated_[언어코드]")
	flags.StringVarP(&opts.outputDir, "output", "o", "", "输出目录")
	flags.StringVar(&opts.glossary, "glossary", "", "预定义译文 TOML 文件")
	flags.BoolVar(&opts.noCache, "no-cache", false, "不使用翻译缓存")
	flags.BoolVar(&opts.slugify, "slugify", false, "输出文件名转写为 ASCII")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "不显示进度条")

	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "配置文件路径 (默认 ~/"+config.ConfigName+".yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "输出调试日志")

	rootCmd.AddCommand(newHistoryCommand(opts))
	rootCmd.AddCommand(newProvidersCommand(opts))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

// applyFlags 使用命令行参数覆盖配置
func applyFlags(cmd *cobra.Command, opts *rootOptions, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("source") {
		cfg.Translation.SourceLang = opts.sourceLang
	}
	if flags.Changed("target") {
		cfg.Translation.TargetLang = opts.targetLang
	}
	if flags.Changed("domain") {
		cfg.Translation.Domain = opts.domain
	}
	if flags.Changed("provider") {
		cfg.Translation.Provider = opts.provider
	}
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("name") {
		cfg.Output.NameTemplate = opts.nameTemplate
	}
	if flags.Changed("output") {
		cfg.Output.Dir = opts.outputDir
	}
	if flags.Changed("glossary") {
		cfg.Glossary = opts.glossary
	}
	if flags.Changed("slugify") {
		cfg.Output.SlugifyNames = opts.slugify
	}
	if opts.noCache {
		cfg.Translation.UseCache = false
	}
	if opts.debug {
		cfg.Debug = true
	}
}

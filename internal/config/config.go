// Package config 读取和生成翻译器的 YAML 配置
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 TRANSLATOR_TRANSLATION_TARGET_LANG
const EnvPrefix = "TRANSLATOR"

// ConfigName 默认配置文件名（不含扩展名）
const ConfigName = ".office-translator"

// Config 保存翻译器的所有配置
type Config struct {
	Translation TranslationConfig         `mapstructure:"translation"`
	Output      OutputConfig              `mapstructure:"output"`
	Providers   map[string]ProviderConfig `mapstructure:"providers"`
	History     HistoryConfig             `mapstructure:"history"`
	Glossary    string                    `mapstructure:"glossary"` // 预定义译文的 TOML 文件
	Debug       bool                      `mapstructure:"debug"`
	LogFile     string                    `mapstructure:"log_file"`
}

// TranslationConfig 翻译设置
type TranslationConfig struct {
	SourceLang string `mapstructure:"source_lang"`
	TargetLang string `mapstructure:"target_lang"`
	Domain     string `mapstructure:"domain"`
	Provider   string `mapstructure:"provider"`

	// 片段数超过 ChunkThreshold 时按 ChunkSize 分块，块之间等待 ChunkPause
	ChunkThreshold int           `mapstructure:"chunk_threshold"`
	ChunkSize      int           `mapstructure:"chunk_size"`
	ChunkPause     time.Duration `mapstructure:"chunk_pause"`
	// 逐条翻译时每条之间的等待
	ItemPause time.Duration `mapstructure:"item_pause"`

	UseCache bool   `mapstructure:"use_cache"`
	CacheDir string `mapstructure:"cache_dir"` // 为空时只使用内存缓存
}

// OutputConfig 输出设置
type OutputConfig struct {
	Dir          string   `mapstructure:"dir"`
	NameTemplate string   `mapstructure:"name_template"`
	Format       string   `mapstructure:"format"`
	SlugifyNames bool     `mapstructure:"slugify_names"`
	PDFFonts     []string `mapstructure:"pdf_fonts"`
}

// ProviderConfig 单个翻译提供商的设置
type ProviderConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Endpoint    string        `mapstructure:"endpoint"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries"`
	BatchSize   int           `mapstructure:"batch_size"`
	Mode        string        `mapstructure:"mode"` // 仅 raw 使用：echo 或 reverse
}

// HistoryConfig 翻译历史设置
type HistoryConfig struct {
	File     string `mapstructure:"file"`
	MaxItems int    `mapstructure:"max_items"`
}

// 提供商密钥额外读取的通用环境变量
var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"deepl":  "DEEPL_API_KEY",
	"google": "GOOGLE_API_KEY",
}

// NewDefaultConfig 创建一个新的默认配置
func NewDefaultConfig() *Config {
	return &Config{
		Translation: TranslationConfig{
			SourceLang:     "auto",
			TargetLang:     "en",
			Domain:         "general",
			Provider:       "openai",
			ChunkThreshold: 10,
			ChunkSize:      10,
			ChunkPause:     time.Second,
			ItemPause:      100 * time.Millisecond,
			UseCache:       true,
			CacheDir:       getDefaultCacheDir(),
		},
		Output: OutputConfig{
			Dir:          "./output",
			NameTemplate: "[원본명]_translated_[언어코드]",
			Format:       "native",
		},
		Providers: map[string]ProviderConfig{
			"openai": {Model: "gpt-4", Temperature: 0.3, Timeout: 2 * time.Minute, MaxRetries: 3, BatchSize: 5},
			"ollama": {Endpoint: "http://localhost:11434/v1", Model: "llama3", Temperature: 0.3, Timeout: 5 * time.Minute, MaxRetries: 1, BatchSize: 5},
			"deepl":  {Timeout: time.Minute, MaxRetries: 3},
			"google": {Timeout: time.Minute, MaxRetries: 3},
			"libretranslate": {
				Endpoint: "https://libretranslate.com", Timeout: time.Minute, MaxRetries: 3,
			},
			"deeplx": {Endpoint: "http://localhost:1188/translate", Timeout: time.Minute, MaxRetries: 3},
			"raw":    {Mode: "echo"},
		},
		History: HistoryConfig{
			File:     filepath.Join(getDefaultDataDir(), "history.json"),
			MaxItems: 10,
		},
	}
}

// setDefaults 把默认配置写入 viper，使环境变量可以覆盖每一项
// 时长写成字符串，生成的配置文件里是 "1s" 而不是纳秒数
func setDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("translation.source_lang", d.Translation.SourceLang)
	v.SetDefault("translation.target_lang", d.Translation.TargetLang)
	v.SetDefault("translation.domain", d.Translation.Domain)
	v.SetDefault("translation.provider", d.Translation.Provider)
	v.SetDefault("translation.chunk_threshold", d.Translation.ChunkThreshold)
	v.SetDefault("translation.chunk_size", d.Translation.ChunkSize)
	v.SetDefault("translation.chunk_pause", d.Translation.ChunkPause.String())
	v.SetDefault("translation.item_pause", d.Translation.ItemPause.String())
	v.SetDefault("translation.use_cache", d.Translation.UseCache)
	v.SetDefault("translation.cache_dir", d.Translation.CacheDir)

	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.name_template", d.Output.NameTemplate)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.slugify_names", d.Output.SlugifyNames)
	v.SetDefault("output.pdf_fonts", d.Output.PDFFonts)

	for name, p := range d.Providers {
		prefix := "providers." + name + "."
		v.SetDefault(prefix+"api_key", p.APIKey)
		v.SetDefault(prefix+"endpoint", p.Endpoint)
		v.SetDefault(prefix+"model", p.Model)
		v.SetDefault(prefix+"temperature", p.Temperature)
		v.SetDefault(prefix+"timeout", p.Timeout.String())
		v.SetDefault(prefix+"max_retries", p.MaxRetries)
		v.SetDefault(prefix+"batch_size", p.BatchSize)
		v.SetDefault(prefix+"mode", p.Mode)
	}

	v.SetDefault("history.file", d.History.File)
	v.SetDefault("history.max_items", d.History.MaxItems)
	v.SetDefault("glossary", d.Glossary)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("log_file", d.LogFile)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for name, env := range providerKeyEnv {
		key := "providers." + name + ".api_key"
		_ = v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}
	return v
}

// LoadConfig 从文件加载配置；未指定路径且找不到配置文件时使用默认值
func LoadConfig(configPath string) (*Config, error) {
	v := newViper()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	t := c.Translation
	if t.ChunkThreshold < 1 || t.ChunkSize < 1 {
		return fmt.Errorf("translation.chunk_threshold and translation.chunk_size must be positive")
	}
	if t.ChunkPause < 0 || t.ItemPause < 0 {
		return fmt.Errorf("translation pauses must not be negative")
	}
	if strings.TrimSpace(t.TargetLang) == "" {
		return fmt.Errorf("translation.target_lang must be specified")
	}
	if c.History.MaxItems < 1 {
		return fmt.Errorf("history.max_items must be positive")
	}
	return nil
}

// Provider 返回提供商配置，名称大小写不敏感
func (c *Config) Provider(name string) ProviderConfig {
	return c.Providers[strings.ToLower(name)]
}

// WriteDefaultConfig 把默认配置写到 path，文件权限 0600（其中可能保存 API 密钥）
// 文件已存在且 force 为 false 时返回错误
func WriteDefaultConfig(path string, force bool) error {
	if path == "" {
		path = DefaultConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	var err error
	if force {
		err = v.WriteConfigAs(path)
	} else {
		err = v.SafeWriteConfigAs(path)
	}
	if err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

// DefaultConfigPath 家目录下的默认配置文件
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ConfigName + ".yaml"
	}
	return filepath.Join(home, ConfigName+".yaml")
}

// getDefaultCacheDir 获取默认缓存目录
func getDefaultCacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err == nil {
		return filepath.Join(cacheDir, "office-translator")
	}
	homeDir, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(homeDir, ".office-translator", "cache")
	}
	return "./translator-cache"
}

// getDefaultDataDir 历史记录等数据文件所在目录
func getDefaultDataDir() string {
	homeDir, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(homeDir, ".office-translator")
	}
	return "./.office-translator"
}

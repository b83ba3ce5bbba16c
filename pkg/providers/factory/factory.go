// Package factory 根据配置创建翻译提供商
package factory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/nerdneilsfield/go-office-translator/internal/config"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/deepl"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/deeplx"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/google"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/libretranslate"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/ollama"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/openai"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/raw"
)

// 需要密钥的提供商及其通用环境变量
var keyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"deepl":  "DEEPL_API_KEY",
	"google": "GOOGLE_API_KEY",
}

var aliases = map[string]string{
	"gpt":   "openai",
	"none":  "raw",
	"libre": "libretranslate",
}

// UnknownProviderError 未知的提供商名称，附带相近的候选
type UnknownProviderError struct {
	Name        string
	Suggestions []string
}

func (e *UnknownProviderError) Error() string {
	msg := fmt.Sprintf("unsupported provider type: %s", e.Name)
	if len(e.Suggestions) > 0 {
		msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(e.Suggestions, ", "))
	}
	return msg
}

// GetSupportedProviders 返回所有提供商名称，已排序
func GetSupportedProviders() []string {
	return []string{"deepl", "deeplx", "google", "libretranslate", "ollama", "openai", "raw"}
}

// CreateProvider 根据配置创建提供商；需要密钥的提供商缺少密钥时返回配置错误
func CreateProvider(name string, pc config.ProviderConfig) (providers.Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if alias, ok := aliases[name]; ok {
		name = alias
	}

	if env, ok := keyEnv[name]; ok && strings.TrimSpace(pc.APIKey) == "" {
		return nil, &providers.Error{
			Code:     providers.ErrCodeConfig,
			Message:  fmt.Sprintf("missing API key: set providers.%s.api_key or %s", name, env),
			Provider: name,
		}
	}

	base := providers.DefaultConfig()
	base.APIKey = pc.APIKey
	base.APIEndpoint = pc.Endpoint
	if pc.Timeout > 0 {
		base.Timeout = pc.Timeout
	}
	base.MaxRetries = pc.MaxRetries

	switch name {
	case "openai":
		cfg := openai.DefaultConfig()
		cfg.BaseConfig = base
		if pc.Model != "" {
			cfg.Model = pc.Model
		}
		if pc.Temperature > 0 {
			cfg.Temperature = pc.Temperature
		}
		if pc.BatchSize > 0 {
			cfg.BatchSize = pc.BatchSize
		}
		return openai.New(cfg), nil
	case "ollama":
		cfg := ollama.DefaultConfig()
		cfg.BaseConfig = base
		if pc.Model != "" {
			cfg.Model = pc.Model
		}
		if pc.Temperature > 0 {
			cfg.Temperature = float32(pc.Temperature)
		}
		if pc.BatchSize > 0 {
			cfg.BatchSize = pc.BatchSize
		}
		return ollama.New(cfg), nil
	case "deepl":
		return deepl.New(deepl.Config{BaseConfig: base}), nil
	case "google":
		return google.New(google.Config{BaseConfig: base}), nil
	case "libretranslate":
		return libretranslate.New(libretranslate.Config{BaseConfig: base}), nil
	case "deeplx":
		return deeplx.New(deeplx.Config{BaseConfig: base}), nil
	case "raw":
		mode := raw.Mode(strings.ToLower(pc.Mode))
		if mode != raw.ModeReverse {
			mode = raw.ModeEcho
		}
		return raw.New(raw.Config{Mode: mode, BatchSize: pc.BatchSize}), nil
	default:
		return nil, &UnknownProviderError{Name: name, Suggestions: Suggest(name)}
	}
}

// Suggest 返回与输入相近的提供商名称，按编辑距离排序
func Suggest(name string) []string {
	name = strings.ToLower(name)
	type candidate struct {
		name     string
		distance int
	}
	var found []candidate
	for _, p := range GetSupportedProviders() {
		d := fuzzy.LevenshteinDistance(name, p)
		if d <= 2 || (len(name) >= 3 && fuzzy.MatchFold(name, p)) {
			found = append(found, candidate{p, d})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].distance < found[j].distance })

	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.name
	}
	return out
}

// IsLLMProvider 判断是否是 LLM 提供商（使用领域提示词）
func IsLLMProvider(providerType string) bool {
	switch strings.ToLower(providerType) {
	case "openai", "ollama", "gpt":
		return true
	default:
		return false
	}
}

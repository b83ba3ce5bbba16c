package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// PredefinedTranslation 术语表：原文到译文的固定映射，命中时不调用提供商
//
//	source_lang = "ko"
//	target_lang = "en"
//	[translations]
//	"번역 결과" = "Translation result"
type PredefinedTranslation struct {
	SourceLang   string            `toml:"source_lang"`
	TargetLang   string            `toml:"target_lang"`
	Translations map[string]string `toml:"translations"`
}

// NewPredefinedTranslation 创建术语表
func NewPredefinedTranslation(sourceLang, targetLang string, translations map[string]string) *PredefinedTranslation {
	return &PredefinedTranslation{
		SourceLang:   sourceLang,
		TargetLang:   targetLang,
		Translations: translations,
	}
}

// LoadPredefinedTranslations 读取 TOML 术语表
func LoadPredefinedTranslations(path string) (*PredefinedTranslation, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("predefined translations file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read predefined translations file: %w", err)
	}

	translations := &PredefinedTranslation{}
	if err := toml.Unmarshal(content, translations); err != nil {
		return nil, fmt.Errorf("failed to unmarshal predefined translations: %w", err)
	}
	if translations.TargetLang == "" {
		return nil, fmt.Errorf("predefined translations file is missing target_lang")
	}
	if translations.SourceLang == "" {
		translations.SourceLang = "auto"
	}
	return translations, nil
}

// Lookup 按去掉首尾空白后的原文查找译文
func (p *PredefinedTranslation) Lookup(text string) (string, bool) {
	if p == nil {
		return "", false
	}
	v, ok := p.Translations[strings.TrimSpace(text)]
	return v, ok
}

// Applies 术语表是否适用于给定语言对，源语言 auto 匹配任意源语言
func (p *PredefinedTranslation) Applies(sourceLang, targetLang string) bool {
	if p == nil || !strings.EqualFold(p.TargetLang, targetLang) {
		return false
	}
	return strings.EqualFold(p.SourceLang, "auto") || strings.EqualFold(p.SourceLang, sourceLang)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
translation:
  target_lang: ja
  domain: tech
  chunk_pause: 2s
output:
  format: pdf
  pdf_fonts:
    - /fonts/a.ttf
providers:
  openai:
    api_key: sk-file
    model: gpt-4o
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "ja", cfg.Translation.TargetLang)
	assert.Equal(t, "auto", cfg.Translation.SourceLang)
	assert.Equal(t, "tech", cfg.Translation.Domain)
	assert.Equal(t, 2*time.Second, cfg.Translation.ChunkPause)
	assert.Equal(t, 100*time.Millisecond, cfg.Translation.ItemPause)
	assert.Equal(t, 10, cfg.Translation.ChunkSize)
	assert.Equal(t, "pdf", cfg.Output.Format)
	assert.Equal(t, []string{"/fonts/a.ttf"}, cfg.Output.PDFFonts)
	assert.Equal(t, "[원본명]_translated_[언어코드]", cfg.Output.NameTemplate)

	openai := cfg.Provider("OpenAI")
	assert.Equal(t, "sk-file", openai.APIKey)
	assert.Equal(t, "gpt-4o", openai.Model)
	assert.Equal(t, 0.3, openai.Temperature)
	assert.Equal(t, 2*time.Minute, openai.Timeout)
	assert.Equal(t, "http://localhost:11434/v1", cfg.Provider("ollama").Endpoint)
	assert.Equal(t, 10, cfg.History.MaxItems)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("TRANSLATOR_TRANSLATION_TARGET_LANG", "fr")
	t.Setenv("DEEPL_API_KEY", "deepl-env")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("translation:\n  target_lang: ja\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "fr", cfg.Translation.TargetLang)
	assert.Equal(t, "deepl-env", cfg.Provider("deepl").APIKey)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("translation:\n  chunk_size: 0\n"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefaultConfig(path, false))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Error(t, WriteDefaultConfig(path, false))
	assert.NoError(t, WriteDefaultConfig(path, true))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig().Translation, cfg.Translation)
	assert.Equal(t, "echo", cfg.Provider("raw").Mode)
}

func TestPredefinedTranslations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glossary.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
target_lang = "en"

[translations]
"번역 결과" = "Translation result"
`), 0o600))

	p, err := LoadPredefinedTranslations(path)
	require.NoError(t, err)
	assert.Equal(t, "auto", p.SourceLang)

	got, ok := p.Lookup("  번역 결과 ")
	assert.True(t, ok)
	assert.Equal(t, "Translation result", got)

	assert.True(t, p.Applies("ko", "EN"))
	assert.False(t, p.Applies("ko", "ja"))

	var nilGlossary *PredefinedTranslation
	_, ok = nilGlossary.Lookup("x")
	assert.False(t, ok)
}

package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-office-translator/internal/config"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

func TestCreateProvider(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.ProviderConfig
		want  string
		batch bool
	}{
		{"openai", config.ProviderConfig{APIKey: "sk"}, "openai", true},
		{"GPT", config.ProviderConfig{APIKey: "sk"}, "openai", true},
		{"ollama", config.ProviderConfig{}, "ollama", true},
		{"deepl", config.ProviderConfig{APIKey: "k:fx"}, "deepl", true},
		{"google", config.ProviderConfig{APIKey: "k"}, "google", true},
		{"libretranslate", config.ProviderConfig{}, "libretranslate", false},
		{"deeplx", config.ProviderConfig{}, "deeplx", false},
		{"none", config.ProviderConfig{Mode: "reverse"}, "raw", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CreateProvider(tt.name, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.GetName())
			_, ok := p.(providers.BatchTranslator)
			assert.Equal(t, tt.batch, ok)
		})
	}
}

func TestCreateProviderMissingKey(t *testing.T) {
	_, err := CreateProvider("deepl", config.ProviderConfig{})
	var perr *providers.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, providers.ErrCodeConfig, perr.Code)
	assert.Contains(t, perr.Message, "DEEPL_API_KEY")
}

func TestCreateProviderUnknownSuggests(t *testing.T) {
	_, err := CreateProvider("deeepl", config.ProviderConfig{})
	var uerr *UnknownProviderError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, []string{"deepl", "deeplx"}, uerr.Suggestions)
	assert.Contains(t, err.Error(), "did you mean deepl")

	assert.Equal(t, []string{"libretranslate"}, Suggest("libretrans"))
	assert.Empty(t, Suggest("zzzzzzzz"))
}

func TestIsLLMProvider(t *testing.T) {
	assert.True(t, IsLLMProvider("openai"))
	assert.True(t, IsLLMProvider("Ollama"))
	assert.False(t, IsLLMProvider("deepl"))
}

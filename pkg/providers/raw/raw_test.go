package raw

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

func TestEcho(t *testing.T) {
	p := New(DefaultConfig())
	resp, err := p.Translate(context.Background(), &providers.ProviderRequest{Text: "안녕하세요", TargetLanguage: "en"})
	require.NoError(t, err)
	assert.Equal(t, "안녕하세요", resp.Text)
}

func TestReverseBatchMatchesSingle(t *testing.T) {
	p := New(Config{Mode: ModeReverse})
	texts := []string{"abc", "줄 하나\n줄 둘", "", "Hello, world"}

	items, err := p.TranslateBatch(context.Background(), &providers.BatchRequest{Texts: texts, TargetLanguage: "ko"})
	require.NoError(t, err)
	require.Len(t, items, len(texts))

	for i, text := range texts {
		if text == "" {
			assert.Equal(t, "", items[i].Text)
			continue
		}
		single, err := p.Translate(context.Background(), &providers.ProviderRequest{Text: text, TargetLanguage: "ko"})
		require.NoError(t, err)
		assert.NoError(t, items[i].Err)
		assert.Equal(t, single.Text, items[i].Text)
	}
	assert.Equal(t, "cba", items[0].Text)
	assert.Equal(t, "둘 줄\n나하 줄", items[1].Text)
}

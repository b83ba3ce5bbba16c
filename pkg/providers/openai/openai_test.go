package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completion(content string) string {
	b, _ := json.Marshal(content)
	return fmt.Sprintf(`{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4",
		"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":%s}}],
		"usage":{"prompt_tokens":3,"completion_tokens":2,"total_tokens":5}}`, b)
}

// newTestProvider 启动模拟服务，reply 根据请求返回模型输出
func newTestProvider(t *testing.T, reply func(req chatRequest) string) *Provider {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completion(reply(req))))
	}))
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.APIKey = "sk-test"
	cfg.APIEndpoint = srv.URL
	cfg.MaxRetries = 0
	return New(cfg)
}

func TestTranslateUsesDomainPrompt(t *testing.T) {
	p := newTestProvider(t, func(req chatRequest) string {
		assert.Equal(t, "gpt-4", req.Model)
		assert.Equal(t, 0.3, req.Temperature)
		assert.Equal(t, providers.SingleMaxTokens, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, providers.SystemPrompt, req.Messages[0].Content)
		assert.Contains(t, req.Messages[1].Content, "기술 문서")
		assert.Contains(t, req.Messages[1].Content, "English로")
		assert.Contains(t, req.Messages[1].Content, "원문: 서버")
		return `"Server"`
	})

	resp, err := p.Translate(context.Background(), &providers.ProviderRequest{
		Text: "서버", SourceLanguage: "ko", TargetLanguage: "en", Domain: providers.DomainTech,
	})
	require.NoError(t, err)
	assert.Equal(t, "Server", resp.Text)
	assert.Equal(t, "gpt-4", resp.Model)
}

func TestTranslateBatchCombined(t *testing.T) {
	calls := 0
	p := newTestProvider(t, func(req chatRequest) string {
		calls++
		assert.Equal(t, providers.BatchMaxTokens, req.MaxTokens)
		assert.Contains(t, req.Messages[1].Content, "@@NODE_START_1@@\n하나\n@@NODE_END_1@@")
		assert.Contains(t, req.Messages[1].Content, "@@NODE_START_2@@\n둘\n@@NODE_END_2@@")
		return "@@NODE_START_2@@\ntwo\n@@NODE_END_2@@\n@@NODE_START_1@@\none\n@@NODE_END_1@@"
	})

	items, err := p.TranslateBatch(context.Background(), &providers.BatchRequest{
		Texts: []string{"하나", " ", "둘"}, TargetLanguage: "en",
	})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "one", items[0].Text)
	assert.Equal(t, "", items[1].Text)
	assert.NoError(t, items[1].Err)
	assert.Equal(t, "two", items[2].Text)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 5, p.MaxBatchSize())
}

func TestTranslateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIKey = "bad"
	cfg.APIEndpoint = srv.URL + "/"
	cfg.MaxRetries = 0

	_, err := New(cfg).Translate(context.Background(), &providers.ProviderRequest{Text: "x", TargetLanguage: "en"})
	var perr *providers.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, providers.ErrCodeAuth, perr.Code)
}

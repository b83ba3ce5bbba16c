package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

func TestTranslateBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k1", r.URL.Query().Get("key"))

		var req TranslateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"one", "two"}, req.Q)
		assert.Empty(t, req.Source)
		assert.Equal(t, "zh-CN", req.Target)

		_, _ = w.Write([]byte(`{"data":{"translations":[
			{"translatedText":"一","detectedSourceLanguage":"en"},
			{"translatedText":"&quot;二&quot;","detectedSourceLanguage":"en"}]}}`))
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIKey = "k1"
	cfg.APIEndpoint = srv.URL
	cfg.MaxRetries = 0
	p := New(cfg)

	items, err := p.TranslateBatch(context.Background(), &providers.BatchRequest{
		Texts: []string{"one", "two"}, SourceLanguage: "auto", TargetLanguage: "zh",
	})
	require.NoError(t, err)
	assert.Equal(t, "一", items[0].Text)
	assert.Equal(t, `"二"`, items[1].Text)
}

func TestTranslateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIEndpoint = srv.URL
	cfg.MaxRetries = 0

	_, err := New(cfg).Translate(context.Background(), &providers.ProviderRequest{Text: "x", TargetLanguage: "ko"})
	var perr *providers.Error
	require.ErrorAs(t, err, &perr)
	assert.True(t, perr.IsRetryable())
}

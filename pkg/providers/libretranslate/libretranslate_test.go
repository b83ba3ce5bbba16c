package libretranslate

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

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/translate":
			var req TranslateRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "auto", req.Source)
			assert.Equal(t, "es", req.Target)
			assert.Equal(t, "key", req.APIKey)
			_, _ = w.Write([]byte(`{"translatedText":"Hola","detectedLanguage":{"confidence":90,"language":"en"}}`))
		case "/languages":
			_, _ = w.Write([]byte(`[{"code":"en","name":"English"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.APIEndpoint = srv.URL + "/"
	cfg.APIKey = "key"
	cfg.MaxRetries = 0
	p := New(cfg)

	resp, err := p.Translate(context.Background(), &providers.ProviderRequest{
		Text: "Hello", SourceLanguage: "auto", TargetLanguage: "es",
	})
	require.NoError(t, err)
	assert.Equal(t, "Hola", resp.Text)
	assert.Equal(t, "en", resp.DetectedSource)
	assert.NoError(t, p.HealthCheck(context.Background()))
}

func TestNormalizeLanguageCode(t *testing.T) {
	assert.Equal(t, "zh", normalizeLanguageCode("zh-Hans"))
	assert.Equal(t, "zt", normalizeLanguageCode("zh-Hant"))
	assert.Equal(t, "pt", normalizeLanguageCode("pt_BR"))
}

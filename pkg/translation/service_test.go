package translation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/raw"
)

// singleOnly 隐藏底层提供商的合并批量能力
type singleOnly struct {
	providers.TranslationProvider
}

type stubProvider struct {
	calls []string
	fail  map[string]error
}

func (p *stubProvider) Translate(_ context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	p.calls = append(p.calls, req.Text)
	if err := p.fail[req.Text]; err != nil {
		return nil, err
	}
	return &providers.ProviderResponse{Text: strings.ToUpper(req.Text)}, nil
}

func (p *stubProvider) GetName() string { return "stub" }

type stubGlossary map[string]string

func (g stubGlossary) Lookup(text string) (string, bool) {
	v, ok := g[strings.TrimSpace(text)]
	return v, ok
}

func (g stubGlossary) Applies(_, targetLang string) bool { return targetLang == "en" }

func noSleep(time.Duration) {}

func newTestOrchestrator(t *testing.T, p providers.TranslationProvider, opts ...Option) *Orchestrator {
	t.Helper()
	opts = append([]Option{WithLogger(zap.NewNop()), WithSleep(noSleep)}, opts...)
	o, err := New(p, opts...)
	require.NoError(t, err)
	return o
}

func texts(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Text
	}
	return out
}

func TestNewRequiresProvider(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrTranslationFailed)
}

func TestCombinedBatchMatchesIndividual(t *testing.T) {
	input := []string{"첫 번째 문장", "Second line\nwith break", "셋"}
	opts := Options{SourceLang: "auto", TargetLang: "en", Domain: providers.DomainGeneral}
	reverse := raw.New(raw.Config{Mode: raw.ModeReverse})

	combined := newTestOrchestrator(t, reverse)
	batchResults := combined.TranslateBatch(context.Background(), input, opts)
	assert.Equal(t, int64(1), combined.Stats().Requests)

	individual := newTestOrchestrator(t, singleOnly{reverse})
	singleResults := individual.TranslateBatch(context.Background(), input, opts)
	assert.Equal(t, int64(3), individual.Stats().Requests)

	require.Len(t, batchResults, 3)
	for i := range input {
		assert.True(t, batchResults[i].Success, batchResults[i].Err)
		assert.True(t, singleResults[i].Success, singleResults[i].Err)
	}
	assert.Equal(t, texts(singleResults), texts(batchResults))
	assert.Equal(t, "셋", batchResults[2].Text)
	assert.Equal(t, "장문 째번 첫", batchResults[0].Text)
}

func TestBatchLargerThanLimitFallsBackToItems(t *testing.T) {
	reverse := raw.New(raw.Config{Mode: raw.ModeReverse, BatchSize: 2})
	o := newTestOrchestrator(t, reverse)

	results := o.TranslateBatch(context.Background(), []string{"ab", "cd", "ef"}, Options{TargetLang: "en"})
	assert.Equal(t, []string{"ba", "dc", "fe"}, texts(results))
	assert.Equal(t, int64(3), o.Stats().Requests)
}

func TestEmptyTextSkipsProvider(t *testing.T) {
	p := &stubProvider{}
	o := newTestOrchestrator(t, p)

	results := o.TranslateBatch(context.Background(), []string{"", "   ", "hi"}, Options{TargetLang: "en"})
	require.Len(t, results, 3)
	assert.Equal(t, Result{Success: true}, results[0])
	assert.Equal(t, Result{Success: true}, results[1])
	assert.Equal(t, Result{Success: true, Text: "HI"}, results[2])
	assert.Equal(t, []string{"hi"}, p.calls)
}

func TestItemFailureIsIsolated(t *testing.T) {
	p := &stubProvider{fail: map[string]error{
		"c": providers.NewError(providers.ErrCodeRateLimit, "slow down"),
	}}
	var paused []time.Duration
	o := newTestOrchestrator(t, p,
		WithItemPause(50*time.Millisecond),
		WithSleep(func(d time.Duration) { paused = append(paused, d) }))

	results := o.TranslateBatch(context.Background(), []string{"a", "b", "c", "d", "e"}, Options{TargetLang: "en"})
	require.Len(t, results, 5)
	for i, want := range []string{"A", "B", "", "D", "E"} {
		assert.Equal(t, want, results[i].Text)
	}
	assert.False(t, results[2].Success)
	assert.Contains(t, results[2].Err, ErrCodeRateLimit)
	assert.Len(t, paused, 4)

	stats := o.Stats()
	assert.Equal(t, int64(4), stats.Translated)
	assert.Equal(t, int64(1), stats.Failed)
}

func TestEmptyProviderResponseFails(t *testing.T) {
	p := &stubProvider{}
	o := newTestOrchestrator(t, p)
	results := o.TranslateBatch(context.Background(), []string{"\t"}, Options{TargetLang: "en"})
	assert.True(t, results[0].Success)

	emptyReply := providerFunc(func(string) (string, error) { return " ", nil })
	o = newTestOrchestrator(t, emptyReply)
	results = o.TranslateBatch(context.Background(), []string{"x"}, Options{TargetLang: "en"})
	assert.False(t, results[0].Success)
}

type providerFunc func(string) (string, error)

func (f providerFunc) Translate(_ context.Context, req *providers.ProviderRequest) (*providers.ProviderResponse, error) {
	text, err := f(req.Text)
	if err != nil {
		return nil, err
	}
	return &providers.ProviderResponse{Text: text}, nil
}

func (f providerFunc) GetName() string { return "func" }

func TestGlossaryAndCacheShortCircuit(t *testing.T) {
	p := &stubProvider{}
	cache := NewMemoryCache()
	o := newTestOrchestrator(t, p,
		WithGlossary(stubGlossary{"회사": "Company"}),
		WithCache(cache))
	opts := Options{SourceLang: "ko", TargetLang: "en"}

	first := o.TranslateBatch(context.Background(), []string{" 회사 ", "report"}, opts)
	assert.Equal(t, []string{"Company", "REPORT"}, texts(first))
	assert.Equal(t, []string{"report"}, p.calls)

	second := o.TranslateBatch(context.Background(), []string{"report"}, opts)
	assert.Equal(t, []string{"REPORT"}, texts(second))
	assert.Equal(t, []string{"report"}, p.calls)

	stats := o.Stats()
	assert.Equal(t, int64(1), stats.GlossaryHits)
	assert.Equal(t, int64(1), stats.CacheHits)

	// 目标语言不匹配时术语表不生效
	p.calls = nil
	third := o.TranslateBatch(context.Background(), []string{"회사"}, Options{TargetLang: "ja"})
	assert.Equal(t, []string{"회사"}, p.calls)
	assert.Equal(t, "회사", third[0].Text)
}

func TestCombinedBatchErrors(t *testing.T) {
	t.Run("whole batch fails", func(t *testing.T) {
		o := newTestOrchestrator(t, &failingBatch{err: providers.NewError(providers.ErrCodeAuth, "bad key")})
		results := o.TranslateBatch(context.Background(), []string{"a", "b"}, Options{TargetLang: "en"})
		for _, r := range results {
			assert.False(t, r.Success)
			assert.Contains(t, r.Err, ErrCodeConfig)
		}
	})

	t.Run("missing item fails alone", func(t *testing.T) {
		o := newTestOrchestrator(t, &failingBatch{items: []providers.BatchItem{
			{Text: "A"},
			{Err: providers.ErrBatchItemMissing},
		}})
		results := o.TranslateBatch(context.Background(), []string{"a", "b"}, Options{TargetLang: "en"})
		assert.Equal(t, Result{Success: true, Text: "A"}, results[0])
		assert.False(t, results[1].Success)
		assert.Contains(t, results[1].Err, ErrCodeBatchParse)
	})

	t.Run("short result", func(t *testing.T) {
		o := newTestOrchestrator(t, &failingBatch{items: []providers.BatchItem{{Text: "A"}}})
		results := o.TranslateBatch(context.Background(), []string{"a", "b"}, Options{TargetLang: "en"})
		assert.False(t, results[0].Success)
		assert.False(t, results[1].Success)
	})
}

type failingBatch struct {
	stubProvider
	items []providers.BatchItem
	err   error
}

func (f *failingBatch) TranslateBatch(context.Context, *providers.BatchRequest) ([]providers.BatchItem, error) {
	return f.items, f.err
}

func (f *failingBatch) MaxBatchSize() int { return 5 }

func TestCanceledContextFailsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := providerFunc(func(s string) (string, error) {
		cancel()
		return s + "!", nil
	})
	var seen []int
	o := newTestOrchestrator(t, p, WithResultCallback(func(i int, _ Result) { seen = append(seen, i) }))

	results := o.TranslateBatch(ctx, []string{"a", "b", "c"}, Options{TargetLang: "en"})
	assert.Equal(t, Result{Success: true, Text: "a!"}, results[0])
	assert.False(t, results[1].Success)
	assert.False(t, results[2].Success)
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  string
		retry bool
	}{
		{"rate limit", providers.NewError(providers.ErrCodeRateLimit, "x"), ErrCodeRateLimit, true},
		{"server", providers.NewError(providers.ErrCodeServer, "x"), ErrCodeProvider, true},
		{"auth", providers.NewError(providers.ErrCodeAuth, "x"), ErrCodeConfig, false},
		{"deadline", context.DeadlineExceeded, ErrCodeTimeout, true},
		{"canceled", context.Canceled, ErrCodeCanceled, false},
		{"missing", providers.ErrBatchItemMissing, ErrCodeBatchParse, false},
		{"plain", errors.New("boom"), ErrCodeProvider, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapError(tt.err, "msg")
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.retry, got.IsRetryable())
			assert.ErrorIs(t, got, tt.err)
			assert.ErrorIs(t, got, ErrTranslationFailed)
		})
	}
	assert.Nil(t, WrapError(nil, "msg"))
}

package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
	"github.com/nerdneilsfield/go-office-translator/internal/formats"
	"github.com/nerdneilsfield/go-office-translator/internal/formats/xlsx"
	"github.com/nerdneilsfield/go-office-translator/pkg/translation"
)

// upperTranslator 把文本转为大写，fail 中的文本返回失败
type upperTranslator struct {
	mu       sync.Mutex
	fail     map[string]bool
	batches  []int
	onCall   func()
	received []translation.Options
}

func (u *upperTranslator) TranslateBatch(_ context.Context, texts []string, opts translation.Options) []translation.Result {
	u.mu.Lock()
	u.batches = append(u.batches, len(texts))
	u.received = append(u.received, opts)
	u.mu.Unlock()
	if u.onCall != nil {
		u.onCall()
	}

	out := make([]translation.Result, len(texts))
	for i, s := range texts {
		if u.fail[s] {
			out[i] = translation.Result{Err: "provider error"}
			continue
		}
		out[i] = translation.Result{Success: true, Text: strings.ToUpper(s)}
	}
	return out
}

func newRegistry(t *testing.T) *formats.Registry {
	t.Helper()
	logger := zap.NewNop()
	return formats.NewRegistry(logger, formats.ResolveCapabilities([]string{filepath.Join(t.TempDir(), "none.ttf")}, logger))
}

// writeWorkbook 生成一列文本的工作簿
func writeWorkbook(t *testing.T, dir, name string, texts []string) string {
	t.Helper()
	content := document.New(document.Tabular, document.FormatXLSX)
	for i, s := range texts {
		content.Add(s, document.CellLocation{Sheet: "Data", Row: i + 1, Column: 1}, document.Formatting{})
	}
	path := filepath.Join(dir, name)
	_, err := xlsx.NewWriter(zap.NewNop()).Write(context.Background(), content, path)
	require.NoError(t, err)
	return path
}

func readBack(t *testing.T, path string) *document.Content {
	t.Helper()
	c, err := xlsx.NewReader(zap.NewNop()).Read(context.Background(), path)
	require.NoError(t, err)
	return c
}

func testSettings(dir string) Settings {
	s := DefaultSettings()
	s.OutputDir = filepath.Join(dir, "out")
	s.SourceLang = "ko"
	s.TargetLang = "en"
	return s
}

func noSleep(time.Duration) {}

func TestDriverPreservesOrderAndLocations(t *testing.T) {
	dir := t.TempDir()
	texts := []string{"alpha", "beta", "gamma", "delta", "epsilon"}
	input := writeWorkbook(t, dir, "report.xlsx", texts)
	before := readBack(t, input)

	tr := &upperTranslator{}
	d := NewDriver(newRegistry(t), tr, testSettings(dir), zap.NewNop(), WithSleep(noSleep))
	report := d.Run(context.Background(), []string{input}, nil)

	require.True(t, report.OK(), report.Err())
	require.Len(t, report.Files, 1)
	out := report.Files[0].Output
	assert.Equal(t, filepath.Join(dir, "out", "report_translated_en.xlsx"), out)

	after := readBack(t, out)
	require.Equal(t, before.Len(), after.Len())
	for i := range before.Fragments {
		assert.Equal(t, strings.ToUpper(texts[i]), after.Fragments[i].Text)
		assert.Equal(t, before.Fragments[i].Location(), after.Fragments[i].Location())
	}
	assert.Equal(t, []int{5}, tr.batches)
	assert.Equal(t, translation.Options{SourceLang: "ko", TargetLang: "en", Domain: "general"}, tr.received[0])
}

func TestDriverKeepsOriginalOnFragmentFailure(t *testing.T) {
	dir := t.TempDir()
	texts := []string{"one", "two", "three", "four", "five"}
	input := writeWorkbook(t, dir, "partial.xlsx", texts)

	tr := &upperTranslator{fail: map[string]bool{"three": true}}
	core, logs := observer.New(zapcore.WarnLevel)
	report := NewDriver(newRegistry(t), tr, testSettings(dir), zap.New(core)).Run(context.Background(), []string{input}, nil)
	require.True(t, report.OK())

	warnings := logs.FilterMessage("failed to translate fragment, keeping original text").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, int64(2), warnings[0].ContextMap()["index"])

	f := report.Files[0]
	assert.Equal(t, 4, f.Translated)
	assert.Equal(t, 1, f.Failed)
	assert.Equal(t, []string{"ONE", "TWO", "three", "FOUR", "FIVE"}, readBack(t, f.Output).Texts())
}

func TestDriverChunksLargeDocuments(t *testing.T) {
	dir := t.TempDir()
	texts := make([]string, 23)
	for i := range texts {
		texts[i] = "text " + string(rune('a'+i))
	}
	input := writeWorkbook(t, dir, "big.xlsx", texts)

	var pauses []time.Duration
	var progress [][2]int
	tr := &upperTranslator{}
	d := NewDriver(newRegistry(t), tr, testSettings(dir), zap.NewNop(),
		WithSleep(func(p time.Duration) { pauses = append(pauses, p) }))
	report := d.Run(context.Background(), []string{input}, func(e Event) {
		if e.Kind == EventFragments {
			progress = append(progress, [2]int{e.Done, e.Count})
		}
	})

	require.True(t, report.OK())
	assert.Equal(t, []int{10, 10, 3}, tr.batches)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, pauses)
	assert.Equal(t, [][2]int{{10, 23}, {20, 23}, {23, 23}}, progress)
	assert.Equal(t, "TEXT W", readBack(t, report.Files[0].Output).Texts()[22])
}

func TestDriverContinuesAfterFileErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeWorkbook(t, dir, "good.xlsx", []string{"hello"})
	unsupported := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unsupported, []byte("hi"), 0o644))
	missing := filepath.Join(dir, "missing.docx")

	var logs []string
	var final Event
	report := NewDriver(newRegistry(t), &upperTranslator{}, testSettings(dir), zap.NewNop()).
		Run(context.Background(), []string{unsupported, missing, good}, func(e Event) {
			switch e.Kind {
			case EventLog:
				logs = append(logs, e.Message)
			case EventComplete:
				final = e
			}
		})

	require.Len(t, report.Files, 3)
	assert.ErrorIs(t, report.Files[0].Err, document.ErrUnsupportedFormat)
	assert.ErrorIs(t, report.Files[1].Err, document.ErrNotFound)
	assert.True(t, report.Files[2].Succeeded())
	assert.Equal(t, "1 of 3 files succeeded.", report.Summary())
	assert.True(t, report.OK())
	assert.Equal(t, []string{filepath.Join(dir, "out", "good_translated_en.xlsx")}, report.Outputs())
	assert.ErrorIs(t, report.Err(), document.ErrNotFound)
	assert.NotEmpty(t, logs)
	assert.Equal(t, 1, final.Succeeded)
	assert.Same(t, report, final.Report)
}

func TestDriverFailsWhenNothingTranslated(t *testing.T) {
	dir := t.TempDir()
	input := writeWorkbook(t, dir, "x.xlsx", []string{"a", "b"})
	tr := &upperTranslator{fail: map[string]bool{"a": true, "b": true}}

	report := NewDriver(newRegistry(t), tr, testSettings(dir), zap.NewNop()).Run(context.Background(), []string{input}, nil)
	assert.False(t, report.OK())
	assert.ErrorIs(t, report.Files[0].Err, ErrNothingTranslated)
	assert.Equal(t, "0 of 1 files succeeded.", report.Summary())
}

func TestDriverCancelStopsBeforeNextFile(t *testing.T) {
	dir := t.TempDir()
	first := writeWorkbook(t, dir, "first.xlsx", []string{"a"})
	second := writeWorkbook(t, dir, "second.xlsx", []string{"b"})

	tr := &upperTranslator{}
	d := NewDriver(newRegistry(t), tr, testSettings(dir), zap.NewNop())
	tr.onCall = d.Cancel

	report := d.Run(context.Background(), []string{first, second}, nil)
	assert.True(t, report.Canceled)
	require.Len(t, report.Files, 1)
	assert.True(t, report.Files[0].Succeeded())
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, "1 of 2 files succeeded.", report.Summary())
}

func TestDriverOutputDirFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	s := testSettings(dir)
	s.OutputDir = filepath.Join(blocker, "out")
	report := NewDriver(newRegistry(t), &upperTranslator{}, s, zap.NewNop()).Run(context.Background(), []string{"a.xlsx"}, nil)
	assert.False(t, report.OK())
	assert.Empty(t, report.Files)
	assert.Error(t, report.Err())
}

func TestDriverStartStreamsEvents(t *testing.T) {
	dir := t.TempDir()
	input := writeWorkbook(t, dir, "a.xlsx", []string{"hi"})

	s := testSettings(dir)
	s.Output = formats.OutputDocument
	d := NewDriver(newRegistry(t), &upperTranslator{}, s, zap.NewNop())

	var kinds []EventKind
	var report *Report
	for e := range d.Start(context.Background(), []string{input}) {
		kinds = append(kinds, e.Kind)
		if e.Kind == EventComplete {
			report = e.Report
		}
	}
	require.NotNil(t, report)
	assert.Equal(t, EventComplete, kinds[len(kinds)-1])
	assert.Contains(t, kinds, EventProgress)
	assert.Equal(t, ".docx", filepath.Ext(report.Outputs()[0]))
}

package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

// glyphs 把一行文本拆成逐字符的字形，每个字符宽 6pt
func glyphs(s string, x, y, size float64) []pdf.Text {
	out := make([]pdf.Text, 0, len(s))
	for _, r := range s {
		out = append(out, pdf.Text{Font: "Helvetica", FontSize: size, X: x, Y: y, W: 6, S: string(r)})
		x += 6
	}
	return out
}

type fakeSource struct {
	pages map[int][]pdf.Text
	fail  map[int]error
	panic map[int]bool
	total int
}

func (s fakeSource) NumPage() int {
	return s.total
}

func (s fakeSource) Page(n int) ([]pdf.Text, error) {
	if s.panic[n] {
		panic("malformed content stream")
	}
	if err := s.fail[n]; err != nil {
		return nil, err
	}
	return s.pages[n], nil
}

func concat(parts ...[]pdf.Text) []pdf.Text {
	var out []pdf.Text
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func TestSplitBlocks(t *testing.T) {
	// 基线间距 14 视为同一段落，间距 40 超过 1.8 倍字号
	page := concat(
		glyphs("second line", 50, 686, 12),
		glyphs("First line", 50, 700, 12),
		glyphs("New paragraph", 50, 646, 12),
	)

	blocks := splitBlocks(page)
	require.Len(t, blocks, 2)
	assert.Equal(t, "First line\nsecond line", blocks[0].Text)
	assert.Equal(t, "New paragraph", blocks[1].Text)
	assert.Equal(t, 12.0, blocks[1].FontSize)
	assert.Equal(t, "Helvetica", blocks[1].Font)
}

func TestRowTextInsertsWordGaps(t *testing.T) {
	page := concat(
		glyphs("world", 100, 500, 10),
		glyphs("Hello", 50, 500.5, 10),
	)
	rows := groupRows(page)
	require.Len(t, rows, 1)
	assert.Equal(t, "Hello world", rows[0].text())
}

func TestSplitBlocksEmptyPage(t *testing.T) {
	assert.Empty(t, splitBlocks(nil))
	assert.Empty(t, splitBlocks([]pdf.Text{{S: ""}}))
}

func TestExtractSkipsFailedPages(t *testing.T) {
	src := fakeSource{
		total: 4,
		pages: map[int][]pdf.Text{
			1: glyphs("Page one", 50, 700, 12),
			4: concat(glyphs("Top", 50, 700, 12), glyphs("Bottom", 50, 600, 12)),
		},
		fail:  map[int]error{2: errors.New("bad xref")},
		panic: map[int]bool{3: true},
	}

	r := NewReader(zap.NewNop())
	content, err := r.extract(context.Background(), "test.pdf", src)
	require.NoError(t, err)

	assert.Equal(t, []string{"Page one", "Top", "Bottom"}, content.Texts())
	assert.Equal(t, document.PageLocation{Page: 1, Paragraph: 0}, content.Fragments[0].Location())
	assert.Equal(t, document.PageLocation{Page: 4, Paragraph: 0}, content.Fragments[1].Location())
	assert.Equal(t, document.PageLocation{Page: 4, Paragraph: 1}, content.Fragments[2].Location())
}

func TestExtractHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := fakeSource{total: 1, pages: map[int][]pdf.Text{1: glyphs("x", 0, 0, 12)}}

	_, err := NewReader(zap.NewNop()).extract(ctx, "test.pdf", src)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReaderErrors(t *testing.T) {
	r := NewReader(zap.NewNop())

	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "none.pdf"))
	assert.ErrorIs(t, err, document.ErrNotFound)

	bad := filepath.Join(t.TempDir(), "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("this is not a pdf"), 0o644))
	_, err = r.Read(context.Background(), bad)
	assert.ErrorIs(t, err, document.ErrParse)
}

func runeWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * 10
}

func TestLayoutWrapsAndBreaksPages(t *testing.T) {
	t.Run("greedy word wrap", func(t *testing.T) {
		// 内容宽度 495.28，每行最多 49 个字符
		text := strings.Repeat("abcd ", 25)
		lines := Layout([]string{strings.TrimSpace(text)}, runeWidth)
		require.Len(t, lines, 3)
		assert.Equal(t, strings.TrimSpace(strings.Repeat("abcd ", 10)), lines[0].Text)
		assert.Equal(t, 50.0, lines[0].Y)
		assert.Equal(t, 70.0, lines[1].Y)
	})

	t.Run("long word broken by rune", func(t *testing.T) {
		lines := Layout([]string{strings.Repeat("가", 60)}, runeWidth)
		require.Len(t, lines, 2)
		assert.Equal(t, 49, utf8.RuneCountInString(lines[0].Text))
		assert.Equal(t, 11, utf8.RuneCountInString(lines[1].Text))
	})

	t.Run("explicit newlines and fragment gap", func(t *testing.T) {
		lines := Layout([]string{"a\nb", "c"}, runeWidth)
		require.Len(t, lines, 3)
		assert.Equal(t, []float64{50, 70, 100}, []float64{lines[0].Y, lines[1].Y, lines[2].Y})
	})

	t.Run("page break below bottom margin", func(t *testing.T) {
		texts := make([]string, 40)
		for i := range texts {
			texts[i] = "line"
		}
		lines := Layout(texts, runeWidth)
		require.Len(t, lines, 40)
		assert.Equal(t, 1, lines[24].Page)
		assert.Equal(t, 770.0, lines[24].Y)
		assert.Equal(t, 2, lines[25].Page)
		assert.Equal(t, 50.0, lines[25].Y)
	})
}

func TestRenderWriter(t *testing.T) {
	logger := zap.NewNop()
	font := ResolveFont([]string{filepath.Join(t.TempDir(), "missing.ttf")}, logger)
	require.True(t, font.IsCore())

	content := document.New(document.Tabular, document.FormatXLSX)
	content.Add("Hello", document.CellLocation{Sheet: "S", Row: 1, Column: 1, Coordinate: "A1"}, document.Formatting{})
	content.Add("Café au lait", document.CellLocation{Sheet: "S", Row: 2, Column: 1, Coordinate: "A2"}, document.Formatting{})

	out := filepath.Join(t.TempDir(), "out.pdf")
	written, err := NewRenderWriter(logger, font).Write(context.Background(), content, out)
	require.NoError(t, err)
	assert.Equal(t, out, written)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF-"))
}

func TestRenderWriterEmptyContent(t *testing.T) {
	content := document.New(document.FixedPage, document.FormatPDF)
	out := filepath.Join(t.TempDir(), "empty.pdf")
	_, err := NewRenderWriter(zap.NewNop(), Font{Family: coreFont}).Write(context.Background(), content, out)
	require.NoError(t, err)
	assert.FileExists(t, out)
}

func TestResolveFontSkipsInvalidFiles(t *testing.T) {
	bogus := filepath.Join(t.TempDir(), "bogus.ttf")
	require.NoError(t, os.WriteFile(bogus, []byte("not a font"), 0o644))

	font := ResolveFont([]string{bogus}, zap.NewNop())
	assert.True(t, font.IsCore())
	assert.Equal(t, coreFont, font.Family)
}

package xlsx

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

type pair struct {
	loc  document.CellLocation
	text string
}

func pairs(c *document.Content) []pair {
	out := make([]pair, 0, c.Len())
	for _, f := range c.Fragments {
		out = append(out, pair{loc: f.Location().(document.CellLocation), text: f.Text})
	}
	return out
}

func buildWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Prices"))
	require.NoError(t, f.SetCellValue("Prices", "A1", "Item"))
	require.NoError(t, f.SetCellValue("Prices", "B1", "Price"))
	require.NoError(t, f.SetCellValue("Prices", "A2", "Apple"))
	require.NoError(t, f.SetCellValue("Prices", "B2", 42))
	require.NoError(t, f.SetCellValue("Prices", "C2", "   "))
	require.NoError(t, f.SetCellValue("Prices", "D2", "=A2&B2"))
	require.NoError(t, f.SetCellFormula("Prices", "E2", "SUM(1,2)"))
	require.NoError(t, f.SetCellFormula("Prices", "F2", `A2&" pie"`))
	require.NoError(t, f.SetCellValue("Prices", "A3", "  Banana  "))
	require.NoError(t, f.SetCellValue("Prices", "B3", " =SUM(B1:B2)"))

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Family: "Arial", Size: 14}})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("Prices", "A1", "B1", bold))

	_, err = f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "C3", "Remember the milk"))

	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReaderTraversalAndFormulaExclusion(t *testing.T) {
	path := buildWorkbook(t)
	content, err := NewReader(zap.NewNop()).Read(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, document.Tabular, content.Type)
	assert.Equal(t, document.FormatXLSX, content.OriginalFormat)

	got := pairs(content)
	want := []pair{
		{document.CellLocation{Sheet: "Prices", Row: 1, Column: 1, Coordinate: "A1"}, "Item"},
		{document.CellLocation{Sheet: "Prices", Row: 1, Column: 2, Coordinate: "B1"}, "Price"},
		{document.CellLocation{Sheet: "Prices", Row: 2, Column: 1, Coordinate: "A2"}, "Apple"},
		{document.CellLocation{Sheet: "Prices", Row: 2, Column: 2, Coordinate: "B2"}, "42"},
		{document.CellLocation{Sheet: "Prices", Row: 3, Column: 1, Coordinate: "A3"}, "Banana"},
		{document.CellLocation{Sheet: "Notes", Row: 3, Column: 3, Coordinate: "C3"}, "Remember the milk"},
	}
	assert.Equal(t, want, got)

	// 公式单元格和以 = 开头的文本都不产生片段
	for _, f := range content.Fragments {
		coord := f.Location().(document.CellLocation).Coordinate
		assert.NotContains(t, []string{"D2", "E2", "F2", "B3"}, coord)
		assert.NotContains(t, f.Text, "SUM")
		assert.NotContains(t, f.Text, "pie")
	}

	header := content.Fragments[0].Formatting()
	assert.True(t, header.Bold)
	assert.Equal(t, "Arial", header.FontName)
	assert.Equal(t, 14.0, header.FontSize)
}

func TestReaderIsIdempotent(t *testing.T) {
	path := buildWorkbook(t)
	r := NewReader(zap.NewNop())

	first, err := r.Read(context.Background(), path)
	require.NoError(t, err)
	second, err := r.Read(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, pairs(first), pairs(second))
}

func TestReaderErrors(t *testing.T) {
	r := NewReader(zap.NewNop())

	_, err := r.Read(context.Background(), filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, document.ErrNotFound)

	path := buildWorkbook(t)
	_, err = r.Read(context.Background(), path+".docx")
	assert.ErrorIs(t, err, document.ErrNotFound)
}

func TestNativeRoundTrip(t *testing.T) {
	path := buildWorkbook(t)
	logger := zap.NewNop()

	content, err := NewReader(logger).Read(context.Background(), path)
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "out.xlsx")
	written, err := NewWriter(logger).Write(context.Background(), content, out)
	require.NoError(t, err)
	assert.Equal(t, out, written)

	again, err := NewReader(logger).Read(context.Background(), out)
	require.NoError(t, err)
	assert.Equal(t, pairs(content), pairs(again))
	assert.True(t, again.Fragments[0].Formatting().Bold)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Prices", "Notes"}, f.GetSheetList())
}

func TestWriterWritesTranslatedText(t *testing.T) {
	content := document.New(document.Tabular, document.FormatXLSX)
	content.Add("hello", document.CellLocation{Sheet: "Sheet1", Row: 2, Column: 3, Coordinate: "C2"}, document.Formatting{})
	content.SetText(0, "안녕")

	out := filepath.Join(t.TempDir(), "t.xlsx")
	_, err := NewWriter(zap.NewNop()).Write(context.Background(), content, out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Sheet1", "C2")
	require.NoError(t, err)
	assert.Equal(t, "안녕", v)
}

func TestWriterRejectsOtherContent(t *testing.T) {
	content := document.New(document.FlowText, document.FormatDOCX)
	_, err := NewWriter(zap.NewNop()).Write(context.Background(), content, filepath.Join(t.TempDir(), "x.xlsx"))
	assert.ErrorIs(t, err, document.ErrWrite)
}

func TestSummaryWriter(t *testing.T) {
	content := document.New(document.FixedPage, document.FormatPDF)
	content.Add("first", document.PageLocation{Page: 1, Paragraph: 0}, document.Formatting{})
	content.Add("second", document.PageLocation{Page: 2, Paragraph: 1}, document.Formatting{})

	out := filepath.Join(t.TempDir(), "summary.xlsx")
	_, err := NewSummaryWriter(zap.NewNop()).Write(context.Background(), content, out)
	require.NoError(t, err)

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SummarySheet}, f.GetSheetList())
	rows, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, summaryHeaders, rows[0])
	assert.Equal(t, []string{"1", "1 - 0", "first"}, rows[1])
	assert.Equal(t, []string{"2", "2 - 1", "second"}, rows[2])
}

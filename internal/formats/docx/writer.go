package docx

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

// Writer 按段落索引和表格坐标重建 Word 文档
type Writer struct {
	logger *zap.Logger
}

// NewWriter 创建 Word 写入器
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

type indexedParagraph struct {
	loc  document.ParagraphLocation
	frag document.Fragment
}

// Write 段落按索引升序输出，索引间的空缺用空段落补齐；表格按稀疏坐标还原为稠密网格
func (w *Writer) Write(ctx context.Context, c *document.Content, path string) (string, error) {
	if c.Type != document.FlowText {
		return "", document.WriteError(path, fmt.Errorf("cannot write %s content as a Word document", c.Type))
	}

	var paragraphs []indexedParagraph
	tables := make(map[int][]document.TableCellLocation)
	cellText := make(map[document.TableCellLocation]string)
	for _, frag := range c.Fragments {
		switch loc := frag.Location().(type) {
		case document.ParagraphLocation:
			paragraphs = append(paragraphs, indexedParagraph{loc: loc, frag: frag})
		case document.TableCellLocation:
			tables[loc.Table] = append(tables[loc.Table], loc)
			cellText[loc] = frag.Text
		}
	}
	sort.SliceStable(paragraphs, func(i, j int) bool {
		return paragraphs[i].loc.Index < paragraphs[j].loc.Index
	})

	b := newBuilder()
	next := 0
	for _, p := range paragraphs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		for ; next < p.loc.Index; next++ {
			b.paragraph(paraOptions{})
		}
		writeParagraph(b, p)
		next = p.loc.Index + 1
	}

	tableIndexes := make([]int, 0, len(tables))
	for idx := range tables {
		tableIndexes = append(tableIndexes, idx)
	}
	sort.Ints(tableIndexes)
	for _, idx := range tableIndexes {
		b.table(Grid(tables[idx], cellText))
	}

	if err := document.WriteFileAtomic(path, func(out io.Writer) error {
		return b.writeTo(out)
	}); err != nil {
		return "", err
	}
	w.logger.Debug("wrote word document",
		zap.String("file", path),
		zap.Int("paragraphs", len(paragraphs)),
		zap.Int("tables", len(tables)))
	return path, nil
}

// writeParagraph 译文与原 run 拼接结果一致时逐个还原 run，否则用首个 run 的格式写入整段
func writeParagraph(b *builder, p indexedParagraph) {
	formatting := p.frag.Formatting()
	para := b.paragraph(paraOptions{Style: p.loc.Style, Alignment: formatting.Alignment})

	switch {
	case len(formatting.Runs) > 0 && formatting.RunsText() == p.frag.Text:
		for _, run := range formatting.Runs {
			addRun(para, run.Text, run)
		}
	case len(formatting.Runs) > 0:
		addRun(para, p.frag.Text, formatting.Runs[0])
	default:
		addRun(para, p.frag.Text, document.RunFormat{
			FontName:  formatting.FontName,
			FontSize:  formatting.FontSize,
			Bold:      formatting.Bold,
			Italic:    formatting.Italic,
			Underline: formatting.Underline,
		})
	}
}

// Grid 把一个表格的稀疏单元格坐标还原为稠密网格
// 行数与列数分别为出现过的最大行、列索引加一，缺失的单元格为空字符串
func Grid(cells []document.TableCellLocation, text map[document.TableCellLocation]string) [][]string {
	rows, cols := 0, 0
	for _, loc := range cells {
		if loc.Row+1 > rows {
			rows = loc.Row + 1
		}
		if loc.Cell+1 > cols {
			cols = loc.Cell + 1
		}
	}
	grid := make([][]string, rows)
	for i := range grid {
		grid[i] = make([]string, cols)
	}
	for _, loc := range cells {
		grid[loc.Row][loc.Cell] = text[loc]
	}
	return grid
}

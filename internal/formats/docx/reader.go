// Package docx 读写 Word 文档
package docx

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
	"github.com/nerdneilsfield/go-office-translator/internal/formats/ooxml"
)

const defaultMainPart = "word/document.xml"

// Reader 先提取正文段落，再提取表格单元格
type Reader struct {
	logger *zap.Logger
}

// NewReader 创建 Word 读取器
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

func (r *Reader) Read(ctx context.Context, path string) (*document.Content, error) {
	if err := document.CheckInput(path, document.FormatDOCX); err != nil {
		return nil, err
	}

	pkg, err := ooxml.Open(path)
	if err != nil {
		return nil, document.ParseError(path, err)
	}
	defer pkg.Close()

	var doc WordDocument
	if err := pkg.DecodePart(mainPart(pkg), &doc); err != nil {
		return nil, document.ParseError(path, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := document.New(document.FlowText, document.FormatDOCX)

	// 段落索引包含空段落，写回时据此保留原有间隔
	for i, p := range doc.Body.Paragraphs {
		text := p.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		loc := document.ParagraphLocation{Index: i, Style: p.StyleID()}
		content.Add(text, loc, paragraphFormatting(p))
	}

	for ti, tbl := range doc.Body.Tables {
		for ri, row := range tbl.Rows {
			for ci, cell := range row.Cells {
				loc := document.TableCellLocation{Table: ti, Row: ri, Cell: ci}
				content.Add(strings.TrimSpace(cell.Text()), loc, document.Formatting{})
			}
		}
	}

	r.logger.Debug("read word document",
		zap.String("file", path),
		zap.Int("paragraphs", len(doc.Body.Paragraphs)),
		zap.Int("tables", len(doc.Body.Tables)),
		zap.Int("fragments", content.Len()))
	return content, nil
}

// mainPart 通过包关系找到主文档部件
func mainPart(pkg *ooxml.Package) string {
	rels, err := pkg.Relationships("")
	if err != nil {
		return defaultMainPart
	}
	for _, rel := range rels {
		if rel.Type == ooxml.RelTypeOfficeDoc && pkg.Has(rel.Target) {
			return rel.Target
		}
	}
	return defaultMainPart
}

func paragraphFormatting(p Paragraph) document.Formatting {
	f := document.Formatting{Alignment: p.Alignment()}
	for _, run := range p.Runs {
		if run.Text == "" {
			continue
		}
		f.Runs = append(f.Runs, run.Properties.Format(run.Text))
	}
	return f
}

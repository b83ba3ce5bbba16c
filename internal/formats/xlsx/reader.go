// Package xlsx 读写 Excel 工作簿
package xlsx

import (
	"context"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

// Reader 按工作表、行、列的顺序提取单元格文本
type Reader struct {
	logger *zap.Logger
}

// NewReader 创建工作簿读取器
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

// Read 读取工作簿，以 "=" 开头的值（公式）不会成为片段
func (r *Reader) Read(ctx context.Context, path string) (*document.Content, error) {
	if err := document.CheckInput(path, document.FormatXLSX); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, document.ParseError(path, err)
	}
	defer f.Close()

	content := document.New(document.Tabular, document.FormatXLSX)
	styles := make(map[int]document.Formatting)

	for _, sheet := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, document.ParseError(path, err)
		}

		for ri, row := range rows {
			for ci, raw := range row {
				value := strings.TrimSpace(raw)
				if value == "" || strings.HasPrefix(value, "=") {
					continue
				}
				coord, err := excelize.CoordinatesToCellName(ci+1, ri+1)
				if err != nil {
					return nil, document.ParseError(path, err)
				}
				loc := document.CellLocation{Sheet: sheet, Row: ri + 1, Column: ci + 1, Coordinate: coord}
				content.Add(value, loc, r.cellFormatting(f, sheet, coord, styles))
			}
		}
	}

	r.logger.Debug("read workbook",
		zap.String("file", path),
		zap.Int("sheets", len(f.GetSheetList())),
		zap.Int("fragments", content.Len()))
	return content, nil
}

func (r *Reader) cellFormatting(f *excelize.File, sheet, cell string, cache map[int]document.Formatting) document.Formatting {
	id, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return document.Formatting{}
	}
	if cached, ok := cache[id]; ok {
		return cached
	}

	var formatting document.Formatting
	style, err := f.GetStyle(id)
	if err == nil && style != nil && style.Font != nil {
		formatting = document.Formatting{
			FontName:  style.Font.Family,
			FontSize:  style.Font.Size,
			Bold:      style.Font.Bold,
			Italic:    style.Font.Italic,
			Underline: style.Font.Underline != "" && style.Font.Underline != "none",
		}
	}
	cache[id] = formatting
	return formatting
}

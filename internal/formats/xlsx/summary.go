package xlsx

import (
	"context"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

// SummarySheet 汇总表的工作表名
const SummarySheet = "번역 결과"

var summaryHeaders = []string{"순번", "원본 위치", "번역된 텍스트"}

// SummaryWriter 把任意内容写为一张三列汇总表：序号、原位置、译文
type SummaryWriter struct {
	logger *zap.Logger
}

// NewSummaryWriter 创建汇总表写入器
func NewSummaryWriter(logger *zap.Logger) *SummaryWriter {
	return &SummaryWriter{logger: logger}
}

func (w *SummaryWriter) Write(ctx context.Context, c *document.Content, path string) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SummarySheet); err != nil {
		return "", document.WriteError(path, err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", document.WriteError(path, err)
	}
	wrap, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return "", document.WriteError(path, err)
	}

	for i, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SummarySheet, cell, h); err != nil {
			return "", document.WriteError(path, err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "C1", header); err != nil {
		return "", document.WriteError(path, err)
	}

	for i, frag := range c.Fragments {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		row := i + 2
		values := []any{i + 1, frag.Location().String(), frag.Text}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(SummarySheet, cell, v); err != nil {
				return "", document.WriteError(path, err)
			}
		}
		cell, _ := excelize.CoordinatesToCellName(3, row)
		if err := f.SetCellStyle(SummarySheet, cell, cell, wrap); err != nil {
			return "", document.WriteError(path, err)
		}
	}

	_ = f.SetColWidth(SummarySheet, "A", "A", 8)
	_ = f.SetColWidth(SummarySheet, "B", "B", 30)
	_ = f.SetColWidth(SummarySheet, "C", "C", 80)

	if err := saveTo(f, path); err != nil {
		return "", err
	}
	w.logger.Debug("wrote summary sheet", zap.String("file", path), zap.Int("rows", c.Len()))
	return path, nil
}

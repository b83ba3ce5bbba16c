package xlsx

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

const defaultSheet = "Sheet1"

// Writer 按原位置重建工作簿
type Writer struct {
	logger *zap.Logger
}

// NewWriter 创建工作簿写入器
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

// Write 每个不同的工作表名生成一个工作表（按首次出现顺序），并恢复字体
func (w *Writer) Write(ctx context.Context, c *document.Content, path string) (string, error) {
	if c.Type != document.Tabular {
		return "", document.WriteError(path, fmt.Errorf("cannot write %s content as a workbook", c.Type))
	}

	f := excelize.NewFile()
	defer f.Close()

	styles := make(map[fontKey]int)
	for i, group := range document.GroupBy(c.Fragments) {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		sheet := group.Fragments[0].Location().(document.CellLocation).Sheet
		if sheet == "" {
			sheet = defaultSheet
		}
		if err := addSheet(f, i, sheet); err != nil {
			return "", document.WriteError(path, err)
		}

		for _, frag := range group.Fragments {
			loc := frag.Location().(document.CellLocation)
			cell := loc.Coordinate
			if cell == "" {
				var err error
				if cell, err = excelize.CoordinatesToCellName(loc.Column, loc.Row); err != nil {
					return "", document.WriteError(path, err)
				}
			}
			if err := f.SetCellValue(sheet, cell, frag.Text); err != nil {
				return "", document.WriteError(path, err)
			}

			formatting := frag.Formatting()
			if !formatting.HasFont() {
				continue
			}
			id, err := fontStyle(f, formatting, styles)
			if err != nil {
				return "", document.WriteError(path, err)
			}
			if err := f.SetCellStyle(sheet, cell, cell, id); err != nil {
				return "", document.WriteError(path, err)
			}
		}
	}
	f.SetActiveSheet(0)

	if err := saveTo(f, path); err != nil {
		return "", err
	}
	w.logger.Debug("wrote workbook", zap.String("file", path), zap.Int("fragments", c.Len()))
	return path, nil
}

// addSheet 第一个分组复用默认工作表，其余新建
func addSheet(f *excelize.File, index int, name string) error {
	if index == 0 {
		if name == defaultSheet {
			return nil
		}
		return f.SetSheetName(defaultSheet, name)
	}
	if idx, _ := f.GetSheetIndex(name); idx != -1 {
		return nil
	}
	_, err := f.NewSheet(name)
	return err
}

type fontKey struct {
	FontName  string
	FontSize  float64
	Bold      bool
	Italic    bool
	Underline bool
}

// fontStyle 为同一组字体属性复用同一个样式
func fontStyle(f *excelize.File, formatting document.Formatting, cache map[fontKey]int) (int, error) {
	key := fontKey{
		FontName:  formatting.FontName,
		FontSize:  formatting.FontSize,
		Bold:      formatting.Bold,
		Italic:    formatting.Italic,
		Underline: formatting.Underline,
	}
	if id, ok := cache[key]; ok {
		return id, nil
	}

	font := &excelize.Font{
		Family: key.FontName,
		Size:   key.FontSize,
		Bold:   key.Bold,
		Italic: key.Italic,
	}
	if key.Underline {
		font.Underline = "single"
	}
	id, err := f.NewStyle(&excelize.Style{Font: font})
	if err != nil {
		return 0, err
	}
	cache[key] = id
	return id, nil
}

func saveTo(f *excelize.File, path string) error {
	return document.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := f.WriteTo(w)
		return err
	})
}

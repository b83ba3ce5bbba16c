package document

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Format 支持的原生文档格式，取值为文件扩展名
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatDOCX Format = "docx"
	FormatPPTX Format = "pptx"
	FormatPDF  Format = "pdf"
)

// SupportedFormats 所有可读取的格式
var SupportedFormats = []Format{FormatXLSX, FormatDOCX, FormatPPTX, FormatPDF}

// ContentType 返回该格式读取后得到的内容类型
func (f Format) ContentType() ContentType {
	switch f {
	case FormatXLSX:
		return Tabular
	case FormatDOCX:
		return FlowText
	case FormatPPTX:
		return SlideDeck
	case FormatPDF:
		return FixedPage
	default:
		return 0
	}
}

// Ext 返回带点号的扩展名
func (f Format) Ext() string {
	return "." + string(f)
}

// FormatFromPath 根据扩展名识别文件格式
func FormatFromPath(path string) (Format, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, f := range SupportedFormats {
		if string(f) == ext {
			return f, true
		}
	}
	return "", false
}

// CheckInput 检查输入文件存在且扩展名符合预期
func CheckInput(path string, want Format) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Error{Kind: KindNotFound, Path: path, Err: err}
		}
		return &Error{Kind: KindParse, Path: path, Err: err}
	}
	if info.IsDir() {
		return &Error{Kind: KindNotFound, Path: path, Err: errors.New("path is a directory")}
	}
	got, ok := FormatFromPath(path)
	if !ok || got != want {
		return &Error{Kind: KindUnsupportedFormat, Path: path}
	}
	return nil
}

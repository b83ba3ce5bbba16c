// Package formats 把文档格式和输出类型映射到具体的读取器与写入器
package formats

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
	"github.com/nerdneilsfield/go-office-translator/internal/formats/docx"
	"github.com/nerdneilsfield/go-office-translator/internal/formats/pdf"
	"github.com/nerdneilsfield/go-office-translator/internal/formats/pptx"
	"github.com/nerdneilsfield/go-office-translator/internal/formats/xlsx"
)

// OutputKind 输出文件类型
type OutputKind string

const (
	// OutputNative 保持原始格式
	OutputNative OutputKind = "native"
	// OutputPDF 排版为 PDF
	OutputPDF OutputKind = "pdf"
	// OutputSheet 汇总为 Excel 表格
	OutputSheet OutputKind = "sheet"
	// OutputDocument 汇总为 Word 文档
	OutputDocument OutputKind = "document"
)

// OutputKinds 所有输出类型
var OutputKinds = []OutputKind{OutputNative, OutputPDF, OutputSheet, OutputDocument}

var outputAliases = map[string]OutputKind{
	"native":   OutputNative,
	"original": OutputNative,
	"pdf":      OutputPDF,
	"sheet":    OutputSheet,
	"excel":    OutputSheet,
	"xlsx":     OutputSheet,
	"document": OutputDocument,
	"word":     OutputDocument,
	"docx":     OutputDocument,
}

// ParseOutputKind 解析输出类型名称，大小写不敏感
func ParseOutputKind(s string) (OutputKind, error) {
	kind, ok := outputAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown output format %q (want native, pdf, sheet or document)", s)
	}
	return kind, nil
}

// Ext 返回输出文件的扩展名，原格式输出沿用输入扩展名
func (k OutputKind) Ext(original document.Format) string {
	switch k {
	case OutputPDF:
		return document.FormatPDF.Ext()
	case OutputSheet:
		return document.FormatXLSX.Ext()
	case OutputDocument:
		return document.FormatDOCX.Ext()
	default:
		return original.Ext()
	}
}

// Capabilities 启动时一次性解析的运行环境能力
type Capabilities struct {
	Font pdf.Font
}

// ResolveCapabilities 解析 PDF 字体等能力，结果会记录到日志
func ResolveCapabilities(fontCandidates []string, logger *zap.Logger) Capabilities {
	if len(fontCandidates) == 0 {
		fontCandidates = pdf.DefaultFontCandidates
	}
	return Capabilities{Font: pdf.ResolveFont(fontCandidates, logger)}
}

// Registry 读取器与写入器的分派表，构造后只读
type Registry struct {
	readers map[document.Format]document.Reader
	native  map[document.Format]document.Writer
	convert map[OutputKind]document.Writer
}

// NewRegistry 创建包含全部内置格式的分派表
func NewRegistry(logger *zap.Logger, caps Capabilities) *Registry {
	render := pdf.NewRenderWriter(logger.Named("pdf"), caps.Font)
	return &Registry{
		readers: map[document.Format]document.Reader{
			document.FormatXLSX: xlsx.NewReader(logger.Named("xlsx")),
			document.FormatDOCX: docx.NewReader(logger.Named("docx")),
			document.FormatPPTX: pptx.NewReader(logger.Named("pptx")),
			document.FormatPDF:  pdf.NewReader(logger.Named("pdf")),
		},
		native: map[document.Format]document.Writer{
			document.FormatXLSX: xlsx.NewWriter(logger.Named("xlsx")),
			document.FormatDOCX: docx.NewWriter(logger.Named("docx")),
			document.FormatPPTX: pptx.NewWriter(logger.Named("pptx")),
			// PDF 无法原位替换文本，原格式输出即重新排版
			document.FormatPDF: render,
		},
		convert: map[OutputKind]document.Writer{
			OutputPDF:      render,
			OutputSheet:    xlsx.NewSummaryWriter(logger.Named("xlsx")),
			OutputDocument: docx.NewSummaryWriter(logger.Named("docx")),
		},
	}
}

// Reader 返回格式对应的读取器
func (r *Registry) Reader(f document.Format) (document.Reader, error) {
	reader, ok := r.readers[f]
	if !ok {
		return nil, &document.Error{Kind: document.KindUnsupportedFormat, Err: fmt.Errorf("no reader for %q", f)}
	}
	return reader, nil
}

// ReaderFor 根据文件扩展名返回读取器和识别出的格式
func (r *Registry) ReaderFor(path string) (document.Reader, document.Format, error) {
	f, ok := document.FormatFromPath(path)
	if !ok {
		return nil, "", &document.Error{Kind: document.KindUnsupportedFormat, Path: path}
	}
	reader, err := r.Reader(f)
	return reader, f, err
}

// Writer 返回输出类型对应的写入器，原格式输出按输入格式选择
func (r *Registry) Writer(kind OutputKind, original document.Format) (document.Writer, error) {
	var (
		w  document.Writer
		ok bool
	)
	if kind == OutputNative {
		w, ok = r.native[original]
	} else {
		w, ok = r.convert[kind]
	}
	if !ok {
		return nil, &document.Error{
			Kind: document.KindUnsupportedFormat,
			Err:  fmt.Errorf("no %s writer for %q", kind, original),
		}
	}
	return w, nil
}

// Formats 返回可读取的格式
func (r *Registry) Formats() []document.Format {
	out := make([]document.Format, 0, len(r.readers))
	for _, f := range document.SupportedFormats {
		if _, ok := r.readers[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

package pdf

import (
	"context"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

// A4 纵向版面，单位 pt
const (
	pageWidth   = 595.28
	pageHeight  = 841.89
	pageMargin  = 50.0
	fontSize    = 12.0
	lineHeight  = 20.0
	fragmentGap = 10.0
)

// Line 排版后的一行，Y 为自页面顶部起的基线位置
type Line struct {
	Page int
	Y    float64
	Text string
}

// Layout 按贪心换行把片段排入 A4 页面，页码从 1 开始
// width 返回字符串在当前字体下的宽度；每个片段后额外留出 fragmentGap
func Layout(texts []string, width func(string) float64) []Line {
	maxWidth := pageWidth - 2*pageMargin
	bottom := pageHeight - pageMargin

	var lines []Line
	page, y := 1, pageMargin
	emit := func(s string) {
		if y > bottom {
			page++
			y = pageMargin
		}
		lines = append(lines, Line{Page: page, Y: y, Text: s})
		y += lineHeight
	}

	for _, text := range texts {
		for _, raw := range strings.Split(text, "\n") {
			for _, l := range wrap(raw, width, maxWidth) {
				emit(l)
			}
		}
		y += fragmentGap
	}
	return lines
}

// wrap 按空格贪心换行，单个词超出宽度时按字符断开
func wrap(line string, width func(string) float64, maxWidth float64) []string {
	if width(line) <= maxWidth {
		return []string{line}
	}

	var out []string
	current := ""
	for _, word := range strings.Split(line, " ") {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			out = append(out, current)
		}
		current = word
		if width(word) > maxWidth {
			parts := breakRunes(word, width, maxWidth)
			out = append(out, parts[:len(parts)-1]...)
			current = parts[len(parts)-1]
		}
	}
	if current != "" {
		out = append(out, current)
	}
	return out
}

func breakRunes(word string, width func(string) float64, maxWidth float64) []string {
	var out []string
	var sb strings.Builder
	for _, r := range word {
		if sb.Len() > 0 && width(sb.String()+string(r)) > maxWidth {
			out = append(out, sb.String())
			sb.Reset()
		}
		sb.WriteRune(r)
	}
	return append(out, sb.String())
}

// RenderWriter 把任意内容的片段文本依次排版为 PDF
type RenderWriter struct {
	logger *zap.Logger
	font   Font
}

// NewRenderWriter 创建 PDF 渲染写入器，字体应在启动时通过 ResolveFont 解析
func NewRenderWriter(logger *zap.Logger, font Font) *RenderWriter {
	return &RenderWriter{logger: logger, font: font}
}

func (w *RenderWriter) Write(ctx context.Context, c *document.Content, path string) (string, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetAutoPageBreak(false, 0)
	family := w.font.apply(doc)
	doc.SetFont(family, "", fontSize)

	encode := func(s string) string { return s }
	if family == coreFont {
		encode = doc.UnicodeTranslatorFromDescriptor("")
	}

	lines := Layout(c.Texts(), func(s string) float64 {
		return doc.GetStringWidth(encode(s))
	})

	page := 0
	for _, l := range lines {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		for page < l.Page {
			doc.AddPage()
			doc.SetFont(family, "", fontSize)
			page++
		}
		if l.Text != "" {
			doc.Text(pageMargin, l.Y, encode(l.Text))
		}
	}
	if page == 0 {
		doc.AddPage()
		page = 1
	}
	if doc.Err() {
		return "", document.WriteError(path, doc.Error())
	}

	if err := document.WriteFileAtomic(path, func(out io.Writer) error {
		return doc.Output(out)
	}); err != nil {
		return "", err
	}
	w.logger.Debug("wrote pdf",
		zap.String("file", path),
		zap.String("font", family),
		zap.Int("pages", page),
		zap.Int("lines", len(lines)))
	return path, nil
}

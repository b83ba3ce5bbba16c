package docx

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

const (
	summaryHeading = "번역 결과"
	labelFontSize  = 10
	textIndent     = 720 // 0.5 英寸
)

var separator = strings.Repeat("─", 50)

// SummaryWriter 把任意内容写为 Word 汇总文档：标题，之后每个片段一个位置标签、缩进正文和分隔线
type SummaryWriter struct {
	logger *zap.Logger
}

// NewSummaryWriter 创建 Word 汇总写入器
func NewSummaryWriter(logger *zap.Logger) *SummaryWriter {
	return &SummaryWriter{logger: logger}
}

func (w *SummaryWriter) Write(ctx context.Context, c *document.Content, path string) (string, error) {
	b := newBuilder()
	addRun(b.paragraph(paraOptions{Style: "Title"}), summaryHeading, document.RunFormat{})

	for i, frag := range c.Fragments {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		label := fmt.Sprintf("[%d] 위치: %s", i+1, frag.Location())
		addRun(b.paragraph(paraOptions{}), label, document.RunFormat{Bold: true, FontSize: labelFontSize})
		addRun(b.paragraph(paraOptions{IndentLeft: textIndent}), frag.Text, document.RunFormat{})
		addRun(b.paragraph(paraOptions{}), separator, document.RunFormat{})
	}

	if err := document.WriteFileAtomic(path, func(out io.Writer) error {
		return b.writeTo(out)
	}); err != nil {
		return "", err
	}
	w.logger.Debug("wrote word summary", zap.String("file", path), zap.Int("fragments", c.Len()))
	return path, nil
}

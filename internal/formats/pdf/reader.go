// Package pdf 提取 PDF 文本并把译文渲染为新的 PDF
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

// pageSource 按页提供字形，页码从 1 开始
type pageSource interface {
	NumPage() int
	Page(n int) ([]pdf.Text, error)
}

type fileSource struct {
	r *pdf.Reader
}

func (s fileSource) NumPage() int {
	return s.r.NumPage()
}

func (s fileSource) Page(n int) ([]pdf.Text, error) {
	page := s.r.Page(n)
	if page.V.IsNull() {
		return nil, errors.New("page object is missing")
	}
	return page.Content().Text, nil
}

// Reader 逐页提取文本，单页失败只记录警告并跳过该页
type Reader struct {
	logger *zap.Logger
}

// NewReader 创建 PDF 读取器
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

func (r *Reader) Read(ctx context.Context, path string) (*document.Content, error) {
	if err := document.CheckInput(path, document.FormatPDF); err != nil {
		return nil, err
	}

	f, src, err := open(path)
	if err != nil {
		return nil, document.ParseError(path, err)
	}
	defer f.Close()

	return r.extract(ctx, path, src)
}

// open 打开 PDF，库内部的 panic 转换为错误
func open(path string) (f *os.File, src pageSource, err error) {
	defer func() {
		if p := recover(); p != nil {
			if f != nil {
				f.Close()
			}
			f, src, err = nil, nil, fmt.Errorf("open pdf: %v", p)
		}
	}()

	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, nil, err
	}
	f = file
	return file, fileSource{r: reader}, nil
}

func (r *Reader) extract(ctx context.Context, path string, src pageSource) (*document.Content, error) {
	content := document.New(document.FixedPage, document.FormatPDF)
	pages, err := numPage(src)
	if err != nil {
		return nil, document.ParseError(path, err)
	}

	skipped := 0
	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		glyphs, err := readPage(src, n)
		if err != nil {
			skipped++
			r.logger.Warn("skipping unreadable pdf page",
				zap.Error(&document.Error{Kind: document.KindPagePartial, Path: path, Page: n, Err: err}))
			continue
		}
		for i, b := range splitBlocks(glyphs) {
			loc := document.PageLocation{Page: n, Paragraph: i}
			content.Add(b.Text, loc, document.Formatting{FontName: b.Font, FontSize: b.FontSize})
		}
	}

	r.logger.Debug("read pdf",
		zap.String("file", path),
		zap.Int("pages", pages),
		zap.Int("skipped", skipped),
		zap.Int("fragments", content.Len()))
	return content, nil
}

func numPage(src pageSource) (n int, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("count pages: %v", p)
		}
	}()
	return src.NumPage(), nil
}

func readPage(src pageSource, n int) (glyphs []pdf.Text, err error) {
	defer func() {
		if p := recover(); p != nil {
			glyphs, err = nil, fmt.Errorf("%v", p)
		}
	}()
	return src.Page(n)
}

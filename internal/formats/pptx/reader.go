// Package pptx 读写 PowerPoint 演示文稿
package pptx

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
	"github.com/nerdneilsfield/go-office-translator/internal/formats/ooxml"
)

const defaultPresentationPart = "ppt/presentation.xml"

// Reader 按幻灯片、形状、段落的顺序提取文本，索引均从 0 开始
type Reader struct {
	logger *zap.Logger
}

// NewReader 创建演示文稿读取器
func NewReader(logger *zap.Logger) *Reader {
	return &Reader{logger: logger}
}

func (r *Reader) Read(ctx context.Context, path string) (*document.Content, error) {
	if err := document.CheckInput(path, document.FormatPPTX); err != nil {
		return nil, err
	}

	pkg, err := ooxml.Open(path)
	if err != nil {
		return nil, document.ParseError(path, err)
	}
	defer pkg.Close()

	slides, err := slideParts(pkg)
	if err != nil {
		return nil, document.ParseError(path, err)
	}

	content := document.New(document.SlideDeck, document.FormatPPTX)
	for si, part := range slides {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var slide slideXML
		if err := pkg.DecodePart(part, &slide); err != nil {
			return nil, document.ParseError(path, err)
		}
		addSlide(content, si, slide)
	}

	r.logger.Debug("read presentation",
		zap.String("file", path),
		zap.Int("slides", len(slides)),
		zap.Int("fragments", content.Len()))
	return content, nil
}

// slideParts 按 sldIdLst 的顺序返回幻灯片部件路径
func slideParts(pkg *ooxml.Package) ([]string, error) {
	main := defaultPresentationPart
	if rels, err := pkg.Relationships(""); err == nil {
		for _, rel := range rels {
			if rel.Type == ooxml.RelTypeOfficeDoc && pkg.Has(rel.Target) {
				main = rel.Target
				break
			}
		}
	}

	var pres presentationXML
	if err := pkg.DecodePart(main, &pres); err != nil {
		return nil, err
	}
	rels, err := pkg.Relationships(main)
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(pres.SlideIDs))
	for _, id := range pres.SlideIDs {
		rel, ok := rels[id.RID]
		if !ok || rel.Type != ooxml.RelTypeSlide {
			return nil, fmt.Errorf("slide %s: relationship %s not found", id.ID, id.RID)
		}
		parts = append(parts, rel.Target)
	}
	return parts, nil
}

// addSlide 文本框按段落拆分，表格整体作为一个片段
func addSlide(content *document.Content, si int, slide slideXML) {
	for shi, shape := range slide.Shapes {
		switch {
		case shape.HasTextBody:
			for pi, p := range shape.Paragraphs {
				text := p.Text()
				if strings.TrimSpace(text) == "" {
					continue
				}
				loc := document.SlideLocation{
					Slide:        si,
					Shape:        shi,
					ShapeType:    shape.ShapeType(),
					Paragraph:    pi,
					HasParagraph: true,
				}
				content.Add(text, loc, document.Formatting{
					Alignment: p.Alignment,
					Level:     p.Level,
					ShapeName: shape.Name,
					Runs:      p.Runs,
				})
			}
		case shape.TableText != "":
			loc := document.SlideLocation{Slide: si, Shape: shi, ShapeType: shape.ShapeType()}
			content.Add(shape.TableText, loc, document.Formatting{ShapeName: shape.Name})
		}
	}
}

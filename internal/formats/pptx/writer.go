package pptx

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

// Writer 生成新的演示文稿，每个幻灯片分组一张幻灯片
//
// 原始形状的位置和大小不保留。形状 0 的片段作为标题，这只是一个经验规则：
// 多数版式中标题占位符排在形状树的第一位。其余片段依次写入内容占位符。
type Writer struct {
	logger *zap.Logger
}

// NewWriter 创建演示文稿写入器
func NewWriter(logger *zap.Logger) *Writer {
	return &Writer{logger: logger}
}

func (w *Writer) Write(ctx context.Context, c *document.Content, path string) (string, error) {
	if c.Type != document.SlideDeck {
		return "", document.WriteError(path, fmt.Errorf("cannot write %s content as a presentation", c.Type))
	}

	specs := slideSpecs(c)
	slides := make([]*etree.Document, 0, len(specs))
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		slides = append(slides, newSlide(spec))
	}

	if err := document.WriteFileAtomic(path, func(out io.Writer) error {
		return writePackage(out, slides)
	}); err != nil {
		return "", err
	}
	w.logger.Debug("wrote presentation", zap.String("file", path), zap.Int("slides", len(slides)))
	return path, nil
}

// slideSpecs 按幻灯片索引升序分组
func slideSpecs(c *document.Content) []slideSpec {
	bySlide := make(map[int]*slideSpec)
	var order []int
	for _, frag := range c.Fragments {
		loc := frag.Location().(document.SlideLocation)
		spec, ok := bySlide[loc.Slide]
		if !ok {
			spec = &slideSpec{}
			bySlide[loc.Slide] = spec
			order = append(order, loc.Slide)
		}
		if loc.Shape == 0 {
			spec.Title = append(spec.Title, frag)
		} else {
			spec.Body = append(spec.Body, frag)
		}
	}
	sort.Ints(order)

	specs := make([]slideSpec, 0, len(order))
	for _, idx := range order {
		specs = append(specs, *bySlide[idx])
	}
	return specs
}

package document

import (
	"context"
	"fmt"
	"strings"
)

// ContentType 文档内容类型，决定片段使用的位置结构
type ContentType int

const (
	Tabular ContentType = iota + 1
	FlowText
	SlideDeck
	FixedPage
)

func (t ContentType) String() string {
	switch t {
	case Tabular:
		return "tabular"
	case FlowText:
		return "flow-text"
	case SlideDeck:
		return "slide-deck"
	case FixedPage:
		return "fixed-page"
	default:
		return "unknown"
	}
}

// Fragment 一个可独立翻译的文本片段
// 创建后只有 Text 可以被覆盖，位置和格式由写入器用于定位
type Fragment struct {
	Text string

	location   Location
	formatting Formatting
}

// Location 返回片段的来源位置
func (f Fragment) Location() Location {
	return f.location
}

// Formatting 返回片段的格式提示
func (f Fragment) Formatting() Formatting {
	return f.formatting
}

// Content 一个文档中提取出的全部片段
type Content struct {
	Type           ContentType
	OriginalFormat Format
	Fragments      []Fragment
}

// New 创建空的文档内容
func New(t ContentType, original Format) *Content {
	return &Content{
		Type:           t,
		OriginalFormat: original,
		Fragments:      make([]Fragment, 0),
	}
}

// Add 追加一个片段，去除空白后为空的文本会被丢弃
// 位置类型与内容类型不一致属于编程错误
func (c *Content) Add(text string, loc Location, f Formatting) bool {
	if loc == nil || loc.Kind() != c.Type {
		panic(fmt.Sprintf("document: %T does not belong to %s content", loc, c.Type))
	}
	if strings.TrimSpace(text) == "" {
		return false
	}
	c.Fragments = append(c.Fragments, Fragment{Text: text, location: loc, formatting: f})
	return true
}

// Len 返回片段数量
func (c *Content) Len() int {
	return len(c.Fragments)
}

// Texts 按顺序返回所有片段文本
func (c *Content) Texts() []string {
	texts := make([]string, len(c.Fragments))
	for i, f := range c.Fragments {
		texts[i] = f.Text
	}
	return texts
}

// SetText 覆盖第 i 个片段的文本
func (c *Content) SetText(i int, text string) {
	c.Fragments[i].Text = text
}

// Reader 把一种原生格式的文件读取为文档内容
type Reader interface {
	Read(ctx context.Context, path string) (*Content, error)
}

// Writer 把文档内容写为文件，返回实际写入的路径
type Writer interface {
	Write(ctx context.Context, c *Content, path string) (string, error)
}

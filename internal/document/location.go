package document

import (
	"fmt"
	"strconv"
)

// Location 标识一个文本片段在源文档中的位置
// 每种内容类型对应一组具体的位置结构，写入器按位置把译文放回原处
type Location interface {
	// Kind 返回该位置所属的内容类型
	Kind() ContentType

	// GroupKey 返回重组容器（工作表、表格、幻灯片、页面）时使用的分组键
	GroupKey() string

	// String 返回便于阅读的位置描述
	String() string

	isLocation()
}

// CellLocation 表格单元格位置，行列均从 1 开始，与单元格坐标一致
type CellLocation struct {
	Sheet      string `json:"sheet"`
	Row        int    `json:"row"`
	Column     int    `json:"column"`
	Coordinate string `json:"coordinate"`
}

func (CellLocation) Kind() ContentType {
	return Tabular
}

func (l CellLocation) GroupKey() string {
	return l.Sheet
}

func (l CellLocation) String() string {
	return l.Sheet + " - " + l.Coordinate
}

func (CellLocation) isLocation() {}

// ParagraphLocation 正文段落位置
type ParagraphLocation struct {
	Index int    `json:"paragraph_index"`
	Style string `json:"style,omitempty"`
}

func (ParagraphLocation) Kind() ContentType {
	return FlowText
}

// GroupKey 正文段落共用同一个分组
func (ParagraphLocation) GroupKey() string {
	return "body"
}

func (l ParagraphLocation) String() string {
	return "paragraph - " + strconv.Itoa(l.Index)
}

func (ParagraphLocation) isLocation() {}

// TableCellLocation 正文表格中的单元格位置，索引从 0 开始
type TableCellLocation struct {
	Table int `json:"table_index"`
	Row   int `json:"row_index"`
	Cell  int `json:"cell_index"`
}

func (TableCellLocation) Kind() ContentType {
	return FlowText
}

func (l TableCellLocation) GroupKey() string {
	return "table-" + strconv.Itoa(l.Table)
}

func (l TableCellLocation) String() string {
	return fmt.Sprintf("table %d - %d,%d", l.Table, l.Row, l.Cell)
}

func (TableCellLocation) isLocation() {}

// SlideLocation 幻灯片中形状（及其段落）的位置
// HasParagraph 为 false 时片段代表整个形状的文本
type SlideLocation struct {
	Slide        int    `json:"slide_index"`
	Shape        int    `json:"shape_index"`
	ShapeType    string `json:"shape_type"`
	Paragraph    int    `json:"paragraph_index"`
	HasParagraph bool   `json:"has_paragraph"`
}

func (SlideLocation) Kind() ContentType {
	return SlideDeck
}

func (l SlideLocation) GroupKey() string {
	return strconv.Itoa(l.Slide)
}

func (l SlideLocation) String() string {
	if l.HasParagraph {
		return fmt.Sprintf("%d - %d", l.Slide, l.Paragraph)
	}
	return fmt.Sprintf("%d - shape %d", l.Slide, l.Shape)
}

func (SlideLocation) isLocation() {}

// PageLocation PDF 页面中的段落位置，页码从 1 开始
type PageLocation struct {
	Page      int `json:"page_number"`
	Paragraph int `json:"paragraph_index"`
}

func (PageLocation) Kind() ContentType {
	return FixedPage
}

func (l PageLocation) GroupKey() string {
	return strconv.Itoa(l.Page)
}

func (l PageLocation) String() string {
	return fmt.Sprintf("%d - %d", l.Page, l.Paragraph)
}

func (PageLocation) isLocation() {}

// Group 同一分组键下的片段，保持发现顺序
type Group struct {
	Key       string
	Fragments []Fragment
}

// GroupBy 按位置的分组键对片段分组，分组按首次出现的顺序排列
func GroupBy(fragments []Fragment) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, f := range fragments {
		key := f.Location().GroupKey()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Fragments = append(groups[i].Fragments, f)
	}
	return groups
}

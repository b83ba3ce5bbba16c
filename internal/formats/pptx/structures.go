package pptx

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

// presentation.xml 中关心的部分
type presentationXML struct {
	SlideIDs []slideID `xml:"sldIdLst>sldId"`
}

type slideID struct {
	ID  string `xml:"id,attr"`
	RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
}

// slideXML 幻灯片，只保留形状树中的顶层形状
type slideXML struct {
	Shapes []Shape
}

// Shape 形状树中的一个顶层元素
type Shape struct {
	Kind        string // sp、pic、graphicFrame、grpSp、cxnSp
	Name        string
	Placeholder bool
	TextBox     bool
	Paragraphs  []Paragraph
	HasTextBody bool
	TableText   string
}

// Paragraph 文本框中的段落
type Paragraph struct {
	Alignment string
	Level     int
	Runs      []document.RunFormat
}

// Text 段落纯文本
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// ShapeType 形状类型名称
func (s Shape) ShapeType() string {
	switch s.Kind {
	case "sp":
		switch {
		case s.Placeholder:
			return "placeholder"
		case s.TextBox:
			return "text_box"
		default:
			return "auto_shape"
		}
	case "pic":
		return "picture"
	case "graphicFrame":
		if s.TableText != "" {
			return "table"
		}
		return "graphic_frame"
	case "grpSp":
		return "group"
	case "cxnSp":
		return "connector"
	default:
		return s.Kind
	}
}

// UnmarshalXML 解析 spTree，按顺序记录每个顶层形状
func (s *slideXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "cSld":
				// 进入 cSld
			case "spTree":
				shapes, err := decodeShapeTree(d)
				if err != nil {
					return err
				}
				s.Shapes = append(s.Shapes, shapes...)
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == start.Name.Local {
				return nil
			}
		}
	}
}

func decodeShapeTree(d *xml.Decoder) ([]Shape, error) {
	var shapes []Shape
	for {
		tok, err := d.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "sp", "pic", "graphicFrame", "grpSp", "cxnSp":
				var raw rawShape
				if err := d.DecodeElement(&raw, &t); err != nil {
					return nil, err
				}
				shapes = append(shapes, raw.toShape(t.Name.Local))
			default:
				// nvGrpSpPr、grpSpPr 等非形状元素
				if err := d.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return shapes, nil
		}
	}
}

// rawShape 形状元素的 XML 映射，各类形状共用
type rawShape struct {
	SpName    *cNvPr    `xml:"nvSpPr>cNvPr"`
	PicName   *cNvPr    `xml:"nvPicPr>cNvPr"`
	FrameName *cNvPr    `xml:"nvGraphicFramePr>cNvPr"`
	GroupName *cNvPr    `xml:"nvGrpSpPr>cNvPr"`
	CxnName   *cNvPr    `xml:"nvCxnSpPr>cNvPr"`
	SpProps   *cNvSpPr  `xml:"nvSpPr>cNvSpPr"`
	Ph        *struct{} `xml:"nvSpPr>nvPr>ph"`
	TxBody    *txBody   `xml:"txBody"`
	Table     *table    `xml:"graphic>graphicData>tbl"`
}

type cNvPr struct {
	Name string `xml:"name,attr"`
}

type cNvSpPr struct {
	TxBox string `xml:"txBox,attr"`
}

type txBody struct {
	Paragraphs []rawParagraph `xml:"p"`
}

type rawParagraph struct {
	Props *struct {
		Algn string `xml:"algn,attr"`
		Lvl  string `xml:"lvl,attr"`
	} `xml:"pPr"`
	Items []rawRun `xml:",any"`
}

// rawRun 覆盖 a:r、a:fld、a:br 三种段落内元素
type rawRun struct {
	XMLName xml.Name
	Props   *struct {
		B     string `xml:"b,attr"`
		I     string `xml:"i,attr"`
		U     string `xml:"u,attr"`
		Sz    string `xml:"sz,attr"`
		Latin *struct {
			Typeface string `xml:"typeface,attr"`
		} `xml:"latin"`
		EA *struct {
			Typeface string `xml:"typeface,attr"`
		} `xml:"ea"`
	} `xml:"rPr"`
	Text string `xml:"t"`
}

type table struct {
	Rows []struct {
		Cells []struct {
			Body *txBody `xml:"txBody"`
		} `xml:"tc"`
	} `xml:"tr"`
}

func (r rawShape) toShape(kind string) Shape {
	s := Shape{Kind: kind}
	for _, n := range []*cNvPr{r.SpName, r.PicName, r.FrameName, r.GroupName, r.CxnName} {
		if n != nil {
			s.Name = n.Name
			break
		}
	}
	s.Placeholder = r.Ph != nil
	s.TextBox = r.SpProps != nil && (r.SpProps.TxBox == "1" || r.SpProps.TxBox == "true")

	if kind == "sp" && r.TxBody != nil {
		s.HasTextBody = true
		for _, rp := range r.TxBody.Paragraphs {
			s.Paragraphs = append(s.Paragraphs, rp.toParagraph())
		}
	}
	if kind == "graphicFrame" && r.Table != nil {
		s.TableText = r.Table.text()
	}
	return s
}

func (rp rawParagraph) toParagraph() Paragraph {
	var p Paragraph
	if rp.Props != nil {
		p.Alignment = rp.Props.Algn
		p.Level, _ = strconv.Atoi(rp.Props.Lvl)
	}
	for _, item := range rp.Items {
		switch item.XMLName.Local {
		case "r", "fld":
			if item.Text == "" {
				continue
			}
			p.Runs = append(p.Runs, item.format())
		case "br":
			p.Runs = append(p.Runs, document.RunFormat{Text: "\n"})
		}
	}
	return p
}

func (r rawRun) format() document.RunFormat {
	rf := document.RunFormat{Text: r.Text}
	if r.Props == nil {
		return rf
	}
	rf.Bold = r.Props.B == "1" || r.Props.B == "true"
	rf.Italic = r.Props.I == "1" || r.Props.I == "true"
	rf.Underline = r.Props.U != "" && r.Props.U != "none"
	if sz, err := strconv.Atoi(r.Props.Sz); err == nil {
		rf.FontSize = float64(sz) / 100
	}
	switch {
	case r.Props.Latin != nil && r.Props.Latin.Typeface != "":
		rf.FontName = r.Props.Latin.Typeface
	case r.Props.EA != nil:
		rf.FontName = r.Props.EA.Typeface
	}
	return rf
}

// text 表格文本：单元格以制表符分隔，行以换行分隔
func (t *table) text() string {
	rows := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			var parts []string
			if cell.Body != nil {
				for _, rp := range cell.Body.Paragraphs {
					parts = append(parts, rp.toParagraph().Text())
				}
			}
			cells = append(cells, strings.Join(parts, "\n"))
		}
		rows = append(rows, strings.Join(cells, "\t"))
	}
	return strings.TrimSpace(strings.Join(rows, "\n"))
}

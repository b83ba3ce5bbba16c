package docx

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
)

// DOCX XML 命名空间
const (
	WordprocessingMLNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	mainContentType           = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	stylesContentType         = "application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"
)

// WordDocument document.xml 的根元素
type WordDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    Body     `xml:"body"`
}

// Body 文档主体，只包含顶层段落和表格
type Body struct {
	Paragraphs []Paragraph `xml:"p"`
	Tables     []Table     `xml:"tbl"`
}

// Paragraph 段落，超链接等容器中的 run 也按出现顺序收集
type Paragraph struct {
	Properties *ParagraphProps
	Runs       []Run
}

// ParagraphProps 段落属性
type ParagraphProps struct {
	Style *ValAttr `xml:"pStyle"`
	Align *ValAttr `xml:"jc"`
}

// ValAttr 只有 w:val 属性的元素
type ValAttr struct {
	Val string `xml:"val,attr"`
}

// Run 一段同格式文本
type Run struct {
	Properties *RunProps
	Text       string
}

// RunProps run 属性
type RunProps struct {
	Bold      *ValAttr `xml:"b"`
	Italic    *ValAttr `xml:"i"`
	Underline *ValAttr `xml:"u"`
	Size      *ValAttr `xml:"sz"`
	Font      *RunFont `xml:"rFonts"`
}

// RunFont 字体设置
type RunFont struct {
	ASCII    string `xml:"ascii,attr,omitempty"`
	HAnsi    string `xml:"hAnsi,attr,omitempty"`
	EastAsia string `xml:"eastAsia,attr,omitempty"`
}

// Table 表格
type Table struct {
	Rows []TableRow `xml:"tr"`
}

// TableRow 表格行
type TableRow struct {
	Cells []TableCell `xml:"tc"`
}

// TableCell 表格单元格
type TableCell struct {
	Paragraphs []Paragraph `xml:"p"`
}

// 这些元素不包含可见正文
var skippedInline = map[string]bool{
	"del":               true,
	"moveFrom":          true,
	"drawing":           true,
	"pict":              true,
	"object":            true,
	"AlternateContent":  true,
	"fldChar":           true,
	"instrText":         true,
	"delText":           true,
	"commentReference":  true,
	"footnoteReference": true,
}

// UnmarshalXML 按文档顺序收集段落中的 run，包括嵌套在超链接、智能标签中的 run
func (p *Paragraph) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "pPr":
				var props ParagraphProps
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				p.Properties = &props
			case t.Name.Local == "r":
				var r Run
				if err := d.DecodeElement(&r, &t); err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case skippedInline[t.Name.Local]:
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				depth++
			}
		case xml.EndElement:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}

// UnmarshalXML 把 w:t、w:tab、w:br 转换为纯文本
func (r *Run) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var sb strings.Builder
	depth := 0
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "rPr":
				var props RunProps
				if err := d.DecodeElement(&props, &t); err != nil {
					return err
				}
				r.Properties = &props
			case t.Name.Local == "t":
				var s string
				if err := d.DecodeElement(&s, &t); err != nil {
					return err
				}
				sb.WriteString(s)
			case t.Name.Local == "tab":
				sb.WriteByte('\t')
				if err := d.Skip(); err != nil {
					return err
				}
			case t.Name.Local == "br" || t.Name.Local == "cr":
				sb.WriteByte('\n')
				if err := d.Skip(); err != nil {
					return err
				}
			case skippedInline[t.Name.Local]:
				if err := d.Skip(); err != nil {
					return err
				}
			default:
				depth++
			}
		case xml.EndElement:
			if depth == 0 {
				r.Text = sb.String()
				return nil
			}
			depth--
		}
	}
}

// Text 段落的纯文本
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// StyleID 段落样式 ID
func (p Paragraph) StyleID() string {
	if p.Properties == nil || p.Properties.Style == nil {
		return ""
	}
	return p.Properties.Style.Val
}

// Alignment 段落对齐方式
func (p Paragraph) Alignment() string {
	if p.Properties == nil || p.Properties.Align == nil {
		return ""
	}
	return p.Properties.Align.Val
}

// Text 单元格文本，多个段落以换行连接
func (c TableCell) Text() string {
	parts := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		parts[i] = p.Text()
	}
	return strings.Join(parts, "\n")
}

// Format 把 run 属性转换为格式提示
func (rp *RunProps) Format(text string) document.RunFormat {
	rf := document.RunFormat{Text: text}
	if rp == nil {
		return rf
	}
	rf.Bold = onOff(rp.Bold)
	rf.Italic = onOff(rp.Italic)
	rf.Underline = rp.Underline != nil && rp.Underline.Val != "" && rp.Underline.Val != "none"
	if rp.Size != nil {
		if halfPoints, err := strconv.ParseFloat(rp.Size.Val, 64); err == nil {
			rf.FontSize = halfPoints / 2
		}
	}
	if rp.Font != nil {
		switch {
		case rp.Font.ASCII != "":
			rf.FontName = rp.Font.ASCII
		case rp.Font.EastAsia != "":
			rf.FontName = rp.Font.EastAsia
		default:
			rf.FontName = rp.Font.HAnsi
		}
	}
	return rf
}

// onOff 解析 OOXML 开关属性，没有 w:val 表示开启
func onOff(v *ValAttr) bool {
	if v == nil {
		return false
	}
	switch v.Val {
	case "", "1", "true", "on":
		return true
	default:
		return false
	}
}

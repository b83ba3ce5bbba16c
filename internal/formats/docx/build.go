package docx

import (
	_ "embed"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
	"github.com/nerdneilsfield/go-office-translator/internal/formats/ooxml"
)

//go:embed styles.xml
var stylesXML []byte

// knownStyles styles.xml 中定义的段落样式，其他样式 ID 写出时丢弃
var knownStyles = map[string]bool{
	"Title":    true,
	"Heading1": true,
	"Heading2": true,
	"Heading3": true,
}

// paraOptions 段落级属性
type paraOptions struct {
	Style      string
	Alignment  string
	IndentLeft int // 单位 twip
}

// builder 用 etree 构造一个最小的 WordprocessingML 包
type builder struct {
	doc  *etree.Document
	body *etree.Element
}

func newBuilder() *builder {
	doc := ooxml.NewXMLDocument()
	root := doc.CreateElement("w:document")
	root.CreateAttr("xmlns:w", WordprocessingMLNamespace)
	root.CreateAttr("xmlns:r", ooxml.NSOfficeDocRels)
	return &builder{doc: doc, body: root.CreateElement("w:body")}
}

// paragraph 在正文末尾追加段落
func (b *builder) paragraph(opts paraOptions) *etree.Element {
	return newParagraph(b.body, opts)
}

func newParagraph(parent *etree.Element, opts paraOptions) *etree.Element {
	if !knownStyles[opts.Style] {
		opts.Style = ""
	}
	p := parent.CreateElement("w:p")
	if opts.Style == "" && opts.Alignment == "" && opts.IndentLeft == 0 {
		return p
	}
	ppr := p.CreateElement("w:pPr")
	if opts.Style != "" {
		ppr.CreateElement("w:pStyle").CreateAttr("w:val", opts.Style)
	}
	if opts.IndentLeft > 0 {
		ppr.CreateElement("w:ind").CreateAttr("w:left", strconv.Itoa(opts.IndentLeft))
	}
	if opts.Alignment != "" {
		ppr.CreateElement("w:jc").CreateAttr("w:val", opts.Alignment)
	}
	return p
}

// addRun 追加一个 run，文本中的制表符和换行转换为 w:tab 与 w:br
func addRun(p *etree.Element, text string, rf document.RunFormat) {
	r := p.CreateElement("w:r")
	writeRunProps(r, rf)

	var sb strings.Builder
	flush := func() {
		if sb.Len() == 0 {
			return
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(sb.String())
		sb.Reset()
	}
	for _, ch := range text {
		switch ch {
		case '\t':
			flush()
			r.CreateElement("w:tab")
		case '\n':
			flush()
			r.CreateElement("w:br")
		case '\r':
		default:
			sb.WriteRune(ch)
		}
	}
	flush()
}

func writeRunProps(r *etree.Element, rf document.RunFormat) {
	if rf.FontName == "" && rf.FontSize <= 0 && !rf.Bold && !rf.Italic && !rf.Underline {
		return
	}
	rpr := r.CreateElement("w:rPr")
	if rf.FontName != "" {
		fonts := rpr.CreateElement("w:rFonts")
		fonts.CreateAttr("w:ascii", rf.FontName)
		fonts.CreateAttr("w:hAnsi", rf.FontName)
		fonts.CreateAttr("w:eastAsia", rf.FontName)
	}
	if rf.Bold {
		rpr.CreateElement("w:b")
	}
	if rf.Italic {
		rpr.CreateElement("w:i")
	}
	if rf.FontSize > 0 {
		rpr.CreateElement("w:sz").CreateAttr("w:val", strconv.Itoa(int(rf.FontSize*2+0.5)))
	}
	if rf.Underline {
		rpr.CreateElement("w:u").CreateAttr("w:val", "single")
	}
}

// table 追加一个带边框的表格，cells 为稠密网格，空字符串表示空白单元格
func (b *builder) table(cells [][]string) {
	cols := 0
	for _, row := range cells {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return
	}

	tbl := b.body.CreateElement("w:tbl")
	tblPr := tbl.CreateElement("w:tblPr")
	tblPr.CreateElement("w:tblStyle").CreateAttr("w:val", "TableGrid")
	width := tblPr.CreateElement("w:tblW")
	width.CreateAttr("w:w", "0")
	width.CreateAttr("w:type", "auto")
	borders := tblPr.CreateElement("w:tblBorders")
	for _, side := range []string{"top", "left", "bottom", "right", "insideH", "insideV"} {
		border := borders.CreateElement("w:" + side)
		border.CreateAttr("w:val", "single")
		border.CreateAttr("w:sz", "4")
		border.CreateAttr("w:space", "0")
		border.CreateAttr("w:color", "auto")
	}

	grid := tbl.CreateElement("w:tblGrid")
	colWidth := strconv.Itoa(9000 / cols)
	for i := 0; i < cols; i++ {
		grid.CreateElement("w:gridCol").CreateAttr("w:w", colWidth)
	}

	for _, row := range cells {
		tr := tbl.CreateElement("w:tr")
		for c := 0; c < cols; c++ {
			tc := tr.CreateElement("w:tc")
			tcPr := tc.CreateElement("w:tcPr")
			tcw := tcPr.CreateElement("w:tcW")
			tcw.CreateAttr("w:w", colWidth)
			tcw.CreateAttr("w:type", "dxa")

			text := ""
			if c < len(row) {
				text = row[c]
			}
			// 单元格至少需要一个段落
			for _, line := range strings.Split(text, "\n") {
				p := newParagraph(tc, paraOptions{})
				if line != "" {
					addRun(p, line, document.RunFormat{})
				}
			}
		}
	}
	// 相邻表格之间需要段落分隔，否则 Word 会把它们合并
	b.paragraph(paraOptions{})
}

// writeTo 写出完整的 docx 包
func (b *builder) writeTo(w io.Writer) error {
	sect := b.body.CreateElement("w:sectPr")
	pgSz := sect.CreateElement("w:pgSz")
	pgSz.CreateAttr("w:w", "11906")
	pgSz.CreateAttr("w:h", "16838")
	pgMar := sect.CreateElement("w:pgMar")
	for _, side := range []string{"top", "right", "bottom", "left"} {
		pgMar.CreateAttr("w:"+side, "1440")
	}

	pkg := ooxml.NewWriter(w)
	if err := pkg.AddRelationships("", []ooxml.Relationship{
		{ID: "rId1", Type: ooxml.RelTypeOfficeDoc, Target: "word/document.xml"},
	}); err != nil {
		return err
	}
	if err := pkg.AddXML("word/document.xml", mainContentType, b.doc); err != nil {
		return err
	}
	if err := pkg.AddRelationships("word/document.xml", []ooxml.Relationship{
		{ID: "rId1", Type: ooxml.RelTypeStyles, Target: "styles.xml"},
	}); err != nil {
		return err
	}
	if err := pkg.AddBytes("word/styles.xml", stylesContentType, stylesXML); err != nil {
		return err
	}
	return pkg.Close()
}

package pptx

import (
	"embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/nerdneilsfield/go-office-translator/internal/document"
	"github.com/nerdneilsfield/go-office-translator/internal/formats/ooxml"
)

//go:embed template/*.xml
var templateFS embed.FS

const (
	nsDrawing      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPresentation = "http://schemas.openxmlformats.org/presentationml/2006/main"

	contentTypePrefix       = "application/vnd.openxmlformats-officedocument."
	presentationContentType = contentTypePrefix + "presentationml.presentation.main+xml"
	slideContentType        = contentTypePrefix + "presentationml.slide+xml"
	layoutContentType       = contentTypePrefix + "presentationml.slideLayout+xml"
	masterContentType       = contentTypePrefix + "presentationml.slideMaster+xml"
	themeContentType        = contentTypePrefix + "theme+xml"

	// 4:3 幻灯片尺寸，单位 EMU
	slideWidth  = 9144000
	slideHeight = 6858000
)

// slideSpec 待生成的一张幻灯片
type slideSpec struct {
	Title []document.Fragment
	Body  []document.Fragment
}

// newSlide 使用“标题和内容”版式生成幻灯片，只包含非空的占位符
func newSlide(spec slideSpec) *etree.Document {
	doc := ooxml.NewXMLDocument()
	root := doc.CreateElement("p:sld")
	root.CreateAttr("xmlns:a", nsDrawing)
	root.CreateAttr("xmlns:r", ooxml.NSOfficeDocRels)
	root.CreateAttr("xmlns:p", nsPresentation)

	tree := root.CreateElement("p:cSld").CreateElement("p:spTree")
	nvGrp := tree.CreateElement("p:nvGrpSpPr")
	cNvPr := nvGrp.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", "1")
	cNvPr.CreateAttr("name", "")
	nvGrp.CreateElement("p:cNvGrpSpPr")
	nvGrp.CreateElement("p:nvPr")
	tree.CreateElement("p:grpSpPr")

	id := 2
	if len(spec.Title) > 0 {
		sp := placeholder(tree, id, "Title 1", "title", "")
		for _, frag := range spec.Title {
			writeParagraph(sp, frag)
		}
		id++
	}
	if len(spec.Body) > 0 {
		sp := placeholder(tree, id, "Content Placeholder 2", "", "1")
		for _, frag := range spec.Body {
			writeParagraph(sp, frag)
		}
	}

	root.CreateElement("p:clrMapOvr").CreateElement("a:masterClrMapping")
	return doc
}

// placeholder 追加一个占位符形状，返回其 txBody
func placeholder(tree *etree.Element, id int, name, phType, phIdx string) *etree.Element {
	sp := tree.CreateElement("p:sp")
	nv := sp.CreateElement("p:nvSpPr")
	cNvPr := nv.CreateElement("p:cNvPr")
	cNvPr.CreateAttr("id", strconv.Itoa(id))
	cNvPr.CreateAttr("name", name)
	nv.CreateElement("p:cNvSpPr").CreateElement("a:spLocks").CreateAttr("noGrp", "1")
	ph := nv.CreateElement("p:nvPr").CreateElement("p:ph")
	if phType != "" {
		ph.CreateAttr("type", phType)
	}
	if phIdx != "" {
		ph.CreateAttr("idx", phIdx)
	}
	sp.CreateElement("p:spPr")

	body := sp.CreateElement("p:txBody")
	body.CreateElement("a:bodyPr")
	body.CreateElement("a:lstStyle")
	return body
}

// writeParagraph 译文与原 run 拼接一致时逐个还原 run，否则整段使用首个 run 的格式
func writeParagraph(body *etree.Element, frag document.Fragment) {
	f := frag.Formatting()
	p := body.CreateElement("a:p")
	if f.Alignment != "" || f.Level > 0 {
		ppr := p.CreateElement("a:pPr")
		if f.Level > 0 {
			ppr.CreateAttr("lvl", strconv.Itoa(f.Level))
		}
		if f.Alignment != "" {
			ppr.CreateAttr("algn", f.Alignment)
		}
	}

	switch {
	case len(f.Runs) > 0 && f.RunsText() == frag.Text:
		for _, run := range f.Runs {
			addRun(p, run.Text, run)
		}
	case len(f.Runs) > 0:
		addRun(p, frag.Text, f.Runs[0])
	default:
		addRun(p, frag.Text, document.RunFormat{})
	}
}

// addRun 文本中的换行转换为 a:br
func addRun(p *etree.Element, text string, rf document.RunFormat) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			p.CreateElement("a:br")
		}
		if line == "" {
			continue
		}
		r := p.CreateElement("a:r")
		writeRunProps(r, rf)
		r.CreateElement("a:t").SetText(line)
	}
}

func writeRunProps(r *etree.Element, rf document.RunFormat) {
	rpr := r.CreateElement("a:rPr")
	rpr.CreateAttr("lang", "ko-KR")
	if rf.FontSize > 0 {
		rpr.CreateAttr("sz", strconv.Itoa(int(rf.FontSize*100+0.5)))
	}
	if rf.Bold {
		rpr.CreateAttr("b", "1")
	}
	if rf.Italic {
		rpr.CreateAttr("i", "1")
	}
	if rf.Underline {
		rpr.CreateAttr("u", "sng")
	}
	if rf.FontName != "" {
		rpr.CreateElement("a:latin").CreateAttr("typeface", rf.FontName)
		rpr.CreateElement("a:ea").CreateAttr("typeface", rf.FontName)
	}
}

// newPresentation 生成 presentation.xml，幻灯片关系 ID 从 rId3 开始
func newPresentation(slides int) *etree.Document {
	doc := ooxml.NewXMLDocument()
	root := doc.CreateElement("p:presentation")
	root.CreateAttr("xmlns:a", nsDrawing)
	root.CreateAttr("xmlns:r", ooxml.NSOfficeDocRels)
	root.CreateAttr("xmlns:p", nsPresentation)

	master := root.CreateElement("p:sldMasterIdLst").CreateElement("p:sldMasterId")
	master.CreateAttr("id", "2147483648")
	master.CreateAttr("r:id", "rId1")

	if slides > 0 {
		list := root.CreateElement("p:sldIdLst")
		for i := 0; i < slides; i++ {
			el := list.CreateElement("p:sldId")
			el.CreateAttr("id", strconv.Itoa(256+i))
			el.CreateAttr("r:id", slideRelID(i))
		}
	}

	size := root.CreateElement("p:sldSz")
	size.CreateAttr("cx", strconv.Itoa(slideWidth))
	size.CreateAttr("cy", strconv.Itoa(slideHeight))
	size.CreateAttr("type", "screen4x3")
	notes := root.CreateElement("p:notesSz")
	notes.CreateAttr("cx", strconv.Itoa(slideHeight))
	notes.CreateAttr("cy", strconv.Itoa(slideWidth))
	return doc
}

func slideRelID(i int) string {
	return "rId" + strconv.Itoa(i+3)
}

func slidePart(i int) string {
	return fmt.Sprintf("ppt/slides/slide%d.xml", i+1)
}

// writePackage 写出模板部件和生成的幻灯片
func writePackage(w io.Writer, slides []*etree.Document) error {
	pkg := ooxml.NewWriter(w)

	if err := pkg.AddRelationships("", []ooxml.Relationship{
		{ID: "rId1", Type: ooxml.RelTypeOfficeDoc, Target: "ppt/presentation.xml"},
	}); err != nil {
		return err
	}

	presRels := []ooxml.Relationship{
		{ID: "rId1", Type: ooxml.RelTypeSlideMaster, Target: "slideMasters/slideMaster1.xml"},
		{ID: "rId2", Type: ooxml.RelTypeTheme, Target: "theme/theme1.xml"},
	}
	for i := range slides {
		presRels = append(presRels, ooxml.Relationship{
			ID:     slideRelID(i),
			Type:   ooxml.RelTypeSlide,
			Target: fmt.Sprintf("slides/slide%d.xml", i+1),
		})
	}
	if err := pkg.AddXML("ppt/presentation.xml", presentationContentType, newPresentation(len(slides))); err != nil {
		return err
	}
	if err := pkg.AddRelationships("ppt/presentation.xml", presRels); err != nil {
		return err
	}

	templates := []struct {
		part, file, contentType string
		rels                    []ooxml.Relationship
	}{
		{
			part: "ppt/slideMasters/slideMaster1.xml", file: "slideMaster1.xml", contentType: masterContentType,
			rels: []ooxml.Relationship{
				{ID: "rId1", Type: ooxml.RelTypeSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
				{ID: "rId2", Type: ooxml.RelTypeTheme, Target: "../theme/theme1.xml"},
			},
		},
		{
			part: "ppt/slideLayouts/slideLayout1.xml", file: "slideLayout1.xml", contentType: layoutContentType,
			rels: []ooxml.Relationship{
				{ID: "rId1", Type: ooxml.RelTypeSlideMaster, Target: "../slideMasters/slideMaster1.xml"},
			},
		},
		{part: "ppt/theme/theme1.xml", file: "theme1.xml", contentType: themeContentType},
	}
	for _, t := range templates {
		data, err := templateFS.ReadFile("template/" + t.file)
		if err != nil {
			return err
		}
		if err := pkg.AddBytes(t.part, t.contentType, data); err != nil {
			return err
		}
		if len(t.rels) > 0 {
			if err := pkg.AddRelationships(t.part, t.rels); err != nil {
				return err
			}
		}
	}

	layoutRel := []ooxml.Relationship{
		{ID: "rId1", Type: ooxml.RelTypeSlideLayout, Target: "../slideLayouts/slideLayout1.xml"},
	}
	for i, slide := range slides {
		part := slidePart(i)
		if err := pkg.AddXML(part, slideContentType, slide); err != nil {
			return err
		}
		if err := pkg.AddRelationships(part, layoutRel); err != nil {
			return err
		}
	}
	return pkg.Close()
}

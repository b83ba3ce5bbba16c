// Package ooxml 提供读写 Office Open XML 压缩包的公共工具
package ooxml

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/beevik/etree"
)

// 单个部件允许读取的最大字节数，防止压缩炸弹
const maxPartSize = 256 << 20

// 常用命名空间
const (
	NSRelationships    = "http://schemas.openxmlformats.org/package/2006/relationships"
	NSContentTypes     = "http://schemas.openxmlformats.org/package/2006/content-types"
	NSOfficeDocRels    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	RelTypeOfficeDoc   = NSOfficeDocRels + "/officeDocument"
	RelTypeStyles      = NSOfficeDocRels + "/styles"
	RelTypeSlide       = NSOfficeDocRels + "/slide"
	RelTypeSlideLayout = NSOfficeDocRels + "/slideLayout"
	RelTypeSlideMaster = NSOfficeDocRels + "/slideMaster"
	RelTypeTheme       = NSOfficeDocRels + "/theme"
)

// Package 只读打开的压缩包
type Package struct {
	zr    *zip.ReadCloser
	files map[string]*zip.File
}

// Open 打开 OOXML 文件
func Open(filename string) (*Package, error) {
	zr, err := zip.OpenReader(filename)
	if err != nil {
		return nil, err
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[strings.TrimPrefix(f.Name, "/")] = f
	}
	return &Package{zr: zr, files: files}, nil
}

// Close 关闭压缩包
func (p *Package) Close() error {
	return p.zr.Close()
}

// Has 判断部件是否存在
func (p *Package) Has(name string) bool {
	_, ok := p.files[name]
	return ok
}

// ReadPart 读取一个部件的全部内容
func (p *Package) ReadPart(name string) ([]byte, error) {
	f, ok := p.files[name]
	if !ok {
		return nil, fmt.Errorf("part %s not found", name)
	}
	if f.UncompressedSize64 > maxPartSize {
		return nil, fmt.Errorf("part %s too large: %d bytes", name, f.UncompressedSize64)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxPartSize))
}

// DecodePart 把 XML 部件解码到 v
func (p *Package) DecodePart(name string, v any) error {
	data, err := p.ReadPart(name)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Relationship 部件之间的关系
type Relationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type relationships struct {
	Items []Relationship `xml:"Relationship"`
}

// Relationships 读取部件的关系表，Target 解析为包内绝对路径
func (p *Package) Relationships(part string) (map[string]Relationship, error) {
	dir, file := path.Split(part)
	relsName := path.Join(dir, "_rels", file+".rels")
	var rels relationships
	if err := p.DecodePart(relsName, &rels); err != nil {
		return nil, err
	}
	out := make(map[string]Relationship, len(rels.Items))
	for _, r := range rels.Items {
		r.Target = ResolveTarget(dir, r.Target)
		out[r.ID] = r
	}
	return out, nil
}

// ResolveTarget 把相对目标解析为包内路径
func ResolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(baseDir, target))
}

// Writer 逐个写入部件并在关闭时生成 [Content_Types].xml
type Writer struct {
	zw        *zip.Writer
	overrides [][2]string
	defaults  [][2]string
}

// NewWriter 创建压缩包写入器
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		zw: zip.NewWriter(w),
		defaults: [][2]string{
			{"rels", "application/vnd.openxmlformats-package.relationships+xml"},
			{"xml", "application/xml"},
		},
	}
}

// AddXML 写入一个 etree 文档，contentType 非空时登记到内容类型表
func (w *Writer) AddXML(name, contentType string, doc *etree.Document) error {
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	return w.AddBytes(name, contentType, buf.Bytes())
}

// AddBytes 写入原始字节
func (w *Writer) AddBytes(name, contentType string, data []byte) error {
	f, err := w.zw.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	if contentType != "" {
		w.overrides = append(w.overrides, [2]string{"/" + name, contentType})
	}
	return nil
}

// AddRelationships 写入某个部件的关系表
func (w *Writer) AddRelationships(part string, rels []Relationship) error {
	doc := NewXMLDocument()
	root := doc.CreateElement("Relationships")
	root.CreateAttr("xmlns", NSRelationships)
	for _, r := range rels {
		el := root.CreateElement("Relationship")
		el.CreateAttr("Id", r.ID)
		el.CreateAttr("Type", r.Type)
		el.CreateAttr("Target", r.Target)
	}
	dir, file := path.Split(part)
	return w.AddXML(path.Join(dir, "_rels", file+".rels"), "", doc)
}

// Close 写入内容类型表并结束压缩包
func (w *Writer) Close() error {
	doc := NewXMLDocument()
	types := doc.CreateElement("Types")
	types.CreateAttr("xmlns", NSContentTypes)
	for _, d := range w.defaults {
		el := types.CreateElement("Default")
		el.CreateAttr("Extension", d[0])
		el.CreateAttr("ContentType", d[1])
	}
	for _, o := range w.overrides {
		el := types.CreateElement("Override")
		el.CreateAttr("PartName", o[0])
		el.CreateAttr("ContentType", o[1])
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return err
	}
	f, err := w.zw.Create("[Content_Types].xml")
	if err != nil {
		return err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		return err
	}
	return w.zw.Close()
}

// NewXMLDocument 创建带 standalone 声明的 XML 文档
func NewXMLDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8" standalone="yes"`)
	return doc
}

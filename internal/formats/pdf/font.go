package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// coreFont 找不到可用 TTF 时使用的内置字体，不支持中日韩字符
const coreFont = "Helvetica"

// DefaultFontCandidates 默认按顺序尝试的韩文字体
var DefaultFontCandidates = []string{
	"C:/Windows/Fonts/malgun.ttf",
	"/usr/share/fonts/truetype/nanum/NanumGothic.ttf",
	"/usr/share/fonts/truetype/noto/NotoSansKR-Regular.ttf",
	"/usr/share/fonts/noto-cjk/NotoSansKR-Regular.ttf",
	"/Library/Fonts/NanumGothic.ttf",
	"/System/Library/Fonts/Supplemental/AppleGothic.ttf",
}

// Font 渲染使用的字体
type Font struct {
	Family string
	Path   string
	data   []byte
}

// IsCore 是否为内置字体
func (f Font) IsCore() bool {
	return f.data == nil
}

// ResolveFont 依次尝试候选 TTF 文件，全部失败时退回内置字体
func ResolveFont(candidates []string, logger *zap.Logger) Font {
	for _, path := range candidates {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Debug("font not available", zap.String("path", path), zap.Error(err))
			continue
		}
		family := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

		if err := probeFont(family, data); err != nil {
			logger.Warn("failed to load font", zap.String("path", path), zap.Error(err))
			continue
		}
		logger.Info("using pdf font", zap.String("family", family), zap.String("path", path))
		return Font{Family: family, Path: path, data: data}
	}

	logger.Warn("no usable ttf font found, falling back to core font; non-latin text may not render",
		zap.String("family", coreFont))
	return Font{Family: coreFont}
}

// probeFont 在临时文档上注册并选用字体
// 解析失败时 gofpdf 只打印信息而不记录错误，因此以 SetFont 的结果为准
func probeFont(family string, data []byte) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("parse font: %v", p)
		}
	}()
	probe := gofpdf.New("P", "pt", "A4", "")
	probe.AddUTF8FontFromBytes(family, "", data)
	probe.SetFont(family, "", fontSize)
	return probe.Error()
}

// apply 在文档上注册字体，返回可用于 SetFont 的字体族名
func (f Font) apply(doc *gofpdf.Fpdf) string {
	if f.IsCore() {
		return coreFont
	}
	doc.AddUTF8FontFromBytes(f.Family, "", f.data)
	if doc.Err() {
		doc.ClearError()
		return coreFont
	}
	return f.Family
}

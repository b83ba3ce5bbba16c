package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// DefaultNameTemplate 默认输出文件名模板
const DefaultNameTemplate = "[원본명]_translated_[언어코드]"

// 文件名模板中的占位符，每个占位符都有一个英文别名
var nameTokens = []struct {
	names []string
	value func(n NameFields) string
}{
	{[]string{"[원본명]", "[name]"}, func(n NameFields) string { return n.Original }},
	{[]string{"[언어코드]", "[lang]"}, func(n NameFields) string { return n.LangCode }},
	{[]string{"[날짜]", "[date]"}, func(n NameFields) string { return n.Time.Format("20060102") }},
	{[]string{"[시간]", "[time]"}, func(n NameFields) string { return n.Time.Format("150405") }},
}

// NameFields 展开文件名模板所需的值
type NameFields struct {
	Original string // 不含扩展名的原文件名
	LangCode string
	Time     time.Time
}

// ExpandName 展开文件名模板，不含扩展名
// transliterate 为 true 时原文件名先转写为 ASCII
func ExpandName(template string, fields NameFields, transliterate bool) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultNameTemplate
	}
	if transliterate {
		if s := slug.Make(fields.Original); s != "" {
			fields.Original = s
		}
	}

	name := template
	for _, tok := range nameTokens {
		value := tok.value(fields)
		for _, n := range tok.names {
			name = strings.ReplaceAll(name, n, value)
		}
	}
	return cleanFileName(name)
}

// OutputPath 返回输出文件的完整路径
func OutputPath(dir, template, input, ext string, fields NameFields, transliterate bool) string {
	if fields.Original == "" {
		base := filepath.Base(input)
		fields.Original = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return filepath.Join(dir, ExpandName(template, fields, transliterate)+ext)
}

// cleanFileName 去掉路径分隔符和 Windows 不允许的字符
func cleanFileName(in string) string {
	out := strings.TrimLeft(strings.Map(func(r rune) rune {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`+string(os.PathListSeparator), r) {
			return -1
		}
		return r
	}, in), ". ")
	if out == "" {
		out = "_translated_"
	}
	return out
}

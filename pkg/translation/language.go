package translation

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/nerdneilsfield/go-office-translator/pkg/providers"
)

// AutoDetect 源语言自动检测
const AutoDetect = "auto"

// UnknownLanguage 无法识别的语言在文件名中使用的代码
const UnknownLanguage = "unknown"

// 自动检测的各种写法
var autoNames = []string{"", "auto", "automatic", "detect", "자동", "자동 감지", "자동감지", "自动检测"}

// knownTags 界面中列出的语言，可以用英文名或本地名称选择
var knownTags = []language.Tag{
	language.Korean,
	language.English,
	language.Japanese,
	language.Chinese,
	language.SimplifiedChinese,
	language.TraditionalChinese,
	language.Spanish,
	language.French,
	language.German,
	language.Italian,
	language.Portuguese,
	language.Russian,
	language.Vietnamese,
	language.Thai,
	language.Indonesian,
}

var nameIndex = buildNameIndex()

func buildNameIndex() map[string]string {
	index := make(map[string]string)
	english := display.English.Languages()
	for _, tag := range knownTags {
		code := tag.String()
		for _, name := range []string{english.Name(tag), display.Self.Name(tag), code} {
			if name == "" {
				continue
			}
			key := strings.ToLower(name)
			if _, exists := index[key]; !exists {
				index[key] = code
			}
		}
	}
	return index
}

// NormalizeLanguage 把语言名称或代码规范为 BCP 47 代码
// 自动检测的写法返回 AutoDetect
func NormalizeLanguage(s string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, name := range autoNames {
		if key == name {
			return AutoDetect, nil
		}
	}
	if code, ok := nameIndex[key]; ok {
		return code, nil
	}

	tag, err := language.Parse(strings.ReplaceAll(key, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
	}
	if base, conf := tag.Base(); conf == language.No || base.String() == "und" {
		return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, s)
	}
	return tag.String(), nil
}

// LanguageCode 返回用于文件名的语言代码，无法识别时返回 UnknownLanguage
func LanguageCode(s string) string {
	code, err := NormalizeLanguage(s)
	if err != nil {
		return UnknownLanguage
	}
	return code
}

// DisplayName 语言代码的显示名称
func DisplayName(code string) string {
	if code == AutoDetect {
		return "Auto Detect"
	}
	return providers.LanguageName(code)
}

package providers

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Domain 翻译领域，决定 LLM 提供商使用的提示词
type Domain string

const (
	DomainGeneral Domain = "general"
	DomainArt     Domain = "art"
	DomainTech    Domain = "tech"
	DomainSport   Domain = "sport"
)

// Domains 所有领域
var Domains = []Domain{DomainGeneral, DomainArt, DomainTech, DomainSport}

// ParseDomain 解析领域名称，空字符串视为 general
func ParseDomain(s string) (Domain, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DomainGeneral, nil
	}
	for _, d := range Domains {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown domain %q (want general, art, tech or sport)", s)
}

var domainInstructions = map[Domain]string{
	DomainGeneral: "다음 텍스트를 자연스럽고 정확하게 %s로 번역해주세요:",
	DomainArt:     "다음은 예술 관련 텍스트입니다. 창의적이고 감성적인 표현을 살려 %s로 번역해주세요:",
	DomainTech:    "다음은 기술 문서입니다. 전문 용어의 정확성을 최우선으로 하여 %s로 번역해주세요. 필요시 원어를 병기해주세요:",
	DomainSport:   "다음은 스포츠 관련 텍스트입니다. 전문 용어와 관용구를 적절히 살려 %s로 번역해주세요:",
}

// SystemPrompt 单条翻译的系统提示词
const SystemPrompt = `당신은 전문 번역가입니다. 다음 지침을 따라 번역해주세요:
1. 원문의 의미와 뉘앙스를 정확히 전달하세요
2. 문맥에 맞는 자연스러운 표현을 사용하세요
3. 전문 용어는 해당 분야의 표준 번역을 사용하세요
4. 번역 결과만 출력하고 부가 설명은 하지 마세요`

// LanguageName 返回语言代码的英文名称，供提示词使用；无法识别时原样返回
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// Instruction 返回领域对应的翻译指令，未知领域按 general 处理
func Instruction(domain Domain, targetLang string) string {
	tmpl, ok := domainInstructions[domain]
	if !ok {
		tmpl = domainInstructions[DomainGeneral]
	}
	return fmt.Sprintf(tmpl, LanguageName(targetLang))
}

// UserPrompt 单条翻译的用户提示词
func UserPrompt(domain Domain, targetLang, text string) string {
	return Instruction(domain, targetLang) + "\n\n원문: " + text
}

// BatchSystemPrompt 合并批量翻译的系统提示词
func BatchSystemPrompt(targetLang string) string {
	return fmt.Sprintf(`당신은 전문 번역가입니다. 여러 개의 텍스트를 %s로 번역해주세요.
각 텍스트는 %s과 %s 표시로 감싸져 있으며, 번역 결과도 같은 번호의 표시로 감싸서 출력해주세요.
표시 자체는 번역하거나 변경하지 마세요.
번역 결과만 출력하고 부가 설명은 하지 마세요.`,
		LanguageName(targetLang), fmt.Sprintf(markerStart, 1), fmt.Sprintf(markerEnd, 1))
}

// BatchUserPrompt 合并批量翻译的用户提示词
func BatchUserPrompt(domain Domain, targetLang string, texts []string) string {
	return Instruction(domain, targetLang) + "\n\n" + FormatBatch(texts)
}

// PostProcess 清理模型输出：去掉包裹整段的双引号，模型原样返回原文时保留原文
func PostProcess(translated, original string) string {
	translated = strings.TrimSpace(translated)
	if len(translated) >= 2 && strings.HasPrefix(translated, `"`) && strings.HasSuffix(translated, `"`) {
		translated = translated[1 : len(translated)-1]
	}
	if strings.EqualFold(translated, original) {
		return original
	}
	return translated
}

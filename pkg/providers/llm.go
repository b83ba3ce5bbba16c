package providers

import (
	"context"
	"strings"
)

// 单条与合并请求的输出上限
const (
	SingleMaxTokens = 2000
	BatchMaxTokens  = 4000

	// DefaultLLMBatchSize 合并请求最多包含的文本条数
	DefaultLLMBatchSize = 5
)

// ChatFunc 发送一轮 system/user 对话，返回模型输出
type ChatFunc func(ctx context.Context, system, user string, maxTokens int) (string, error)

// LLMTranslator 在对话接口之上实现单条翻译和合并批量翻译
type LLMTranslator struct {
	Chat      ChatFunc
	BatchSize int
}

// Translate 单条翻译，结果经过 PostProcess
func (t LLMTranslator) Translate(ctx context.Context, req *ProviderRequest) (string, error) {
	out, err := t.Chat(ctx, SystemPrompt, UserPrompt(req.Domain, req.TargetLanguage, req.Text), SingleMaxTokens)
	if err != nil {
		return "", err
	}
	return PostProcess(out, req.Text), nil
}

// TranslateBatch 把多条文本合并为一次请求，按编号标记拆回
// 空白文本不发送，直接得到空译文
func (t LLMTranslator) TranslateBatch(ctx context.Context, req *BatchRequest) ([]BatchItem, error) {
	items := make([]BatchItem, len(req.Texts))

	var (
		texts   []string
		indexes []int
	)
	for i, text := range req.Texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		texts = append(texts, text)
		indexes = append(indexes, i)
	}
	if len(texts) == 0 {
		return items, nil
	}

	out, err := t.Chat(ctx,
		BatchSystemPrompt(req.TargetLanguage),
		BatchUserPrompt(req.Domain, req.TargetLanguage, texts),
		BatchMaxTokens)
	if err != nil {
		return nil, err
	}

	for j, parsed := range ParseBatch(out, len(texts)) {
		i := indexes[j]
		if parsed.Err != nil {
			items[i].Err = parsed.Err
			continue
		}
		items[i].Text = PostProcess(parsed.Text, texts[j])
	}
	return items, nil
}

// MaxBatchSize 合并请求的条数上限
func (t LLMTranslator) MaxBatchSize() int {
	if t.BatchSize <= 0 {
		return DefaultLLMBatchSize
	}
	return t.BatchSize
}

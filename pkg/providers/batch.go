package providers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

const (
	markerStart = "@@NODE_START_%d@@"
	markerEnd   = "@@NODE_END_%d@@"
)

// ErrBatchItemMissing 合并响应中找不到某一项的译文
var ErrBatchItemMissing = errors.New("batch response is missing the item")

var (
	// 结束标记必须与开始标记编号一致
	markerPattern = regexp2.MustCompile(`(?s)@@NODE_START_(\d+)@@\s*(.*?)\s*@@NODE_END_\1@@`, 0)
	// 模型丢掉标记时退回到 [n] 行格式
	bracketPattern = regexp2.MustCompile(`(?m)^\s*\[(\d+)\]\s*(.*?)\s*$`, 0)
)

// FormatBatch 用带编号的标记包裹每条文本，编号从 1 开始
func FormatBatch(texts []string) string {
	var sb strings.Builder
	for i, text := range texts {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		n := i + 1
		fmt.Fprintf(&sb, markerStart+"\n%s\n"+markerEnd, n, text, n)
	}
	return sb.String()
}

// ParseBatch 从模型响应中按编号取回 n 条译文
// 重复编号以第一次出现为准，缺失的项带 ErrBatchItemMissing
func ParseBatch(response string, n int) []BatchItem {
	found := collect(markerPattern, response, n)
	if len(found) == 0 {
		found = collect(bracketPattern, response, n)
	}

	items := make([]BatchItem, n)
	for i := range items {
		text, ok := found[i+1]
		if !ok {
			items[i].Err = fmt.Errorf("item %d: %w", i+1, ErrBatchItemMissing)
			continue
		}
		items[i].Text = text
	}
	return items
}

func collect(re *regexp2.Regexp, s string, n int) map[int]string {
	found := make(map[int]string)
	m, _ := re.FindStringMatch(s)
	for m != nil {
		groups := m.Groups()
		idx, err := strconv.Atoi(groups[1].String())
		if err == nil && idx >= 1 && idx <= n {
			if _, dup := found[idx]; !dup {
				found[idx] = groups[2].String()
			}
		}
		m, _ = re.FindNextMatch(m)
	}
	return found
}

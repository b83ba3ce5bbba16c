package pdf

import (
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// 两行基线间距超过字号的该倍数时视为段落分隔
	paragraphGapFactor = 1.8
	// 同一字形间距超过字号的该比例时补一个空格
	wordGapFactor = 0.2
)

// textRow 一行文本
type textRow struct {
	Y        float64
	FontSize float64
	Font     string
	glyphs   []pdf.Text
}

// block 页面中的一个段落
type block struct {
	Text     string
	Font     string
	FontSize float64
}

// groupRows 按基线把字形归入行，行从上到下，行内从左到右
func groupRows(glyphs []pdf.Text) []textRow {
	sorted := make([]pdf.Text, 0, len(glyphs))
	for _, g := range glyphs {
		if g.S != "" {
			sorted = append(sorted, g)
		}
	}
	// PDF 坐标原点在左下角
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var rows []textRow
	for _, g := range sorted {
		if n := len(rows); n > 0 && sameRow(rows[n-1], g) {
			rows[n-1].glyphs = append(rows[n-1].glyphs, g)
			if g.FontSize > rows[n-1].FontSize {
				rows[n-1].FontSize = g.FontSize
			}
			continue
		}
		rows = append(rows, textRow{Y: g.Y, FontSize: g.FontSize, Font: g.Font, glyphs: []pdf.Text{g}})
	}
	for i := range rows {
		sort.SliceStable(rows[i].glyphs, func(a, b int) bool {
			return rows[i].glyphs[a].X < rows[i].glyphs[b].X
		})
	}
	return rows
}

func sameRow(row textRow, g pdf.Text) bool {
	tolerance := math.Max(row.FontSize, g.FontSize) * 0.3
	if tolerance < 1 {
		tolerance = 1
	}
	return math.Abs(row.Y-g.Y) <= tolerance
}

// text 拼接一行字形，字形之间有明显空隙时补空格
func (r textRow) text() string {
	var sb strings.Builder
	prevEnd := math.Inf(-1)
	for _, g := range r.glyphs {
		gap := g.X - prevEnd
		if sb.Len() > 0 && gap > r.FontSize*wordGapFactor &&
			!strings.HasSuffix(sb.String(), " ") && !strings.HasPrefix(g.S, " ") {
			sb.WriteByte(' ')
		}
		sb.WriteString(g.S)
		prevEnd = g.X + g.W
	}
	return sb.String()
}

// pageText 重建整页文本，段落之间以空行分隔
func pageText(rows []textRow) string {
	var sb strings.Builder
	for i, row := range rows {
		if i > 0 {
			sb.WriteByte('\n')
			if rows[i-1].Y-row.Y > paragraphGapFactor*math.Max(row.FontSize, rows[i-1].FontSize) {
				sb.WriteByte('\n')
			}
		}
		sb.WriteString(row.text())
	}
	return sb.String()
}

// splitBlocks 按空行切分段落，保留切分后的序号，空段落由调用方丢弃
func splitBlocks(glyphs []pdf.Text) []block {
	rows := groupRows(glyphs)
	if len(rows) == 0 {
		return nil
	}

	parts := strings.Split(pageText(rows), "\n\n")
	blocks := make([]block, len(parts))
	rowIdx := 0
	for i, part := range parts {
		blocks[i].Text = strings.TrimSpace(part)
		// 段落的字体取自其第一行
		if rowIdx < len(rows) {
			blocks[i].Font = rows[rowIdx].Font
			blocks[i].FontSize = rows[rowIdx].FontSize
		}
		rowIdx += strings.Count(part, "\n") + 1
	}
	return blocks
}

package document

// Formatting 片段的格式提示，零值表示没有可用信息
type Formatting struct {
	FontName  string  `json:"font_name,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty"`

	// Alignment 段落对齐方式，使用 OOXML 的取值（left、center、right、both 等）
	Alignment string `json:"alignment,omitempty"`
	Level     int    `json:"level,omitempty"`
	ShapeName string `json:"shape_name,omitempty"`

	// Runs 段落内按顺序排列的文本片段及其格式
	Runs []RunFormat `json:"runs,omitempty"`
}

// RunFormat 段落中的一段连续同格式文本
type RunFormat struct {
	Text      string  `json:"text"`
	FontName  string  `json:"font_name,omitempty"`
	FontSize  float64 `json:"font_size,omitempty"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty"`
}

// HasFont 是否记录了任何字体信息
func (f Formatting) HasFont() bool {
	return f.FontName != "" || f.FontSize > 0 || f.Bold || f.Italic || f.Underline
}

// RunsText 拼接所有 run 的文本
func (f Formatting) RunsText() string {
	n := 0
	for _, r := range f.Runs {
		n += len(r.Text)
	}
	buf := make([]byte, 0, n)
	for _, r := range f.Runs {
		buf = append(buf, r.Text...)
	}
	return string(buf)
}

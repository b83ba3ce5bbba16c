package pipeline

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// FileResult 单个文件的处理结果
type FileResult struct {
	Input      string        `json:"input"`
	Output     string        `json:"output,omitempty"`
	Fragments  int           `json:"fragments"`
	Translated int           `json:"translated"`
	Failed     int           `json:"failed"`
	Duration   time.Duration `json:"duration"`
	Err        error         `json:"-"`
}

// Succeeded 文件是否已成功写出
func (r FileResult) Succeeded() bool {
	return r.Err == nil && r.Output != ""
}

// Error 失败原因，成功时为空串
func (r FileResult) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Report 一次运行的汇总
type Report struct {
	Total     int
	Files     []FileResult
	Canceled  bool
	StartTime time.Time
	EndTime   time.Time

	fatal error
}

// Succeeded 成功的文件数
func (r *Report) Succeeded() int {
	n := 0
	for _, f := range r.Files {
		if f.Succeeded() {
			n++
		}
	}
	return n
}

// Outputs 成功写出的文件路径
func (r *Report) Outputs() []string {
	var out []string
	for _, f := range r.Files {
		if f.Succeeded() {
			out = append(out, f.Output)
		}
	}
	return out
}

// OK 至少一个文件成功时为 true
func (r *Report) OK() bool {
	return r.fatal == nil && r.Succeeded() > 0
}

// Summary 最终的完成提示
func (r *Report) Summary() string {
	return fmt.Sprintf("%d of %d files succeeded.", r.Succeeded(), r.Total)
}

// Err 合并运行级错误和所有文件的错误
func (r *Report) Err() error {
	err := r.fatal
	for _, f := range r.Files {
		if f.Err != nil {
			err = multierr.Append(err, f.Err)
		}
	}
	return err
}

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
	"github.com/mattn/go-runewidth"
	"github.com/pterm/pterm"

	"github.com/nerdneilsfield/go-office-translator/internal/pipeline"
)

// consoleProgress 把驱动事件显示为进度条和状态行
type consoleProgress struct {
	out     io.Writer
	width   int
	writer  progress.Writer
	files   *progress.Tracker
	current *progress.Tracker

	info    pterm.PrefixPrinter
	success pterm.PrefixPrinter
	failure pterm.PrefixPrinter
}

// newConsoleProgress 创建显示器；animate 为 false 时只输出状态行
func newConsoleProgress(out io.Writer, animate bool) *consoleProgress {
	width := pterm.GetTerminalWidth()
	if width <= 0 {
		width = 80
	}
	c := &consoleProgress{
		out:     out,
		width:   width,
		info:    *pterm.Info.WithWriter(out),
		success: *pterm.Success.WithWriter(out),
		failure: *pterm.Error.WithWriter(out),
	}
	if !animate {
		return c
	}

	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Colors = progress.StyleColorsExample
	pw.Style().Options.PercentFormat = "%4.1f%%"
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true
	pw.Style().Visibility.Value = true
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetMessageLength(24)
	pw.SetNumTrackersExpected(2)
	c.writer = pw
	go pw.Render()
	return c
}

// Handle 处理一个驱动事件
func (c *consoleProgress) Handle(e pipeline.Event) {
	switch e.Kind {
	case pipeline.EventStart:
		c.startFile(e)
	case pipeline.EventFragments:
		if c.current != nil {
			c.current.UpdateTotal(int64(e.Count))
			c.current.SetValue(int64(e.Done))
		}
	case pipeline.EventLog:
		c.log(e)
	case pipeline.EventProgress:
		if c.current != nil {
			if !c.current.IsErrored() {
				c.current.MarkAsDone()
			}
			c.current = nil
		}
		if c.files != nil {
			c.files.SetValue(int64(e.Processed))
		}
	case pipeline.EventComplete:
		c.finish(e)
	}
}

func (c *consoleProgress) startFile(e pipeline.Event) {
	if c.writer == nil {
		c.info.Println(c.fit(e.Message))
		return
	}
	if c.files == nil {
		c.files = &progress.Tracker{Message: "파일", Total: int64(e.Total), Units: progress.UnitsDefault}
		c.writer.AppendTracker(c.files)
	}
	c.current = &progress.Tracker{Message: c.fitTo(e.Message, 24), Total: 1, Units: progress.UnitsDefault}
	c.writer.AppendTracker(c.current)
}

func (c *consoleProgress) log(e pipeline.Event) {
	msg := c.fit(e.Message)
	if c.writer != nil {
		if e.Err != nil && c.current != nil {
			c.current.MarkAsErrored()
		}
		c.writer.Log("%s", msg)
		return
	}
	switch {
	case e.Err != nil:
		c.failure.Println(msg)
	case e.File != "":
		c.success.Println(msg)
	default:
		c.info.Println(msg)
	}
}

func (c *consoleProgress) finish(e pipeline.Event) {
	if c.writer != nil {
		if c.files != nil {
			c.files.MarkAsDone()
		}
		// 等待最后一帧渲染
		time.Sleep(150 * time.Millisecond)
		c.writer.Stop()
	}
	if e.Report == nil {
		return
	}
	summary := e.Report.Summary()
	if e.Report.OK() {
		c.success.Println(summary)
	} else {
		c.failure.Println(summary)
	}
	for _, out := range e.Report.Outputs() {
		fmt.Fprintf(c.out, "  %s\n", out)
	}
}

// fit 按终端显示宽度截断状态行
func (c *consoleProgress) fit(s string) string {
	return c.fitTo(s, c.width-12)
}

func (c *consoleProgress) fitTo(s string, w int) string {
	if w < 10 {
		w = 10
	}
	return runewidth.Truncate(s, w, "…")
}

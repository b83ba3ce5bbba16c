package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-office-translator/internal/config"
	"github.com/nerdneilsfield/go-office-translator/internal/history"
	"github.com/nerdneilsfield/go-office-translator/pkg/translation"
)

func newHistoryCommand(root *rootOptions) *cobra.Command {
	var (
		limit int
		clear bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "查看最近的翻译记录",
		Long: `查看最近的翻译记录（最新的在前）。

示例:
  translator history
  translator history --limit 3
  translator history --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(root.configFile)
			if err != nil {
				return err
			}
			store, err := history.Open(cfg.History.File, cfg.History.MaxItems, nil)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if clear {
				if err := store.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, color.GreenString("翻译历史已清空"))
				return nil
			}

			records := store.List(limit)
			title := color.New(color.FgCyan, color.Bold)
			title.Fprintf(out, "最近的翻译 (%d)\n", len(records))
			if len(records) == 0 {
				fmt.Fprintln(out, "没有翻译记录")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(out)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"#", "时间", "语言", "领域", "提供商", "格式", "结果", "文件"})
			for i, r := range records {
				t.AppendRow(table.Row{
					i + 1,
					r.Timestamp.Local().Format("2006-01-02 15:04:05"),
					fmt.Sprintf("%s → %s", translation.DisplayName(r.SourceLang), translation.DisplayName(r.TargetLang)),
					r.Domain,
					r.Provider,
					r.OutputFormat,
					resultCell(r),
					fileNames(r.Files),
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "最多显示的记录数 (0 表示全部)")
	cmd.Flags().BoolVar(&clear, "clear", false, "清空翻译历史")
	return cmd
}

func resultCell(r history.Record) string {
	s := fmt.Sprintf("%d/%d", r.SuccessCount, len(r.Files))
	switch {
	case r.Canceled:
		return color.YellowString(s + " (取消)")
	case r.SuccessCount == len(r.Files):
		return color.GreenString(s)
	case r.SuccessCount == 0:
		return color.RedString(s)
	default:
		return color.YellowString(s)
	}
}

func fileNames(files []history.FileRecord) string {
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f.Input)
	}
	return strings.Join(names, "\n")
}

package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/nerdneilsfield/go-office-translator/internal/config"
	"github.com/nerdneilsfield/go-office-translator/pkg/providers/factory"
)

const healthTimeout = 15 * time.Second

func newProvidersCommand(root *rootOptions) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "列出翻译提供商及其能力",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(root.configFile)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			header := table.Row{"提供商", "LLM", "合并批量", "领域提示", "需要密钥", "状态"}
			if check {
				header = append(header, "连接")
			}
			t.AppendHeader(header)

			for _, name := range factory.GetSupportedProviders() {
				p, err := factory.CreateProvider(name, cfg.Provider(name))
				if err != nil {
					row := table.Row{name, "", "", "", "", color.RedString(err.Error())}
					if check {
						row = append(row, "")
					}
					t.AppendRow(row)
					continue
				}

				caps := p.GetCapabilities()
				status := color.GreenString("就绪")
				if name == cfg.Translation.Provider {
					status = color.GreenString("就绪 (默认)")
				}
				row := table.Row{name, yesNo(caps.IsLLM), yesNo(caps.SupportsBatch), yesNo(caps.SupportsDomain), yesNo(caps.RequiresAPIKey), status}
				if check {
					ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
					if err := p.HealthCheck(ctx); err != nil {
						row = append(row, color.RedString(err.Error()))
					} else {
						row = append(row, color.GreenString("OK"))
					}
					cancel()
				}
				t.AppendRow(row)
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "检查每个提供商的连接")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "✓"
	}
	return "-"
}

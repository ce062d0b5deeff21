package commands

import (
	"fmt"

	"edarchive/internal/resources"
	"edarchive/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	flags := resourcesCmd.Flags()
	flags.Int64("course", 0, "The course id, overrides the config.")
	flags.String("output", "", "The folder resources are saved into.")
	rootCmd.AddCommand(resourcesCmd)
}

var resourcesCmd = &cobra.Command{
	Use:   "resources [--course <id>] [--output <dir>]",
	Short: "Downloads the lecture, homework, exam and discussion threads listed in the resource catalog.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		flags := cmd.Flags()
		if flags.Changed("course") {
			cfg.CourseId, _ = flags.GetInt64("course")
		}
		if flags.Changed("output") {
			cfg.Resources.Output, _ = flags.GetString("output")
		}

		client := login(ctx)

		fetcher := resources.NewFetcher(resources.FetcherOptions{
			CourseId: cfg.CourseId,
			Output:   cfg.Resources.Output,
			Catalog:  cfg.Resources.Catalog,
		}, client, client, tel)

		summary, results, err := fetcher.Run(ctx)
		if err != nil {
			serviceutil.Fatal("failed to fetch resources", err)
		}

		t := NewTable()
		t.AppendHeader(table.Row{"Category", "Item", "Thread", "", "Status", "Title"})
		for _, result := range results {
			t.AppendRow(table.Row{
				result.Category,
				result.Item,
				fmt.Sprintf("#%d", result.Number),
				result.Label,
				result.Status,
				truncate(result.Title, 40),
			})
		}
		t.SetColumnConfigs([]table.ColumnConfig{
			{Number: 1, AutoMerge: true},
			{Number: 2, AutoMerge: true},
		})
		t.Render()

		fmt.Printf(
			"Threads fetched: %d, failed: %d, attachments: %d\n",
			len(summary.Fetched),
			len(summary.Failed),
			len(summary.Attachments),
		)
		if len(summary.Failed) > 0 {
			fmt.Printf("Failed: %v\n", summary.Failed)
		}
		fmt.Printf("Output directory: %s\n", absPath(cfg.Resources.Output))
	},
}

package commands

import (
	"fmt"

	"edarchive/internal/components/chrono"
	"edarchive/internal/participation"
	"edarchive/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	flags := processCmd.Flags()
	flags.String("input", "", "The folder threads were downloaded into.")
	flags.String("output", "", "The json file to write.")
	flags.String("website", "", "The data.js file to write for the website.")
	rootCmd.AddCommand(processCmd)
}

func printCounts(header string, counts []participation.Count) {
	t := NewTable()
	t.AppendHeader(table.Row{header, "Posts"})
	for _, count := range counts {
		t.AppendRow(table.Row{count.Name, count.Posts})
	}
	t.Render()
}

var processCmd = &cobra.Command{
	Use:   "process [--input <dir>] [--output <file.json>] [--website <data.js>]",
	Short: "Extracts the participation A posts of a download folder into the website data.",
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		opts := cfg.Process
		if flags.Changed("input") {
			opts.Input, _ = flags.GetString("input")
		}
		if flags.Changed("output") {
			opts.Output, _ = flags.GetString("output")
		}
		if flags.Changed("website") {
			opts.Website, _ = flags.GetString("website")
		}

		dataset, err := participation.NewProcessor(tel).Process(opts.Input)
		if err != nil {
			serviceutil.Fatal("failed to read download folder", err)
		}
		fmt.Printf("Found %d participation A posts\n", dataset.TotalCount)

		printCounts("LLM", dataset.LlmCounts())
		printCounts("Homework", dataset.HomeworkCounts())
		fmt.Printf("Unique authors: %d\n", len(dataset.Authors))
		fmt.Printf("Posts with external links: %d\n", dataset.WithLinks())
		fmt.Printf("Posts with student profiles: %d\n", dataset.WithProfiles())

		err = participation.WriteData(opts.Output, dataset)
		if err != nil {
			serviceutil.Fatal("failed to write data", err)
		}
		fmt.Printf("Data saved to %s\n", opts.Output)

		err = participation.WriteDataJs(opts.Website, dataset, chrono.NewStandardImpl().Now())
		if err != nil {
			serviceutil.Fatal("failed to write website data", err)
		}
		fmt.Printf("Generated %s\n", opts.Website)
	},
}

package commands

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"edarchive/internal/archive"
	"edarchive/internal/components/chrono"
	"edarchive/internal/edapi"
	"edarchive/internal/threadfilter"
	"edarchive/pkg/htmlutil"
	"edarchive/pkg/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const (
	downloadPageSize  = 100
	downloadMaxOffset = 10000
)

func init() {
	flags := downloadCmd.Flags()
	flags.Int64("course", 0, "The course id, overrides the config.")
	flags.String("category", "", "Only keep threads in this category, an empty value keeps all.")
	flags.String("title", "", "Only keep threads whose title matches this, an empty value keeps all.")
	flags.Float64("threshold", 0, "The similarity threshold (0 to 1) for fuzzy title matches.")
	flags.Int("limit", 0, "The maximum amount of threads to download, 0 downloads all.")
	flags.String("output", "", "The folder threads are saved into.")
	flags.Bool("full", false, "Fetch every thread by id before saving it.")
	rootCmd.AddCommand(downloadCmd)
}

// applyDownloadFlags overrides the config with the flags that were set.
func applyDownloadFlags(cmd *cobra.Command, c *Config) {
	flags := cmd.Flags()
	if flags.Changed("course") {
		c.CourseId, _ = flags.GetInt64("course")
	}
	if flags.Changed("category") {
		c.Download.Category, _ = flags.GetString("category")
	}
	if flags.Changed("title") {
		c.Download.Title, _ = flags.GetString("title")
	}
	if flags.Changed("threshold") {
		c.Download.Threshold, _ = flags.GetFloat64("threshold")
	}
	if flags.Changed("limit") {
		c.Download.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("output") {
		c.Download.Output, _ = flags.GetString("output")
	}
	if flags.Changed("full") {
		c.Download.Full, _ = flags.GetBool("full")
	}
}

var downloadCmd = &cobra.Command{
	Use:   "download [--course <id>] [--category <name>] [--title <pattern>] [--limit <n>] [--output <dir>]",
	Short: "Downloads the threads of a course that match the filters, with their attachments.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		applyDownloadFlags(cmd, &cfg)
		opts := cfg.Download

		client := login(ctx)

		threads, err := client.ListAllThreads(ctx, cfg.CourseId, downloadPageSize, downloadMaxOffset)
		if err != nil {
			serviceutil.Fatal("failed to list threads", err)
		}
		slog.Info("fetched threads", "course", cfg.CourseId, "count", len(threads))

		filtered := threadfilter.Filter(threads, threadfilter.Options{
			Category:  opts.Category,
			Title:     opts.Title,
			Threshold: opts.Threshold,
			Limit:     opts.Limit,
		}, tel)
		slog.Info("threads to download", "count", len(filtered), "category", opts.Category, "title", opts.Title)
		if len(filtered) == 0 {
			fmt.Println("No threads to download.")
			return
		}

		archiver := archive.NewArchiver(opts.Output, client, chrono.NewStandardImpl(), tel)

		t := NewTable()
		t.AppendHeader(table.Row{"Id", "Title", "Folder", "New files", "Present", "Failed"})

		downloaded := 0
		for i, thread := range filtered {
			if ctx.Err() != nil {
				break
			}
			slog.Info("downloading", "n", fmt.Sprintf("%d/%d", i+1, len(filtered)), "id", thread.Id, "title", thread.Title)

			if opts.Full {
				full, err := client.GetThread(ctx, thread.Id)
				if err != nil {
					continue
				}
				thread = full
			}

			stats := archiver.Save(ctx, thread, cfg.CourseId)
			downloaded += stats.FilesDownloaded
			t.AppendRow(table.Row{
				stats.ThreadId,
				truncate(stats.Title, 50),
				filepath.Base(stats.Folder),
				stats.FilesDownloaded,
				stats.FilesPresent,
				stats.FilesFailed,
			})
		}

		t.AppendFooter(table.Row{"", fmt.Sprintf("%d threads", len(filtered)), "", downloaded, "", ""})
		t.Render()
		fmt.Printf("Output directory: %s\n", absPath(opts.Output))
	},
}

func truncate(text string, n int) string {
	text = htmlutil.CleanText(text)
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n-1]) + "…"
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

var _ archive.Downloader = (*edapi.Client)(nil)

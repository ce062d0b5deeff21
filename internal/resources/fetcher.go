// Package resources fetches the threads a course's summary post points at
// (lecture notes, homework, old exams, discussions) into a folder per item.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"edarchive/internal/archive"
	"edarchive/internal/components/assert"
	"edarchive/internal/components/telemetry"
	"edarchive/internal/edapi"
	"edarchive/pkg/jsonutil"
)

const (
	report_fetcher_list  = "fetcher.list"
	report_fetcher_fetch = "fetcher.fetch"
	report_fetcher_save  = "fetcher.save"
)

const (
	PageSize    = 100
	MaxOffset   = 5000
	SummaryFile = "download_summary.json"
)

// ThreadSource is the part of the api client the fetcher uses.
//
// note: fault injection point
type ThreadSource interface {
	ListAllThreads(ctx context.Context, courseId int64, pageSize, maxOffset int) ([]edapi.Thread, error)
	GetThread(ctx context.Context, threadId int64) (edapi.Thread, error)
}

// Summary is written to download_summary.json at the end of a run.
type Summary struct {
	Fetched     []int64  `json:"fetched"`
	Failed      []int64  `json:"failed"`
	Attachments []string `json:"attachments"`
}

const (
	StatusFetched = "fetched"
	StatusMissing = "missing"
	StatusFailed  = "failed"
)

// Result is the outcome for a single thread of the catalog.
type Result struct {
	Category string
	Item     string
	Number   int64
	Label    string
	Title    string
	Status   string
}

type FetcherOptions struct {
	CourseId int64
	Output   string
	Catalog  Catalog
}

type Fetcher struct {
	opts   FetcherOptions
	source ThreadSource
	files  archive.Downloader
	tel    telemetry.API
}

func NewFetcher(opts FetcherOptions, source ThreadSource, files archive.Downloader, tel telemetry.API) *Fetcher {
	assert.NotEmptyStr(opts.Output)
	assert.NotNil(source)
	assert.NotNil(files)
	assert.NotNil(tel)

	if len(opts.Catalog) == 0 {
		opts.Catalog = DefaultCatalog()
	}
	return &Fetcher{
		opts:   opts,
		source: source,
		files:  files,
		tel:    telemetry.NewScopedAPI("resources", tel),
	}
}

// Label names a thread's role inside its item: homework items hold the
// questions followed by the solution.
func Label(category string, index, count int) string {
	if category != HomeworkCategory {
		return ""
	}
	if index == count-1 {
		return "Solution"
	}
	return fmt.Sprintf("Q%d", index+1)
}

// numberIndex maps thread numbers to the listed threads, threads without a
// number are left out.
func numberIndex(threads []edapi.Thread) map[int64]edapi.Thread {
	index := make(map[int64]edapi.Thread, len(threads))
	for _, thread := range threads {
		if thread.Number == 0 {
			continue
		}
		index[thread.Number] = thread
	}
	return index
}

// Run fetches every thread of the catalog. Threads that are missing from the
// course or fail to fetch are recorded as failed and skipped.
func (f *Fetcher) Run(ctx context.Context) (Summary, []Result, error) {
	summary := Summary{
		Fetched:     []int64{},
		Failed:      []int64{},
		Attachments: []string{},
	}

	listed, err := f.source.ListAllThreads(ctx, f.opts.CourseId, PageSize, MaxOffset)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_list, err, f.opts.CourseId)
		return summary, nil, fmt.Errorf("list threads: %w", err)
	}
	byNumber := numberIndex(listed)

	var missing []int64
	required := f.opts.Catalog.Numbers()
	for _, n := range required {
		if _, ok := byNumber[n]; !ok {
			missing = append(missing, n)
		}
	}
	f.tel.ReportCount("threads.required", int64(len(required)))
	f.tel.ReportCount("threads.missing", int64(len(missing)))
	if len(missing) > 0 {
		shown := missing
		if len(shown) > 20 {
			shown = shown[:20]
		}
		f.tel.ReportWarning(report_fetcher_list, fmt.Errorf("threads missing from course"), shown)
	}

	err = os.MkdirAll(f.opts.Output, 0755)
	if err != nil {
		return summary, nil, fmt.Errorf("create output folder: %w", err)
	}

	var results []Result
	for _, category := range f.opts.Catalog {
		for _, item := range category.Items {
			dir := filepath.Join(f.opts.Output, category.Name, item.Name)
			err := os.MkdirAll(dir, 0755)
			if err != nil {
				f.tel.ReportBroken(report_fetcher_save, err, dir)
				summary.Failed = append(summary.Failed, item.Numbers...)
				continue
			}

			for i, number := range item.Numbers {
				result := Result{
					Category: category.Name,
					Item:     item.Name,
					Number:   number,
					Label:    Label(category.Name, i, len(item.Numbers)),
				}

				listedThread, ok := byNumber[number]
				if !ok {
					result.Status = StatusMissing
					summary.Failed = append(summary.Failed, number)
					results = append(results, result)
					continue
				}

				attachments, err := f.fetchThread(ctx, dir, number, listedThread.Id, &result)
				if err != nil {
					result.Status = StatusFailed
					summary.Failed = append(summary.Failed, number)
					results = append(results, result)
					continue
				}

				result.Status = StatusFetched
				summary.Fetched = append(summary.Fetched, number)
				summary.Attachments = append(summary.Attachments, attachments...)
				results = append(results, result)
			}
		}
	}

	err = jsonutil.WriteFile(filepath.Join(f.opts.Output, SummaryFile), summary)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_save, fmt.Errorf("write summary: %w", err))
	}

	f.tel.ReportCount("threads.fetched", int64(len(summary.Fetched)))
	f.tel.ReportCount("threads.failed", int64(len(summary.Failed)))
	return summary, results, nil
}

// fetchThread saves the full document of a thread as thread_<number>.json in
// dir along with the files its content links to.
func (f *Fetcher) fetchThread(ctx context.Context, dir string, number, threadId int64, result *Result) ([]string, error) {
	thread, err := f.source.GetThread(ctx, threadId)
	if err != nil {
		f.tel.ReportWarning(report_fetcher_fetch, err, number)
		return nil, err
	}
	result.Title = thread.Title

	raw := thread.Raw
	if len(raw) == 0 {
		raw, err = json.Marshal(thread)
		if err != nil {
			return nil, err
		}
	}

	dest := filepath.Join(dir, fmt.Sprintf("thread_%d.json", number))
	err = jsonutil.WriteRaw(dest, raw)
	if err != nil {
		f.tel.ReportBroken(report_fetcher_save, err, dest)
		return nil, err
	}

	stats := archive.DownloadAttachments(ctx, f.files, dir, archive.FileTags(thread.Content), f.tel)
	saved := append(stats.Present, stats.Downloaded...)
	return saved, nil
}

// Package threadfilter narrows a course listing down to the threads worth
// archiving.
package threadfilter

import (
	"encoding/json"
	"fmt"
	"strings"

	"edarchive/internal/components/telemetry"
	"edarchive/internal/edapi"
)

const (
	report_filter_category = "filter.category"
	report_filter_title    = "filter.title"
)

// categoryFields are the fields a thread's category has been found under.
var categoryFields = []string{
	"category",
	"channel",
	"channel_name",
	"category_name",
	"forum",
	"forum_name",
}

const DefaultThreshold = 0.6

type Options struct {
	// Category is compared case-insensitively, empty means any category.
	Category string
	// Title is matched with a Matcher, empty means any title.
	Title     string
	Threshold float64
	// Limit caps the amount of threads returned, 0 means no cap.
	Limit int
}

// Filter applies the category filter, then the title filter, then the limit.
// Threads with an id that was already seen are dropped.
func Filter(threads []edapi.Thread, opts Options, tel telemetry.API) []edapi.Thread {
	tel = telemetry.NewScopedAPI("threadfilter", tel)

	filtered := dedupe(threads)

	if opts.Category != "" {
		filtered = FilterByCategory(filtered, opts.Category, tel)
		tel.ReportCount("threads.in-category", int64(len(filtered)))
	}

	if opts.Title != "" {
		threshold := opts.Threshold
		if threshold <= 0 {
			threshold = DefaultThreshold
		}
		matcher := NewMatcher(opts.Title, threshold)

		var matched []edapi.Thread
		for _, thread := range filtered {
			if matcher.Match(thread.Title) {
				matched = append(matched, thread)
				continue
			}
			tel.ReportDebug(report_filter_title, "excluded", thread.Id, thread.Title)
		}
		filtered = matched
		tel.ReportCount("threads.title-matched", int64(len(filtered)))
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}
	return filtered
}

func dedupe(threads []edapi.Thread) []edapi.Thread {
	seen := make(map[int64]struct{}, len(threads))
	out := make([]edapi.Thread, 0, len(threads))
	for _, thread := range threads {
		if _, ok := seen[thread.Id]; ok {
			continue
		}
		seen[thread.Id] = struct{}{}
		out = append(out, thread)
	}
	return out
}

// FilterByCategory keeps the threads whose category equals `category`, ignoring
// case. The field holding the category is detected on the first thread, when
// no known field is present the threads are returned unfiltered.
func FilterByCategory(threads []edapi.Thread, category string, tel telemetry.API) []edapi.Thread {
	if len(threads) == 0 {
		return threads
	}

	first, err := threads[0].Fields()
	if err != nil {
		tel.ReportWarning(report_filter_category, fmt.Errorf("read fields: %w", err))
		return threads
	}
	field := ""
	for _, name := range categoryFields {
		if _, ok := first[name]; ok {
			field = name
			break
		}
	}
	if field == "" {
		tel.ReportWarning(report_filter_category, fmt.Errorf("could not find a category field, skipping category filter"))
		return threads
	}

	var out []edapi.Thread
	for _, thread := range threads {
		fields, err := thread.Fields()
		if err != nil {
			continue
		}
		if strings.EqualFold(fieldString(fields[field]), category) {
			out = append(out, thread)
		}
	}
	return out
}

// fieldString renders a json value the way it would print, strings without
// their quotes.
func fieldString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var str string
	if json.Unmarshal(raw, &str) == nil {
		return str
	}
	return string(raw)
}

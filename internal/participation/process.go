// Package participation turns archived participation A posts into the data
// the participation website is built from.
package participation

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"edarchive/internal/archive"
	"edarchive/internal/components/assert"
	"edarchive/internal/components/telemetry"
	"edarchive/internal/edapi"
	"edarchive/pkg/htmlutil"
)

const (
	report_processor_folder   = "processor.folder"
	report_processor_document = "processor.document"
)

// Record is everything extracted from a single participation post.
type Record struct {
	Id                int64     `json:"id"`
	Title             string    `json:"title"`
	Author            string    `json:"author"`
	AuthorId          *int64    `json:"author_id"`
	LlmUsed           string    `json:"llm_used"`
	Homework          string    `json:"homework"`
	ParticipationType string    `json:"participation_type"`
	Content           string    `json:"content"`
	RawContent        string    `json:"raw_content"`
	CreatedAt         string    `json:"created_at"`
	ViewCount         int64     `json:"view_count"`
	ReplyCount        int64     `json:"reply_count"`
	Folder            string    `json:"folder"`
	Links             []string  `json:"links,omitempty"`
	Profiles          *Profiles `json:"profiles,omitempty"`
	Attachments       []string  `json:"attachments"`
	HasPdf            bool      `json:"has_pdf"`
}

// Dataset is the processed set of posts, grouped the ways the website
// browses them.
type Dataset struct {
	TotalCount int                `json:"total_count"`
	Threads    []Record           `json:"threads"`
	ByLlm      map[string][]int64 `json:"by_llm"`
	ByHomework map[string][]int64 `json:"by_homework"`
	Authors    []string           `json:"authors"`
}

type Processor struct {
	tel telemetry.API
}

func NewProcessor(tel telemetry.API) Processor {
	assert.NotNil(tel)
	return Processor{tel: telemetry.NewScopedAPI("participation", tel)}
}

// document returns the plain text of a post, rendering its markup when the
// api did not provide a plain text version.
func (p Processor) document(thread edapi.Thread) string {
	if thread.Document != "" || thread.Content == "" {
		return thread.Document
	}
	markdown, err := htmlutil.ToMarkdown(thread.Content)
	if err == nil {
		return markdown
	}
	p.tel.ReportWarning(report_processor_document, err, thread.Id)
	text, err := htmlutil.PlainText(thread.Content)
	if err != nil {
		return ""
	}
	return text
}

func listAttachments(folder string) ([]string, bool) {
	entries, err := os.ReadDir(filepath.Join(folder, archive.AttachmentsDir))
	if err != nil {
		return []string{}, false
	}
	names := []string{}
	hasPdf := false
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
		if strings.ToLower(filepath.Ext(entry.Name())) == ".pdf" {
			hasPdf = true
		}
	}
	return names, hasPdf
}

// ProcessFolder extracts the record of an archived thread folder. The second
// return is false when the folder holds no thread or the thread is not a
// participation A post.
func (p Processor) ProcessFolder(folder string) (Record, bool, error) {
	raw, err := os.ReadFile(filepath.Join(folder, archive.ThreadDataFile))
	if os.IsNotExist(err) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}

	var thread edapi.Thread
	err = json.Unmarshal(raw, &thread)
	if err != nil {
		return Record{}, false, fmt.Errorf("decode %s: %w", archive.ThreadDataFile, err)
	}
	if !IsParticipationA(thread.Title) {
		return Record{}, false, nil
	}

	document := p.document(thread)
	record := Record{
		Id:                thread.Id,
		Title:             thread.Title,
		Author:            thread.Author(),
		LlmUsed:           ExtractLlmName(thread.Title, document),
		Homework:          ExtractHomework(thread.Title, document),
		ParticipationType: ExtractParticipationType(thread.Title),
		Content:           document,
		RawContent:        thread.Content,
		CreatedAt:         thread.CreatedAt,
		ViewCount:         thread.ViewCount,
		ReplyCount:        thread.ReplyCount,
		Folder:            folder,
		Links:             ExtractLinks(thread.Content, document),
		Profiles:          ExtractProfiles(thread.Content, document),
	}
	if thread.User != nil {
		id := thread.User.Id
		record.AuthorId = &id
	}
	record.Attachments, record.HasPdf = listAttachments(folder)

	return record, true, nil
}

// Process extracts the records of every thread folder under root, newest
// first.
func (p Processor) Process(root string) (Dataset, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return Dataset{}, err
	}

	folders := 0
	records := []Record{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		folders++

		folder := filepath.Join(root, entry.Name())
		record, ok, err := p.ProcessFolder(folder)
		if err != nil {
			p.tel.ReportWarning(report_processor_folder, err, folder)
			continue
		}
		if ok {
			records = append(records, record)
		}
	}
	p.tel.ReportCount("folders.read", int64(folders))
	p.tel.ReportCount("posts.found", int64(len(records)))

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt > records[j].CreatedAt
	})
	return NewDataset(records), nil
}

// NewDataset groups records by model, homework and author.
func NewDataset(records []Record) Dataset {
	dataset := Dataset{
		TotalCount: len(records),
		Threads:    records,
		ByLlm:      map[string][]int64{},
		ByHomework: map[string][]int64{},
		Authors:    []string{},
	}

	seenAuthors := map[string]struct{}{}
	for _, record := range records {
		dataset.ByLlm[record.LlmUsed] = append(dataset.ByLlm[record.LlmUsed], record.Id)
		dataset.ByHomework[record.Homework] = append(dataset.ByHomework[record.Homework], record.Id)
		if _, ok := seenAuthors[record.Author]; !ok {
			seenAuthors[record.Author] = struct{}{}
			dataset.Authors = append(dataset.Authors, record.Author)
		}
	}
	return dataset
}

// Count is the amount of posts in a group.
type Count struct {
	Name  string
	Posts int
}

// groupCounts counts records per key in order of first appearance.
func groupCounts(records []Record, key func(Record) string) []Count {
	index := map[string]int{}
	var counts []Count
	for _, record := range records {
		k := key(record)
		i, ok := index[k]
		if !ok {
			i = len(counts)
			index[k] = i
			counts = append(counts, Count{Name: k})
		}
		counts[i].Posts++
	}
	return counts
}

// LlmCounts returns the posts per model, most used first.
func (d Dataset) LlmCounts() []Count {
	counts := groupCounts(d.Threads, func(r Record) string { return r.LlmUsed })
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Posts > counts[j].Posts
	})
	return counts
}

// HomeworkCounts returns the posts per homework in homework order.
func (d Dataset) HomeworkCounts() []Count {
	counts := groupCounts(d.Threads, func(r Record) string { return r.Homework })
	sort.SliceStable(counts, func(i, j int) bool {
		return HomeworkOrder(counts[i].Name) < HomeworkOrder(counts[j].Name)
	})
	return counts
}

// WithLinks is the amount of posts that link to external pages.
func (d Dataset) WithLinks() int {
	n := 0
	for _, record := range d.Threads {
		if len(record.Links) > 0 {
			n++
		}
	}
	return n
}

// WithProfiles is the amount of posts that link to their author's pages.
func (d Dataset) WithProfiles() int {
	n := 0
	for _, record := range d.Threads {
		if record.Profiles != nil {
			n++
		}
	}
	return n
}

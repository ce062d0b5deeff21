// Package archive dumps threads to the local filesystem, one folder per
// thread holding its metadata, content, raw document and attachments.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"edarchive/internal/components/assert"
	"edarchive/internal/components/chrono"
	"edarchive/internal/components/telemetry"
	"edarchive/internal/edapi"
	"edarchive/pkg/htmlutil"
	"edarchive/pkg/jsonutil"
)

const (
	report_archiver_save     = "archiver.save"
	report_archiver_markdown = "archiver.markdown"
)

const (
	MetadataFile   = "metadata.json"
	ContentFile    = "content.txt"
	XmlFile        = "content.xml"
	MarkdownFile   = "content.md"
	TitleFile      = "title.txt"
	ThreadDataFile = "full_thread_data.json"
	AttachmentsDir = "attachments"
)

// Metadata is the summary written next to a thread's raw document. Optional
// fields are copied from the document as is when present.
type Metadata struct {
	ThreadId     int64  `json:"thread_id"`
	Title        string `json:"title"`
	CourseId     int64  `json:"course_id"`
	DownloadedAt string `json:"downloaded_at"`

	Author       json.RawMessage `json:"author,omitempty"`
	CreatedAt    json.RawMessage `json:"created_at,omitempty"`
	UpdatedAt    json.RawMessage `json:"updated_at,omitempty"`
	Url          json.RawMessage `json:"url,omitempty"`
	Category     json.RawMessage `json:"category,omitempty"`
	Channel      json.RawMessage `json:"channel,omitempty"`
	ChannelName  json.RawMessage `json:"channel_name,omitempty"`
	CategoryName json.RawMessage `json:"category_name,omitempty"`
	ReplyCount   json.RawMessage `json:"reply_count,omitempty"`
	ViewCount    json.RawMessage `json:"view_count,omitempty"`
}

// Stats describes what Save wrote for a thread.
type Stats struct {
	ThreadId        int64
	Title           string
	Folder          string
	FilesDownloaded int
	FilesPresent    int
	FilesFailed     int
	Attachments     []string
}

type Archiver struct {
	root  string
	files Downloader
	time  chrono.API
	tel   telemetry.API
}

func NewArchiver(root string, files Downloader, time chrono.API, tel telemetry.API) *Archiver {
	assert.NotEmptyStr(root)
	assert.NotNil(files)
	assert.NotNil(time)
	assert.NotNil(tel)

	return &Archiver{
		root:  root,
		files: files,
		time:  time,
		tel:   telemetry.NewScopedAPI("archive", tel),
	}
}

func (a *Archiver) metadata(thread edapi.Thread, courseId int64) Metadata {
	meta := Metadata{
		ThreadId:     thread.Id,
		Title:        thread.Title,
		CourseId:     courseId,
		DownloadedAt: a.time.Now().Format(time.RFC3339),
	}

	fields, err := thread.Fields()
	if err != nil {
		return meta
	}
	meta.Author = fields["author"]
	meta.CreatedAt = fields["created_at"]
	meta.UpdatedAt = fields["updated_at"]
	meta.Url = fields["url"]
	meta.Category = fields["category"]
	meta.Channel = fields["channel"]
	meta.ChannelName = fields["channel_name"]
	meta.CategoryName = fields["category_name"]
	meta.ReplyCount = fields["reply_count"]
	meta.ViewCount = fields["view_count"]
	return meta
}

// looksLikeMarkup reports whether thread content is a markup document.
func looksLikeMarkup(content string) bool {
	if strings.HasPrefix(strings.TrimSpace(content), "<") {
		return true
	}
	head := content
	if len(head) > 100 {
		head = head[:100]
	}
	return strings.Contains(head, "<?xml")
}

func (a *Archiver) writeContent(folder, content string) error {
	if content == "" {
		return nil
	}

	err := os.WriteFile(filepath.Join(folder, ContentFile), []byte(content), 0644)
	if err != nil {
		return err
	}
	if !looksLikeMarkup(content) {
		return nil
	}

	err = os.WriteFile(filepath.Join(folder, XmlFile), []byte(content), 0644)
	if err != nil {
		return err
	}

	markdown, err := htmlutil.ToMarkdown(content)
	if err != nil {
		a.tel.ReportWarning(report_archiver_markdown, err, folder)
		return nil
	}
	return os.WriteFile(filepath.Join(folder, MarkdownFile), []byte(markdown), 0644)
}

// Save writes a thread into its folder under the archive root. A failing step
// is reported and ends the save, the stats of what was done so far are
// returned.
func (a *Archiver) Save(ctx context.Context, thread edapi.Thread, courseId int64) Stats {
	stats := Stats{
		ThreadId: thread.Id,
		Title:    thread.Title,
	}

	saveError := func(err error) Stats {
		a.tel.ReportBroken(report_archiver_save, err, thread.Id)
		return stats
	}

	folder, err := ThreadFolder(a.root, thread.Id, thread.Title)
	if err != nil {
		return saveError(fmt.Errorf("create folder: %w", err))
	}
	stats.Folder = folder

	err = jsonutil.WriteFile(filepath.Join(folder, MetadataFile), a.metadata(thread, courseId))
	if err != nil {
		return saveError(fmt.Errorf("write metadata: %w", err))
	}

	err = a.writeContent(folder, thread.Content)
	if err != nil {
		return saveError(fmt.Errorf("write content: %w", err))
	}

	err = os.WriteFile(filepath.Join(folder, TitleFile), []byte(thread.Title), 0644)
	if err != nil {
		return saveError(fmt.Errorf("write title: %w", err))
	}

	raw := thread.Raw
	if len(raw) == 0 {
		raw, err = json.Marshal(thread)
		if err != nil {
			return saveError(fmt.Errorf("encode thread: %w", err))
		}
	}
	err = jsonutil.WriteRaw(filepath.Join(folder, ThreadDataFile), raw)
	if err != nil {
		return saveError(fmt.Errorf("write thread data: %w", err))
	}

	attachments := DownloadAttachments(
		ctx,
		a.files,
		filepath.Join(folder, AttachmentsDir),
		Attachments(thread),
		a.tel,
	)
	stats.FilesDownloaded = len(attachments.Downloaded)
	stats.FilesPresent = len(attachments.Present)
	stats.FilesFailed = attachments.Failed
	stats.Attachments = attachments.Downloaded

	return stats
}

package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"edarchive/internal/components/telemetry"
	"edarchive/internal/edapi"
	"edarchive/pkg/jsonutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
)

const report_attachments_download = "attachments.download"

// Downloader fetches the file at a url into dest.
//
// note: fault injection point
type Downloader interface {
	Download(ctx context.Context, link, dest string) (int64, error)
}

// Attachment is a file referenced by a thread.
type Attachment struct {
	Name string `json:"name"`
	Url  string `json:"url"`
	Type string `json:"type"`
}

// attachmentFields are the thread fields that have been seen holding lists of
// attachments, the first non-empty one is used.
var attachmentFields = []string{
	"attachments",
	"files",
	"file_attachments",
	"media",
	"documents",
}

// Attachments lists the files a thread references, first the ones in its
// attachment fields then the `<file>` tags of its content.
func Attachments(thread edapi.Thread) []Attachment {
	var out []Attachment

	fields, err := thread.Fields()
	if err == nil {
		for _, field := range attachmentFields {
			items := attachmentItems(fields[field])
			if len(items) == 0 {
				continue
			}
			for _, item := range items {
				att, ok := decodeAttachment(item)
				if ok {
					out = append(out, att)
				}
			}
			break
		}
	}

	out = append(out, FileTags(thread.Content)...)
	return out
}

// attachmentItems returns the items of a list field, an object holding a
// `files` or `items` list is unwrapped.
func attachmentItems(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}

	var list []json.RawMessage
	if json.Unmarshal(raw, &list) == nil {
		return list
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(raw, &obj) != nil {
		return nil
	}
	for _, key := range []string{"files", "items"} {
		value, ok := obj[key]
		if !ok {
			continue
		}
		if json.Unmarshal(value, &list) == nil {
			return list
		}
		return nil
	}
	return nil
}

func firstString(obj map[string]json.RawMessage, keys ...string) string {
	for _, key := range keys {
		value, ok := obj[key]
		if !ok {
			continue
		}
		var str string
		json.Unmarshal(value, &str)
		return str
	}
	return ""
}

func decodeAttachment(item json.RawMessage) (Attachment, bool) {
	var link string
	if json.Unmarshal(item, &link) == nil {
		return Attachment{Url: link, Name: urlBase(link)}, true
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(item, &obj) != nil {
		return Attachment{}, false
	}
	return Attachment{
		Name: firstString(obj, "name", "filename", "title"),
		Url:  firstString(obj, "url", "download_url", "link"),
		Type: firstString(obj, "type", "content_type", "mime_type"),
	}, true
}

func urlBase(link string) string {
	parsed, err := url.Parse(link)
	if err != nil {
		return ""
	}
	base := path.Base(parsed.Path)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

// FileTags finds the `<file url=".." filename="..">` tags of a thread's
// content markup.
func FileTags(content string) []Attachment {
	if !strings.Contains(content, "<file") {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var out []Attachment
	doc.Find("file").Each(func(_ int, s *goquery.Selection) {
		link := s.AttrOr("url", "")
		if link == "" {
			return
		}
		name := s.AttrOr("filename", "")
		if name == "" {
			name = urlBase(link)
		}
		if name == "" {
			name = "file"
		}
		out = append(out, Attachment{Name: name, Url: link, Type: "file_from_xml"})
	})
	return out
}

// FileName is the name an attachment is saved under, `index` is its 1-based
// position among the thread's attachments.
func FileName(att Attachment, index int) string {
	name := att.Name
	if name == "" {
		name = fmt.Sprintf("attachment_%d", index)
	}

	if !strings.Contains(name, ".") {
		kind := strings.ToLower(att.Type)
		switch {
		case strings.Contains(kind, "pdf") || strings.HasSuffix(strings.ToLower(att.Url), ".pdf"):
			name += ".pdf"
		case strings.Contains(kind, "image"):
			ext := "jpg"
			if i := strings.LastIndex(kind, "/"); i >= 0 {
				ext = kind[i+1:]
			}
			name += "." + ext
		}
	}

	safe := SafeFileName(name)
	if safe == "" {
		return fmt.Sprintf("attachment_%d", index)
	}
	return safe
}

// SafeFileName keeps the letters, digits, dots, dashes, underscores and spaces
// of a name. Names made only of dots come back empty.
func SafeFileName(name string) string {
	var b strings.Builder
	for _, c := range name {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || c == '.' || c == '-' || c == '_' || c == ' ' {
			b.WriteRune(c)
		}
	}
	safe := strings.TrimSpace(b.String())
	if strings.Trim(safe, ".") == "" {
		return ""
	}
	return safe
}

// AttachmentStats summarizes a DownloadAttachments call.
type AttachmentStats struct {
	// Downloaded are the file names fetched by this call.
	Downloaded []string
	// Present are the file names that already existed and were not fetched.
	Present []string
	Failed  int
}

// SniffedFile maps the extensionless attachment names of a folder to the
// names they were renamed to after sniffing their content.
const SniffedFile = ".sniffed.json"

type sniffed map[string]string

func readSniffed(dir string) sniffed {
	out := sniffed{}
	contents, err := os.ReadFile(filepath.Join(dir, SniffedFile))
	if err != nil {
		return out
	}
	if json.Unmarshal(contents, &out) != nil {
		return sniffed{}
	}
	return out
}

// existing returns the name of the file already saved for `name` in dir. An
// extensionless attachment also counts when its own sniffed rename is there.
func existing(dir, name string, renames sniffed) (string, bool) {
	_, err := os.Stat(filepath.Join(dir, name))
	if err == nil {
		return name, true
	}
	renamed, ok := renames[name]
	if !ok {
		return "", false
	}
	_, err = os.Stat(filepath.Join(dir, renamed))
	if err != nil {
		return "", false
	}
	return renamed, true
}

// sniffExtension gives a file saved without an extension the one of its
// detected content type. The file keeps its name when the new one is taken
// on disk or by another attachment in `claimed`.
func sniffExtension(dest string, claimed map[string]struct{}) (string, error) {
	mtype, err := mimetype.DetectFile(dest)
	if err != nil {
		return dest, err
	}
	ext := mtype.Extension()
	if ext == "" {
		return dest, nil
	}
	renamed := dest + ext
	if _, taken := claimed[filepath.Base(renamed)]; taken {
		return dest, nil
	}
	if _, err := os.Stat(renamed); err == nil {
		return dest, nil
	}
	err = os.Rename(dest, renamed)
	if err != nil {
		return dest, err
	}
	return renamed, nil
}

// DownloadAttachments saves attachments into dir. An attachment whose file is
// already in dir is not fetched again, a failed download is reported and
// skipped.
func DownloadAttachments(ctx context.Context, files Downloader, dir string, atts []Attachment, tel telemetry.API) AttachmentStats {
	stats := AttachmentStats{}
	if len(atts) == 0 {
		return stats
	}

	err := os.MkdirAll(dir, 0755)
	if err != nil {
		tel.ReportBroken(report_attachments_download, fmt.Errorf("create folder: %w", err), dir)
		stats.Failed = len(atts)
		return stats
	}

	names := make([]string, len(atts))
	claimed := map[string]struct{}{}
	for i, att := range atts {
		names[i] = FileName(att, i+1)
		claimed[names[i]] = struct{}{}
	}
	renames := readSniffed(dir)
	renamed := false

	for i, att := range atts {
		if att.Url == "" {
			continue
		}
		name := names[i]

		if present, ok := existing(dir, name, renames); ok {
			tel.ReportDebug("attachment already present", present)
			stats.Present = append(stats.Present, present)
			continue
		}

		dest := filepath.Join(dir, name)
		size, err := files.Download(ctx, att.Url, dest)
		if err != nil {
			tel.ReportWarning(report_attachments_download, err, name)
			stats.Failed++
			continue
		}

		if filepath.Ext(name) == "" {
			sniffedDest, err := sniffExtension(dest, claimed)
			if err != nil {
				tel.ReportWarning(report_attachments_download, fmt.Errorf("sniff extension: %w", err), name)
			}
			if sniffedDest != dest {
				renames[name] = filepath.Base(sniffedDest)
				renamed = true
			}
			name = filepath.Base(sniffedDest)
		}

		tel.ReportDebug("attachment saved", name, size)
		stats.Downloaded = append(stats.Downloaded, name)
	}

	if renamed {
		err := jsonutil.WriteFile(filepath.Join(dir, SniffedFile), renames)
		if err != nil {
			tel.ReportWarning(report_attachments_download, fmt.Errorf("record sniffed names: %w", err), dir)
		}
	}
	return stats
}

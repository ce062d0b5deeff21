package participation

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"edarchive/pkg/jsonutil"
)

// WebsiteThread is a Record as the website reads it, the raw markup is left
// out.
type WebsiteThread struct {
	Id          int64     `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	LlmUsed     string    `json:"llm_used"`
	Provider    string    `json:"provider"`
	Homework    string    `json:"homework"`
	Content     string    `json:"content"`
	CreatedAt   string    `json:"created_at"`
	ViewCount   int64     `json:"view_count"`
	Attachments []string  `json:"attachments"`
	HasPdf      bool      `json:"has_pdf"`
	Links       []string  `json:"links,omitempty"`
	Profiles    *Profiles `json:"profiles,omitempty"`
}

type websiteData struct {
	TotalCount int             `json:"total_count"`
	Threads    []WebsiteThread `json:"threads"`
}

func websiteThreads(records []Record) []WebsiteThread {
	out := make([]WebsiteThread, len(records))
	for i, r := range records {
		attachments := r.Attachments
		if attachments == nil {
			attachments = []string{}
		}
		out[i] = WebsiteThread{
			Id:          r.Id,
			Title:       r.Title,
			Author:      r.Author,
			LlmUsed:     r.LlmUsed,
			Provider:    Provider(r.LlmUsed),
			Homework:    r.Homework,
			Content:     r.Content,
			CreatedAt:   r.CreatedAt,
			ViewCount:   r.ViewCount,
			Attachments: attachments,
			HasPdf:      r.HasPdf,
			Links:       r.Links,
			Profiles:    r.Profiles,
		}
	}
	return out
}

func mkdirParent(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0755)
}

// WriteData writes the dataset as json.
func WriteData(path string, dataset Dataset) error {
	err := mkdirParent(path)
	if err != nil {
		return err
	}
	return jsonutil.WriteFile(path, dataset)
}

var dataJsTemplate = template.Must(template.New("data.js").Parse(`// Special Participation A Data
// Generated by edarchive process
// Generated: {{ .Generated }}

const participationData = {{ .Data }};

// Extract unique LLMs (sorted alphabetically)
const uniqueLLMs = [...new Set(participationData.threads.map(t => t.llm_used))].sort();

// Extract unique homework assignments (sorted numerically)
const uniqueHWs = [...new Set(participationData.threads.map(t => t.homework))].sort((a, b) => {
  const numA = parseInt(a.replace(/\D/g, ''));
  const numB = parseInt(b.replace(/\D/g, ''));
  return numA - numB;
});

// Extract unique providers (sorted by count, descending)
const providerCounts = {};
participationData.threads.forEach(t => {
  providerCounts[t.provider] = (providerCounts[t.provider] || 0) + 1;
});
const uniqueProviders = Object.entries(providerCounts)
  .sort((a, b) => b[1] - a[1])
  .map(([provider]) => provider);

// Export for use in JS files
window.participationData = participationData;
window.uniqueLLMs = uniqueLLMs;
window.uniqueHWs = uniqueHWs;
window.uniqueProviders = uniqueProviders;
`))

// RenderDataJs renders the script the website loads its data from.
func RenderDataJs(dataset Dataset, generated time.Time) ([]byte, error) {
	threads := websiteThreads(dataset.Threads)
	data, err := jsonutil.Marshal(websiteData{
		TotalCount: len(threads),
		Threads:    threads,
	})
	if err != nil {
		return nil, err
	}

	buf := bytes.NewBuffer(nil)
	err = dataJsTemplate.Execute(buf, struct {
		Generated string
		Data      string
	}{
		Generated: generated.Format(time.RFC3339),
		Data:      string(data),
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteDataJs writes the website's data script.
func WriteDataJs(path string, dataset Dataset, generated time.Time) error {
	out, err := RenderDataJs(dataset, generated)
	if err != nil {
		return err
	}
	err = mkdirParent(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0644)
}

package participation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// llmPatterns find the model a post is about, more specific spellings first.
var llmPatterns = compileAll(
	`Claude\s*\(?\s*(?:Sonnet|Opus|Haiku)\s*[\d.]+\s*\)?`,
	`Claude\s+(?:Sonnet|Opus|Haiku)\s*[\d.]+`,
	`Claude\s*[\d.]+\s*(?:Sonnet|Opus|Haiku)`,
	`Claude\s+AI`,
	`Claude(?:\s|$)`,

	`Kimi\s*K2`,
	`Kimi\s*K\d+`,
	`Kimi(?:\s|$)`,

	`Llama\s*\d+\s*(?:Maverick|Scout)?`,
	`Llama\s*\d+`,

	`ChatGPT[-\s]*[oO]\d*`,
	`GPT[-\s]*[oO]\d+`,
	`GPT[-\s]*[oO](?:\s|$)`,

	`gpt[-\s]*oss[-\s]*\d+b?`,
	`GPT[-\s]*OSS[-\s]*\d+b?`,

	`(?:Chat)?GPT[-\s]*\d+(?:\.\d+)?\s*(?:Pro|Thinking|Extended(?:\s*Thinking)?)`,
	`(?:Chat)?GPT[-\s]*\d+(?:\.\d+)?[oO]?`,
	`ChatGPT\.?(?:\s|$)`,

	`Gemini\s*\(?\s*(?:Thinking\s*(?:with\s*)?)?(?:Pro|Flash|Fast)\s*\d*\s*\)?(?:\s*\(?\s*Thinking\s*\)?)?`,
	`Gemini[-\s]*Pro\s*\d+(?:\s*\(?\s*Thinking\s*\)?)?`,
	`Gemini\s*[\d.]+\s*(?:Pro|Flash|Ultra)?`,
	`Gemini\s*(?:Pro|Flash|Fast|Ultra)`,
	`Gemini(?:\s|$)`,

	`DeepSeek[-\s]*v?[\d.]+`,
	`DeepSeek(?:\s|$)`,

	`Gemma\s*[\d.]*\s*(?:\([^)]+\))?`,

	`Grok\s*[\d.]*`,
	`Mistral(?:\s*AI)?`,
	`NotebookLM`,
	`Notebook\s*LM`,
	`Qwen[\d.]*(?:-Max)?`,
	`Cursor`,
	`Windsurf`,
	`Perplexity(?:\s*Pro)?`,
	`Copilot`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, pattern := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + pattern)
	}
	return out
}

// ExtractLlmName returns the canonical name of the first model mentioned in
// the title or the document.
func ExtractLlmName(title, document string) string {
	text := title + " " + document
	for _, pattern := range llmPatterns {
		match := pattern.FindString(text)
		if match == "" {
			continue
		}
		return NormalizeLlmName(strings.TrimSpace(match))
	}
	return UnknownLlm
}

var homeworkPatterns = compileAll(
	`HW\s*0*(\d+)`,
	`Homework\s*0*(\d+)`,
	`HWK\s*0*(\d+)`,
)

// ExtractHomework returns the homework a post covers as `HW<n>`.
func ExtractHomework(title, document string) string {
	text := title + " " + document
	for _, pattern := range homeworkPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		n, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return fmt.Sprintf("HW%d", n)
	}
	return UnknownHomework
}

// HomeworkOrder sorts homework labels by number with unknown ones last.
func HomeworkOrder(homework string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(homework, "HW"))
	if err != nil {
		return 999
	}
	return n
}

var participationTypeRegex = regexp.MustCompile(`[Pp]articipation\s*([A-Ea-e])\b`)

// ExtractParticipationType returns the participation letter (A to E) of a
// title.
func ExtractParticipationType(title string) string {
	match := participationTypeRegex.FindStringSubmatch(title)
	if match == nil {
		return UnknownType
	}
	return strings.ToUpper(match[1])
}

var participationARegex = regexp.MustCompile(`[Pp]articipation\s*A\b`)

// metaPostMarkers mark posts about the participation pages themselves.
var metaPostMarkers = []string{"Website", "Red Team", "Blue Team"}

// IsParticipationA reports whether a title belongs to a participation A
// post.
func IsParticipationA(title string) bool {
	if !participationARegex.MatchString(title) {
		return false
	}
	for _, marker := range metaPostMarkers {
		if strings.Contains(title, marker) {
			return false
		}
	}
	return true
}

var linkPatterns = compileAll(
	`https?://claude\.ai/share/[a-zA-Z0-9-]+`,
	`https?://chat\.deepseek\.com/share/[a-zA-Z0-9]+`,
	`https?://grok\.com/share/[a-zA-Z0-9_-]+`,
	`https?://chat\.mistral\.ai/chat/[a-zA-Z0-9-]+`,
	`https?://chatgpt\.com/share/[a-zA-Z0-9-]+`,
	`https?://drive\.google\.com/[^\s<>"]+`,
	`https?://github\.com/[^\s<>"]+`,
	`https?://linkedin\.com/in/[^\s<>"]+`,
	`https?://www\.linkedin\.com/in/[^\s<>"]+`,
)

var linkTagRegex = regexp.MustCompile(`<link href="([^"]+)"`)

// ExtractLinks returns the external links of a post (chat shares, drive,
// github and linkedin pages, linked urls) without duplicates, in the order
// they were found.
func ExtractLinks(rawContent, document string) []string {
	text := rawContent + " " + document

	var found []string
	for _, pattern := range linkPatterns {
		found = append(found, pattern.FindAllString(text, -1)...)
	}
	for _, match := range linkTagRegex.FindAllStringSubmatch(text, -1) {
		found = append(found, match[1])
	}

	seen := map[string]struct{}{}
	var links []string
	for _, link := range found {
		link = strings.TrimRight(link, "/")
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		links = append(links, link)
	}
	return links
}

// Profiles are the author's own pages linked from a post.
type Profiles struct {
	Github   string `json:"github,omitempty"`
	Linkedin string `json:"linkedin,omitempty"`
	Website  string `json:"website,omitempty"`
}

var (
	githubProfileRegex   = regexp.MustCompile(`https?://github\.com/([a-zA-Z0-9_-]+)(?:[/\s"<)]|$)`)
	linkedinProfileRegex = regexp.MustCompile(`https?://(?:www\.)?linkedin\.com/in/([a-zA-Z0-9_-]+)`)
	websitePatterns      = compileAll(
		`(https?://[a-zA-Z0-9_-]+\.github\.io[^\s<>"]*)`,
		`(https?://[a-zA-Z0-9_-]+\.vercel\.app[^\s<>"]*)`,
		`(https?://[a-zA-Z0-9_-]+\.netlify\.app[^\s<>"]*)`,
	)
)

// ExtractProfiles finds the author's github, linkedin and personal site
// links, nil when there are none.
func ExtractProfiles(rawContent, document string) *Profiles {
	text := rawContent + " " + document
	profiles := Profiles{}

	if match := githubProfileRegex.FindStringSubmatch(text); match != nil {
		profiles.Github = "https://github.com/" + match[1]
	}
	if match := linkedinProfileRegex.FindStringSubmatch(text); match != nil {
		profiles.Linkedin = "https://linkedin.com/in/" + match[1]
	}
	for _, pattern := range websitePatterns {
		if match := pattern.FindStringSubmatch(text); match != nil {
			profiles.Website = strings.TrimRight(match[1], "/")
			break
		}
	}

	if profiles == (Profiles{}) {
		return nil
	}
	return &profiles
}

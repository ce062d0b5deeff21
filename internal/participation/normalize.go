package participation

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	UnknownLlm      = "Unknown LLM"
	UnknownHomework = "Unknown HW"
	UnknownType     = "Unknown"
	OtherProvider   = "Other"
)

type alias struct {
	key       string
	canonical string
}

// llmAliases maps lowercased spellings to canonical model names. Order
// matters: partial lookups take the first entry that overlaps the input.
var llmAliases = []alias{
	{"claude sonnet 4.5", "Claude Sonnet 4.5"},
	{"claude 4.5 sonnet", "Claude Sonnet 4.5"},
	{"claude (sonnet 4.5)", "Claude Sonnet 4.5"},
	{"claude opus 4.5", "Claude Opus 4.5"},
	{"claude 4.5 opus", "Claude Opus 4.5"},
	{"claude 4.5", "Claude"},
	{"claude ai", "Claude"},
	{"claude", "Claude"},

	{"chatgpt o", "ChatGPT o1"},
	{"chatgpt-o", "ChatGPT o1"},
	{"chatgpt o1", "ChatGPT o1"},
	{"chatgpt-o1", "ChatGPT o1"},
	{"gpt-o", "ChatGPT o1"},
	{"gpt o", "ChatGPT o1"},
	{"gpt-o1", "ChatGPT o1"},
	{"chatgpt o3", "ChatGPT o3"},
	{"chatgpt-o3", "ChatGPT o3"},
	{"gpt-o3", "ChatGPT o3"},
	{"chatgpt.", "ChatGPT"},

	{"gpt-5.1 pro", "GPT-5.1 Pro"},
	{"gpt 5.1 pro", "GPT-5.1 Pro"},
	{"chatgpt-5.1 pro", "GPT-5.1 Pro"},
	{"chatgpt 5.1 pro", "GPT-5.1 Pro"},
	{"gpt-5.1 thinking", "GPT-5.1 Thinking"},
	{"gpt 5.1 thinking", "GPT-5.1 Thinking"},
	{"gpt 5 thinking", "GPT-5.1 Thinking"},
	{"gpt5 thinking", "GPT-5.1 Thinking"},
	{"chatgpt 5.1 thinking", "GPT-5.1 Thinking"},
	{"gpt-5.1 extended", "GPT-5.1 Extended Thinking"},
	{"gpt 5.1 extended", "GPT-5.1 Extended Thinking"},
	{"chatgpt 5.1 extended", "GPT-5.1 Extended Thinking"},
	{"chatgpt 5.1 extended thinking", "GPT-5.1 Extended Thinking"},
	{"gpt5", "GPT-5"},
	{"gpt 5", "GPT-5"},
	{"gpt-5", "GPT-5"},

	{"gpt-4o", "GPT-4o"},
	{"gpt 4o", "GPT-4o"},
	{"gpt4o", "GPT-4o"},
	{"chatgpt-4o", "GPT-4o"},
	{"chatgpt 4o", "GPT-4o"},
	{"gpt-4", "GPT-4"},
	{"gpt 4", "GPT-4"},
	{"chatgpt", "ChatGPT"},

	{"gpt-oss-120b", "GPT-OSS-120B"},
	{"gpt-oss", "GPT-OSS"},
	{"gpt oss", "GPT-OSS"},

	{"deepseek v3.2", "DeepSeek v3.2"},
	{"deepseek-v3.2", "DeepSeek v3.2"},
	{"deepseek v3", "DeepSeek v3"},
	{"deepseek", "DeepSeek"},

	{"gemini pro 3", "Gemini Pro 3"},
	{"gemini-pro 3", "Gemini Pro 3"},
	{"gemini 3 pro", "Gemini Pro 3"},
	{"gemini pro 3 thinking", "Gemini Pro 3 (Thinking)"},
	{"gemini (thinking with pro 3)", "Gemini Pro 3 (Thinking)"},
	{"gemini 2.5 flash", "Gemini 2.5 Flash"},
	{"gemini flash", "Gemini Flash"},
	{"gemini fast", "Gemini Flash"},
	{"gemini (fast)", "Gemini Flash"},
	{"gemini 2.5 pro", "Gemini 2.5 Pro"},
	{"gemini 2 pro", "Gemini 2 Pro"},
	{"gemini", "Gemini"},

	{"kimi k2", "Kimi K2"},
	{"kimi-k2", "Kimi K2"},
	{"kimi", "Kimi"},

	{"llama 4 maverick", "Llama 4 Maverick"},
	{"llama 4", "Llama 4"},
	{"llama 3", "Llama 3"},
	{"llama", "Llama"},

	{"gemma 3", "Gemma 3"},
	{"gemma 3 (12b)", "Gemma 3 (12B)"},
	{"gemma", "Gemma"},
	{"grok 3", "Grok 3"},
	{"grok 2", "Grok 2"},
	{"grok", "Grok"},
	{"mistral", "Mistral"},
	{"mistral ai", "Mistral"},
	{"notebooklm", "NotebookLM"},
	{"notebook lm", "NotebookLM"},
	{"qwen", "Qwen"},
	{"qwen-max", "Qwen-Max"},
	{"cursor", "Cursor"},
	{"windsurf", "Windsurf"},
	{"perplexity", "Perplexity"},
	{"perplexity pro", "Perplexity Pro"},
	{"copilot", "Copilot"},
	{"github copilot", "Copilot"},
}

var (
	aliasIndex     = map[string]string{}
	canonicalIndex = map[string]string{}
)

func init() {
	for _, a := range llmAliases {
		if _, ok := aliasIndex[a.key]; !ok {
			aliasIndex[a.key] = a.canonical
		}
		canonicalIndex[strings.ToLower(a.canonical)] = a.canonical
	}
	canonicalIndex[strings.ToLower(UnknownLlm)] = UnknownLlm
}

var providers = map[string]string{
	"ChatGPT":                   "OpenAI",
	"ChatGPT o1":                "OpenAI",
	"ChatGPT o3":                "OpenAI",
	"GPT-4":                     "OpenAI",
	"GPT-4o":                    "OpenAI",
	"GPT-5":                     "OpenAI",
	"GPT-5.1 Pro":               "OpenAI",
	"GPT-5.1 Thinking":          "OpenAI",
	"GPT-5.1 Extended Thinking": "OpenAI",
	"GPT-OSS":                   "OpenAI",
	"GPT-OSS-120B":              "OpenAI",

	"Claude":            "Anthropic",
	"Claude Sonnet 4.5": "Anthropic",
	"Claude Opus 4.5":   "Anthropic",
	"Claude Haiku":      "Anthropic",

	"Gemini":                  "Google",
	"Gemini Pro 3":            "Google",
	"Gemini Pro 3 (Thinking)": "Google",
	"Gemini 2 Pro":            "Google",
	"Gemini 2.5 Pro":          "Google",
	"Gemini Flash":            "Google",
	"Gemini 2.5 Flash":        "Google",
	"Gemma":                   "Google",
	"Gemma 3":                 "Google",
	"Gemma 3 (12B)":           "Google",
	"NotebookLM":              "Google",

	"DeepSeek":      "DeepSeek",
	"DeepSeek v3":   "DeepSeek",
	"DeepSeek v3.2": "DeepSeek",

	"Grok":   "xAI",
	"Grok 2": "xAI",
	"Grok 3": "xAI",

	"Mistral": "Mistral AI",

	"Llama":            "Meta",
	"Llama 3":          "Meta",
	"Llama 4":          "Meta",
	"Llama 4 Maverick": "Meta",

	"Kimi":    "Moonshot AI",
	"Kimi K2": "Moonshot AI",

	"Qwen":     "Alibaba",
	"Qwen-Max": "Alibaba",

	"Cursor":         "Cursor",
	"Windsurf":       "Codeium",
	"Perplexity":     "Perplexity",
	"Perplexity Pro": "Perplexity",
	"Copilot":        "Microsoft",
}

// providerKeywords is checked in order when a name has no provider entry.
var providerKeywords = []struct {
	keywords []string
	provider string
}{
	{[]string{"gpt", "chatgpt"}, "OpenAI"},
	{[]string{"claude"}, "Anthropic"},
	{[]string{"gemini", "gemma"}, "Google"},
	{[]string{"deepseek"}, "DeepSeek"},
	{[]string{"grok"}, "xAI"},
	{[]string{"mistral"}, "Mistral AI"},
	{[]string{"llama"}, "Meta"},
	{[]string{"kimi"}, "Moonshot AI"},
	{[]string{"qwen"}, "Alibaba"},
}

// Provider returns the vendor of a canonical model name.
func Provider(llm string) string {
	if provider, ok := providers[llm]; ok {
		return provider
	}
	lower := strings.ToLower(llm)
	for _, entry := range providerKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.provider
			}
		}
	}
	return OtherProvider
}

// NormalizeLlmName maps a model name as written in a post to its canonical
// form. Canonical names map to themselves.
func NormalizeLlmName(raw string) string {
	words := strings.Fields(raw)
	if len(words) == 0 {
		return UnknownLlm
	}
	cleaned := strings.ToLower(strings.Join(words, " "))

	if canonical, ok := aliasIndex[cleaned]; ok {
		return canonical
	}
	if canonical, ok := canonicalIndex[cleaned]; ok {
		return canonical
	}
	for _, a := range llmAliases {
		if strings.Contains(cleaned, a.key) || strings.Contains(a.key, cleaned) {
			return a.canonical
		}
	}

	for i, word := range words {
		words[i] = capitalize(word)
	}
	return strings.Join(words, " ")
}

// capitalize upper cases the first rune of a word and lower cases the rest.
func capitalize(word string) string {
	first, size := utf8.DecodeRuneInString(word)
	return string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
}

package participation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractLlmName(t *testing.T) {
	testCases := []struct {
		title    string
		document string
		expected string
	}{
		{title: "Special Participation A: Claude Sonnet 4.5 on HW3", expected: "Claude Sonnet 4.5"},
		{title: "Special Participation A - Claude Opus 4.5 HW 2", expected: "Claude Opus 4.5"},
		// only the sonnet spelling has a parenthesized alias
		{title: "Special Participation A - claude (opus 4.5) HW 2", expected: "Claude"},
		{title: "Special Participation A: HW5 with GPT-4o", expected: "GPT-4o"},
		{title: "Special Participation A: ChatGPT o3, HW 7", expected: "ChatGPT o3"},
		{title: "Special Participation A: Gemini 2.5 Pro HW1", expected: "Gemini 2.5 Pro"},
		{title: "Special Participation A: Kimi K2 / HW10", expected: "Kimi K2"},
		{title: "Special Participation A: DeepSeek-v3.2 for homework 4", expected: "DeepSeek v3.2"},
		{title: "Special Participation A on HW2", document: "I used Mistral AI for this.", expected: "Mistral"},
		{title: "Special Participation A on HW2", document: "nothing to see", expected: UnknownLlm},
	}

	for _, test := range testCases {
		t.Run(test.title, func(t *testing.T) {
			require.Equal(t, test.expected, ExtractLlmName(test.title, test.document))
		})
	}
}

func TestExtractHomework(t *testing.T) {
	require.Equal(t, "HW3", ExtractHomework("Special Participation A: HW03", ""))
	require.Equal(t, "HW10", ExtractHomework("Participation A - hw 10", ""))
	require.Equal(t, "HW4", ExtractHomework("Participation A", "This covers Homework 4."))
	require.Equal(t, "HW0", ExtractHomework("Participation A: HW0", ""))
	require.Equal(t, UnknownHomework, ExtractHomework("Participation A", "midterm prep"))
}

func TestHomeworkOrder(t *testing.T) {
	require.Equal(t, 2, HomeworkOrder("HW2"))
	require.Equal(t, 12, HomeworkOrder("HW12"))
	require.Equal(t, 999, HomeworkOrder(UnknownHomework))
}

func TestExtractParticipationType(t *testing.T) {
	require.Equal(t, "A", ExtractParticipationType("Special Participation A: Claude"))
	require.Equal(t, "C", ExtractParticipationType("special participation c"))
	require.Equal(t, "B", ExtractParticipationType("Participation B"))
	require.Equal(t, UnknownType, ExtractParticipationType("Participation Assignment"))
	require.Equal(t, UnknownType, ExtractParticipationType("Lecture notes"))
}

func TestIsParticipationA(t *testing.T) {
	require.True(t, IsParticipationA("Special Participation A: Claude on HW3"))
	require.True(t, IsParticipationA("special participationA - GPT"))
	require.False(t, IsParticipationA("Special Participation B: Claude"))
	require.False(t, IsParticipationA("Special Participation Assignment"))
	require.False(t, IsParticipationA("Special Participation A Website"))
	require.False(t, IsParticipationA("Special Participation A: Red Team report"))
	require.False(t, IsParticipationA("Special Participation A: Blue Team report"))
}

func TestExtractLinks(t *testing.T) {
	raw := `<document><paragraph><link href="https://claude.ai/share/abc-123">chat</link> and <link href="https://example.com/notes/">notes</link></paragraph></document>`
	document := "chat at https://claude.ai/share/abc-123 and code at https://github.com/ada/hw3/ plus https://chatgpt.com/share/xyz"

	expected := []string{
		"https://claude.ai/share/abc-123",
		"https://chatgpt.com/share/xyz",
		"https://github.com/ada/hw3",
		"https://example.com/notes",
	}
	require.Equal(t, expected, ExtractLinks(raw, document))
	require.Empty(t, ExtractLinks("", "no links here"))
}

func TestExtractProfiles(t *testing.T) {
	text := `find me at https://github.com/ada-l and https://www.linkedin.com/in/ada_lovelace/ or https://ada.github.io/`
	require.Equal(t, &Profiles{
		Github:   "https://github.com/ada-l",
		Linkedin: "https://linkedin.com/in/ada_lovelace",
		Website:  "https://ada.github.io",
	}, ExtractProfiles("", text))

	require.Equal(t, &Profiles{Github: "https://github.com/ada"}, ExtractProfiles(`<link href="https://github.com/ada">`, ""))
	require.Nil(t, ExtractProfiles("", "nothing"))
}

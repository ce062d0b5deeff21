package threadfilter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMatchTitle(t *testing.T) {
	const pattern = "Special Participation A"

	testCases := []struct {
		title    string
		expected bool
	}{
		{title: "Special Participation A: Claude on HW2", expected: true},
		{title: "special participation a - gpt-4o", expected: true},
		{title: "Special Pariticipation A: Gemini HW 5", expected: true},
		{title: "Spec Part A - Llama, homework 3", expected: true},
		{title: "SPA: Deepseek hw7", expected: true},
		{title: "Participation A (special): Mistral", expected: true},
		{title: "Special  Participation  A", expected: true},
		{title: "Lecture 5 notes", expected: false},
		{title: "Homework 3 solutions released", expected: false},
		{title: "", expected: false},
	}

	for _, test := range testCases {
		t.Run(test.title, func(t *testing.T) {
			require.Equal(t, test.expected, MatchTitle(test.title, pattern, DefaultThreshold))
		})
	}
}

func TestMatcherWithoutVariations(t *testing.T) {
	matcher := NewMatcher("midterm review", DefaultThreshold)
	matcher.Variations = nil

	require.True(t, matcher.Match("Midterm Review session"))
	require.True(t, matcher.Match("review for the midterm"))
	require.False(t, matcher.Match("Special Participation A"))
}

func TestRatio(t *testing.T) {
	require.Equal(t, 100.0, Ratio("", ""))
	require.Equal(t, 100.0, Ratio("abc", "abc"))
	require.Equal(t, 75.0, Ratio("abcd", "abce"))
	require.Equal(t, 0.0, Ratio("abc", "xyz"))
}

func TestPartialRatio(t *testing.T) {
	require.Equal(t, 100.0, PartialRatio("abc", "xxabcxx"))
	require.Equal(t, 100.0, PartialRatio("xxabcxx", "abc"))
	require.Equal(t, 0.0, PartialRatio("", "abc"))
	require.Equal(t, 100.0, PartialRatio("", ""))
}

func TestTokenSortRatio(t *testing.T) {
	require.Equal(t, 100.0, TokenSortRatio("participation special", "Special Participation"))
	require.Less(t, TokenSortRatio("lecture notes", "special participation"), 60.0)
}

func TestSignificantWordsKeepAccents(t *testing.T) {
	require.Equal(t, map[string]struct{}{
		"révision": {},
		"générale": {},
		"übung":    {},
	}, significantWords("révision générale de la übung"))
	require.Equal(t, "générale révision", sortedTokens("Révision Générale"))
}

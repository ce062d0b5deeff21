package threadfilter

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultVariations catch the spellings of "special participation a" that show
// up in titles.
var DefaultVariations = []*regexp.Regexp{
	regexp.MustCompile(`special\s+participation\s+a`),
	regexp.MustCompile(`special\s+pariticipation\s+a`),
	regexp.MustCompile(`spec\s+part\s+a`),
	regexp.MustCompile(`spa\s*:`),
	regexp.MustCompile(`special\s+part\s+a`),
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "and": {}, "or": {},
}

var wordRegex = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// keywordShare is the share of significant pattern words a title must contain.
const keywordShare = 0.6

// Matcher decides whether a thread title is a variation of a pattern.
type Matcher struct {
	Pattern    string
	Threshold  float64
	Variations []*regexp.Regexp
}

func NewMatcher(pattern string, threshold float64) Matcher {
	return Matcher{
		Pattern:    pattern,
		Threshold:  threshold,
		Variations: DefaultVariations,
	}
}

// MatchTitle reports whether the title contains the pattern, tolerating
// typos, abbreviations and reordered words.
func MatchTitle(title, pattern string, threshold float64) bool {
	return NewMatcher(pattern, threshold).Match(title)
}

func (m Matcher) Match(title string) bool {
	title = strings.ToLower(title)
	pattern := strings.ToLower(m.Pattern)

	if strings.Contains(title, pattern) {
		return true
	}

	for _, variation := range m.Variations {
		if variation.MatchString(title) {
			return true
		}
	}

	patternWords := significantWords(pattern)
	titleWords := map[string]struct{}{}
	for _, w := range wordRegex.FindAllString(title, -1) {
		titleWords[w] = struct{}{}
	}
	if len(patternWords) > 0 {
		matching := 0
		for w := range patternWords {
			if _, ok := titleWords[w]; ok {
				matching++
			}
		}
		if float64(matching) >= float64(len(patternWords))*keywordShare {
			return true
		}
	}

	score := m.Threshold * 100
	if PartialRatio(pattern, title) >= score {
		return true
	}
	if TokenSortRatio(pattern, title) >= score {
		return true
	}
	return false
}

func significantWords(text string) map[string]struct{} {
	words := map[string]struct{}{}
	for _, w := range wordRegex.FindAllString(text, -1) {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if len([]rune(w)) <= 2 {
			continue
		}
		words[w] = struct{}{}
	}
	return words
}

// Ratio is the similarity of two strings on a 0-100 scale, computed from the
// longest common subsequence (the indel similarity).
func Ratio(a, b string) float64 {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 100
	}
	common := matchr.LongestCommonSubsequence(a, b)
	return math.Round(200 * float64(common) / float64(total))
}

// PartialRatio is the best Ratio of the shorter string against every window of
// the longer string with the same length.
func PartialRatio(a, b string) float64 {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}

	needle := string(shorter)
	best := 0.0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		score := Ratio(needle, string(longer[start:start+len(shorter)]))
		if score > best {
			best = score
			if best == 100 {
				break
			}
		}
	}
	return best
}

// TokenSortRatio compares both strings after sorting their words.
func TokenSortRatio(a, b string) float64 {
	return Ratio(sortedTokens(a), sortedTokens(b))
}

func sortedTokens(text string) string {
	tokens := wordRegex.FindAllString(strings.ToLower(text), -1)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

package htmlutil

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

var innerWhitespace = regexp.MustCompile(`\s\s+`)

func removeNonPrintable(s string) string {
	newStr := strings.Builder{}
	for _, c := range s {
		if unicode.IsPrint(c) || unicode.IsSpace(c) {
			newStr.WriteRune(c)
		}
	}
	return newStr.String()
}

// CleanText drops non-printable characters and collapses runs of whitespace.
func CleanText(text string) string {
	text = removeNonPrintable(text)
	text = strings.Trim(text, " \t\n")
	text = innerWhitespace.ReplaceAllString(text, " ")
	return text
}

// PlainText parses markup and returns its cleaned text content.
func PlainText(markup string) (string, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", err
	}
	return CleanText(GetText(doc)), nil
}

var converter = md.NewConverter("", true, nil)

// ToMarkdown renders thread markup (an xml-ish document of paragraphs, lists,
// links and files) as markdown.
func ToMarkdown(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", nil
	}
	out, err := converter.ConvertString(markup)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

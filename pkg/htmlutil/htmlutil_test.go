package htmlutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestGetText(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<document><paragraph>Hello <bold>there</bold></paragraph><paragraph>friend</paragraph></document>`))
	require.NoError(t, err)
	require.Equal(t, "Hello therefriend", GetText(doc))
}

func TestCleanText(t *testing.T) {
	require.Equal(t, "a b c", CleanText("  a \n\n b\t\tc \n"))
	require.Equal(t, "", CleanText(" \t\n"))
}

func TestToMarkdown(t *testing.T) {
	out, err := ToMarkdown(`<document><paragraph>See <link href="https://claude.ai/share/abc">the chat</link></paragraph></document>`)
	require.NoError(t, err)
	require.Contains(t, out, "See")
	require.Contains(t, out, "the chat")

	out, err = ToMarkdown("   ")
	require.NoError(t, err)
	require.Equal(t, "", out)
}

func TestPlainText(t *testing.T) {
	out, err := PlainText("<document><paragraph>Used  <bold>Gemini</bold></paragraph>\n\n<paragraph> for HW3 </paragraph></document>")
	require.NoError(t, err)
	require.Equal(t, "Used Gemini for HW3", out)
}

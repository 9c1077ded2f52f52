package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty input", input: "", expected: ""},
		{name: "plain text", input: "Hello world", expected: "Hello world\n"},
		{name: "bold", input: "**Folic acid**", expected: "<strong>Folic acid</strong>\n"},
		{name: "italic", input: "*daily*", expected: "<em>daily</em>\n"},
		{name: "devanagari", input: "**फोलिक एसिड** रोज़ लें", expected: "<strong>फोलिक एसिड</strong> रोज़ लें\n"},
		{name: "strikethrough", input: "~~myth~~", expected: "<del>myth</del>\n"},
		{name: "inline code", input: "`400 mcg`", expected: "<code>400 mcg</code>\n"},
		{name: "link", input: "[guide](https://example.com)", expected: "<a href=\"https://example.com\">guide</a>\n"},
		{name: "header tags stripped", input: "# Iron", expected: "Iron\n"},
		{name: "script tags sanitized", input: "<script>alert('xss')</script>", expected: "\n"},
		{
			name:     "mixed formatting",
			input:    "**Rest** and *hydrate* with `ORS`",
			expected: "<strong>Rest</strong> and <em>hydrate</em> with <code>ORS</code>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MarkdownToTelegramHTML([]byte(tt.input)))
		})
	}
}

func TestAppendLinks(t *testing.T) {
	got := AppendLinks("<strong>Folic acid</strong>\n",
		Link{Label: "Infographic", URL: "https://cdn.example.com/folic.png"},
		Link{Label: "Video", URL: ""},
		Link{Label: "Q&A", URL: "https://example.com/?a=1&b=2"},
	)

	want := "<strong>Folic acid</strong>" +
		"\n<a href=\"https://cdn.example.com/folic.png\">Infographic</a>" +
		"\n<a href=\"https://example.com/?a=1&amp;b=2\">Q&amp;A</a>"
	assert.Equal(t, want, got)
}

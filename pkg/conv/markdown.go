package conv

import (
	"fmt"
	"html"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	extensions = parser.CommonExtensions | parser.NoEmptyLineBeforeBlock
	htmlFlags  = mdhtml.CommonFlags | mdhtml.HrefTargetBlank
	tgPolicy   = bluemonday.NewPolicy()
)

func init() {
	// https://core.telegram.org/bots/api#html-style
	tgPolicy.AllowElements("b", "strong", "i", "em", "u", "ins", "s", "strike", "del", "code", "pre", "blockquote")
	tgPolicy.AllowAttrs("href").OnElements("a")
	tgPolicy.AllowAttrs("class").OnElements("code")
}

// Link is a labelled URL appended under a reply, e.g. an infographic.
type Link struct {
	Label string
	URL   string
}

func MarkdownToTelegramHTML(md []byte) string {
	p := parser.NewWithExtensions(extensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: htmlFlags})
	unsafeHTML := markdown.Render(p.Parse(md), renderer)

	return string(tgPolicy.SanitizeBytes(unsafeHTML))
}

// AppendLinks adds one anchor line per link with a non-empty URL.
func AppendLinks(body string, links ...Link) string {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(body, "\n"))
	for _, l := range links {
		if strings.TrimSpace(l.URL) == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n<a href=\"%s\">%s</a>", html.EscapeString(l.URL), html.EscapeString(l.Label)))
	}
	return sb.String()
}

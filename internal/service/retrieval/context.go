package retrieval

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/janmasethu/sakhi/internal/core"
	"github.com/janmasethu/sakhi/pkg/tokens"
)

const (
	blockSeparator = "\n\n"
	// Used only when the tokenizer cannot be loaded.
	charsPerToken = 4
)

// BuildContext concatenates items in rank order and stops at budget tokens.
// The last block that does not fit is cut, later blocks are dropped.
func BuildContext(items []core.RetrievalItem, budget int) core.RetrievalContext {
	var (
		b     strings.Builder
		out   core.RetrievalContext
		count = tokenCounter()
	)

	for _, it := range items {
		block := formatBlock(it)
		if block == "" {
			continue
		}
		if b.Len() > 0 {
			block = blockSeparator + block
		}

		remaining := budget - out.Tokens
		n := count(block)
		if n > remaining {
			cut, kept := truncate(block, remaining)
			if strings.TrimSpace(cut) != "" {
				b.WriteString(cut)
				out.Tokens += kept
				out.Items++
			}
			out.Truncated = true
			break
		}

		b.WriteString(block)
		out.Tokens += n
		out.Items++
	}

	out.Text = b.String()
	return out
}

func formatBlock(it core.RetrievalItem) string {
	content := strings.TrimSpace(it.Content)
	if content == "" {
		return ""
	}
	if title := strings.TrimSpace(it.Title); title != "" {
		return fmt.Sprintf("[%s] %s\n%s", it.SourceType, title, content)
	}
	return fmt.Sprintf("[%s] %s", it.SourceType, content)
}

func tokenCounter() func(string) int {
	if tokens.Available() {
		return func(s string) int {
			n, _ := tokens.Count(s)
			return n
		}
	}
	return func(s string) int {
		return (utf8.RuneCountInString(s) + charsPerToken - 1) / charsPerToken
	}
}

func truncate(text string, maxTokens int) (string, int) {
	if maxTokens <= 0 {
		return "", 0
	}
	if cut, n, _, err := tokens.Truncate(text, maxTokens); err == nil {
		return cut, n
	}
	runes := []rune(text)
	limit := maxTokens * charsPerToken
	if len(runes) <= limit {
		return text, (len(runes) + charsPerToken - 1) / charsPerToken
	}
	return string(runes[:limit]), maxTokens
}

// ExtractMedia returns the media of the first ranked item that has any.
// Fields of later items are never mixed in.
func ExtractMedia(items []core.RetrievalItem) core.Media {
	for _, it := range items {
		if it.HasMedia() {
			return core.Media{
				InfographicURL: strings.TrimSpace(it.InfographicURL),
				YouTubeLink:    strings.TrimSpace(it.YouTubeLink),
			}
		}
	}
	return core.Media{}
}

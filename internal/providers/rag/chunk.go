package rag

import (
	"strings"
	"unicode"

	"github.com/janmasethu/sakhi/pkg/tokens"
)

type Chunk struct {
	Text      string
	TokenSize int
	Index     int
}

type ChunkerConfig struct {
	MaxTokens     int
	OverlapTokens int
}

// DefaultChunkerConfig keeps passages well inside the embedding model's input window.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		MaxTokens:     400,
		OverlapTokens: 50,
	}
}

func ChunkText(text string, cfg ChunkerConfig) ([]Chunk, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	enc, err := tokens.Encoding()
	if err != nil {
		return nil, err
	}
	count := func(s string) int {
		if s == "" {
			return 0
		}
		return len(enc.Encode(s, nil, nil))
	}

	sentences := splitSentences(text)

	var chunks []Chunk
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Text:      strings.TrimSpace(current.String()),
			TokenSize: currentTokens,
			Index:     len(chunks),
		})
		current.Reset()
		currentTokens = 0
	}

	for i, sentence := range sentences {
		sentenceTokens := count(sentence)

		// Oversized sentence: slice by tokens.
		if sentenceTokens > cfg.MaxTokens {
			flush()
			ids := enc.Encode(sentence, nil, nil)
			for start := 0; start < len(ids); start += cfg.MaxTokens {
				end := min(start+cfg.MaxTokens, len(ids))
				// Slice edges can split a rune; drop the partial bytes.
				chunks = append(chunks, Chunk{
					Text:      strings.TrimSpace(strings.ToValidUTF8(enc.Decode(ids[start:end]), "")),
					TokenSize: end - start,
					Index:     len(chunks),
				})
			}
			continue
		}

		if currentTokens+sentenceTokens > cfg.MaxTokens && current.Len() > 0 {
			flush()
			overlap := overlapFrom(sentences, i, cfg.OverlapTokens, count)
			current.WriteString(overlap)
			currentTokens = count(overlap)
		}

		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(sentence)
		currentTokens += sentenceTokens
	}
	flush()

	return chunks, nil
}

var sentenceEnders = map[rune]bool{
	'.': true, '!': true, '?': true, '।': true, '॥': true,
	'。': true, '！': true, '？': true, '…': true,
}

// splitSentences splits paragraphs on sentence terminators, including the Devanagari danda.
func splitSentences(text string) []string {
	var sentences []string

	for _, para := range splitParagraphs(text) {
		var current strings.Builder
		runes := []rune(para)

		for i, r := range runes {
			current.WriteRune(r)
			if !sentenceEnders[r] {
				continue
			}
			if i+1 >= len(runes) || unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(current.String()); s != "" {
					sentences = append(sentences, s)
				}
				current.Reset()
			}
		}

		if s := strings.TrimSpace(current.String()); s != "" {
			sentences = append(sentences, s)
		}
	}

	if len(sentences) == 0 && text != "" {
		return []string{text}
	}
	return sentences
}

func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var result []string
	for _, p := range strings.Split(text, "\n\n") {
		// Single newlines inside a paragraph are soft wraps.
		p = strings.TrimSpace(strings.ReplaceAll(p, "\n", " "))
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

func overlapFrom(sentences []string, currentIdx, targetTokens int, count func(string) int) string {
	if currentIdx == 0 || targetTokens <= 0 {
		return ""
	}

	var overlap []string
	tokens := 0
	for i := currentIdx - 1; i >= 0 && tokens < targetTokens; i-- {
		overlap = append([]string{sentences[i]}, overlap...)
		tokens += count(sentences[i])
	}
	return strings.Join(overlap, " ")
}

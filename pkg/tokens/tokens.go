// Package tokens counts and truncates text with the cl100k_base BPE.
package tokens

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

const encodingName = "cl100k_base"

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

// Encoding returns the shared tokenizer. The BPE ranks are loaded once.
func Encoding() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding(encodingName)
		if tkErr != nil {
			tkErr = fmt.Errorf("failed to load tiktoken %s: %w", encodingName, tkErr)
		}
	})
	return tk, tkErr
}

// Available reports whether the BPE ranks could be loaded.
func Available() bool {
	_, err := Encoding()
	return err == nil
}

func Count(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := Encoding()
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// Truncate cuts text to at most maxTokens tokens.
// It returns the kept text, its token count and whether anything was cut.
// The kept text is always valid UTF-8: a token boundary can fall inside a
// multi-byte rune, and the partial rune is dropped.
func Truncate(text string, maxTokens int) (string, int, bool, error) {
	enc, err := Encoding()
	if err != nil {
		return "", 0, false, err
	}
	toks := enc.Encode(text, nil, nil)
	if len(toks) <= maxTokens {
		return text, len(toks), false, nil
	}
	if maxTokens <= 0 {
		return "", 0, true, nil
	}

	cut := enc.Decode(toks[:maxTokens])
	if utf8.ValidString(cut) {
		return cut, maxTokens, true, nil
	}
	for len(cut) > 0 && !utf8.ValidString(cut) {
		cut = cut[:len(cut)-1]
	}
	return cut, len(enc.Encode(cut, nil, nil)), true, nil
}

package classifier

import (
	"unicode"
)

var scripts = []struct {
	table *unicode.RangeTable
	lang  string
}{
	{unicode.Devanagari, "hi"},
	{unicode.Telugu, "te"},
	{unicode.Tamil, "ta"},
	{unicode.Kannada, "kn"},
	{unicode.Malayalam, "ml"},
	{unicode.Bengali, "bn"},
	{unicode.Gujarati, "gu"},
	{unicode.Gurmukhi, "pa"},
}

// DetectScript returns the language of the dominant Indic script in text,
// or "" when Indic letters are not the majority.
func DetectScript(text string) string {
	counts := make([]int, len(scripts))
	letters := 0

	for _, r := range text {
		if !unicode.IsLetter(r) && !unicode.Is(unicode.Mn, r) && !unicode.Is(unicode.Mc, r) {
			continue
		}
		letters++
		for i, s := range scripts {
			if unicode.Is(s.table, r) {
				counts[i]++
				break
			}
		}
	}

	best, bestCount, indic := -1, 0, 0
	for i, c := range counts {
		indic += c
		if c > bestCount {
			best, bestCount = i, c
		}
	}
	if best < 0 || indic*2 <= letters {
		return ""
	}
	return scripts[best].lang
}

package speech

import (
	"strings"
	"unicode/utf8"
)

// maxChunkChars is the longest text the translate endpoint accepts per request
const maxChunkChars = 100

// splitChunks breaks text into pieces of at most max characters, preferring
// sentence ends, then word boundaries. A single word longer than max is cut.
func splitChunks(text string, max int) []string {
	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, word := range strings.Fields(text) {
		for utf8.RuneCountInString(word) > max {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:max]))
			word = string(runes[max:])
		}
		if word == "" {
			continue
		}

		n := utf8.RuneCountInString(current.String())
		if n > 0 && n+1+utf8.RuneCountInString(word) > max {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)

		if strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?") {
			// Close the chunk here unless it is still very short
			if utf8.RuneCountInString(current.String()) >= max/2 {
				flush()
			}
		}
	}
	flush()
	return chunks
}

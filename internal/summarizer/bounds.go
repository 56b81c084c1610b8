package summarizer

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"sync"
)

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") || strings.HasSuffix(word, "!") || strings.HasSuffix(word, "?")
}

// capWords keeps at most max words, cutting back to the last full sentence
// when one ends inside the kept words.
func capWords(s string, max int) string {
	words := strings.Fields(s)
	if len(words) <= max {
		return strings.Join(words, " ")
	}
	words = words[:max]
	for i := len(words) - 1; i > 0; i-- {
		if endsSentence(words[i]) {
			return strings.Join(words[:i+1], " ")
		}
	}
	out := strings.Join(words, " ")
	return strings.TrimRight(out, ",;:") + "."
}

type memo struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemo() *memo {
	return &memo{entries: make(map[string]string)}
}

func memoKey(text string, minWords, maxWords int) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:]) + ":" + strconv.Itoa(minWords) + ":" + strconv.Itoa(maxWords)
}

func (m *memo) get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	return v, ok
}

func (m *memo) put(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
}

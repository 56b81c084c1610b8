package summarizer

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var reSentence = regexp.MustCompile(`[^.!?\n]+[.!?]*`)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {}, "for": {}, "from": {},
	"has": {}, "have": {}, "i": {}, "in": {}, "is": {}, "it": {}, "its": {}, "me": {}, "my": {}, "of": {},
	"on": {}, "or": {}, "our": {}, "that": {}, "the": {}, "their": {}, "this": {}, "to": {}, "was": {},
	"we": {}, "were": {}, "with": {}, "you": {}, "your": {},
}

// extractiveSummarizer picks the highest-scoring sentences of the input.
// It holds no mutable state and is safe for concurrent use.
type extractiveSummarizer struct {
	minInputWords int
}

type sentence struct {
	pos   int
	text  string
	words int
	score float64
}

func (e *extractiveSummarizer) Close() error { return nil }

func (e *extractiveSummarizer) Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error) {
	text = strings.TrimSpace(text)
	if err := checkInput(text, e.minInputWords); err != nil {
		return "", err
	}

	sentences := splitSentences(text)
	scoreSentences(sentences)

	ranked := make([]sentence, len(sentences))
	copy(ranked, sentences)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].pos < ranked[j].pos
	})

	var chosen []sentence
	total := 0
	for _, s := range ranked {
		if total >= minWords {
			break
		}
		if total+s.words > maxWords {
			continue
		}
		chosen = append(chosen, s)
		total += s.words
	}

	if len(chosen) == 0 {
		return capWords(ranked[0].text, maxWords), nil
	}

	sort.Slice(chosen, func(i, j int) bool { return chosen[i].pos < chosen[j].pos })
	parts := make([]string, len(chosen))
	for i, s := range chosen {
		parts[i] = s.text
	}
	return strings.Join(parts, " "), nil
}

func splitSentences(text string) []sentence {
	var out []sentence
	for _, raw := range reSentence.FindAllString(text, -1) {
		s := normalizeSpace(raw)
		if s == "" {
			continue
		}
		if !endsSentence(s) {
			s += "."
		}
		out = append(out, sentence{pos: len(out), text: s, words: wordCount(s)})
	}
	return out
}

func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
}

// scoreSentences scores each sentence by the mean normalized frequency of its content words
func scoreSentences(sentences []sentence) {
	freq := make(map[string]int)
	peak := 0
	for _, s := range sentences {
		for _, w := range tokens(s.text) {
			if _, stop := stopWords[w]; stop {
				continue
			}
			freq[w]++
			if freq[w] > peak {
				peak = freq[w]
			}
		}
	}
	if peak == 0 {
		return
	}

	for i := range sentences {
		var sum float64
		n := 0
		for _, w := range tokens(sentences[i].text) {
			if _, stop := stopWords[w]; stop {
				continue
			}
			sum += float64(freq[w]) / float64(peak)
			n++
		}
		if n > 0 {
			sentences[i].score = sum / float64(n)
		}
	}
}

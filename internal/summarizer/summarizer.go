package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
)

const summaryPrompt = `Summarize the resume below as a spoken self-introduction in the first person.

Requirements:
- Between %d and %d words
- Plain sentences only: no headings, lists, markdown, emoji or contact details
- Lead with the current role and years of experience, then key skills, then notable achievements

Resume:
---
%s
---`

// Fixed so identical prompts sample identically
const generationSeed int32 = 7

// Summarize asks Gemini for a bounded narration. Results are memoized per
// input so repeated calls return identical text.
func (s *implSummarizer) Summarize(ctx context.Context, text string, minWords, maxWords int) (string, error) {
	text = strings.TrimSpace(text)
	if err := checkInput(text, s.minInputWords); err != nil {
		return "", err
	}

	key := memoKey(text, minWords, maxWords)
	if cached, ok := s.memo.get(key); ok {
		s.logger.Debug(ctx, "Summary served from memo")
		return cached, nil
	}

	prompt := fmt.Sprintf(summaryPrompt, minWords, maxWords, text)
	raw, err := s.withKeyRotation(ctx, prompt)
	if err != nil {
		return "", errkind.Wrap(errkind.ErrBackendFailure, "summarize", "gemini", "", err)
	}

	summary := capWords(normalizeSpace(raw), maxWords)
	if summary == "" {
		return "", errkind.Wrap(errkind.ErrEmptyInput, "summarize", "gemini", "model returned no text", nil)
	}
	if n := wordCount(summary); n < minWords {
		s.logger.Warn(ctx, "Summary shorter than requested: %d < %d words", n, minWords)
	}

	s.memo.put(key, summary)
	return summary, nil
}

// withKeyRotation sends the prompt, rotating API keys on 429 / quota errors.
func (s *implSummarizer) withKeyRotation(ctx context.Context, prompt string) (string, error) {
	attempts := len(s.apiKeys)
	if attempts == 0 {
		return "", fmt.Errorf("no API keys configured")
	}
	var lastErr error

	for range attempts {
		key, idx := s.activeKey()

		text, err := s.generate(ctx, key, prompt)
		if err != nil {
			errMsg := err.Error()
			if strings.Contains(errMsg, "429") || strings.Contains(errMsg, "quota") || strings.Contains(errMsg, "RESOURCE_EXHAUSTED") {
				s.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				s.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}
		return text, nil
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

// callGemini sends the prompt to Gemini with sampling disabled
func (s *implSummarizer) callGemini(ctx context.Context, key, prompt string) (string, error) {
	client, err := s.clients[key].Get(ctx)
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
		TopK:        genai.Ptr[float32](1),
		Seed:        genai.Ptr(generationSeed),
	})
	if err != nil {
		return "", err
	}

	if result != nil && len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
		var text string
		for _, part := range result.Candidates[0].Content.Parts {
			if part.Text != "" {
				text += part.Text
			}
		}
		return text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

// Close drops every genai client created so far
func (s *implSummarizer) Close() error {
	var errs []error
	for _, client := range s.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *implSummarizer) activeKey() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeys[s.currentKey], s.currentKey
}

// rotateKey advances past the key at idx unless another caller already did
func (s *implSummarizer) rotateKey(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentKey == idx {
		s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	}
}

func checkInput(text string, minInputWords int) error {
	if text == "" {
		return errkind.Wrap(errkind.ErrEmptyInput, "summarize", "", "document has no text", nil)
	}
	if n := wordCount(text); n < minInputWords {
		return errkind.Wrap(errkind.ErrEmptyInput, "summarize", "", fmt.Sprintf("document has %d words, need at least %d", n, minInputWords), nil)
	}
	return nil
}

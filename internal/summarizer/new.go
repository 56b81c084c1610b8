package summarizer

import (
	"context"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/abhirajadhikary06/voiceurresume/internal/lazymodel"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
)

// generateFunc sends one prompt with the given API key and returns the reply text
type generateFunc func(ctx context.Context, key, prompt string) (string, error)

type implSummarizer struct {
	apiKeys       []string
	mu            sync.Mutex
	currentKey    int
	clients       map[string]*lazymodel.Model[*genai.Client]
	generate      generateFunc
	logger        logger.Logger
	model         string
	minInputWords int
	memo          *memo
}

// New creates a Gemini-backed Summarizer that rotates through the supplied API keys.
// A genai client per key is created on first use and shared; genai clients are
// safe for concurrent use.
func New(apiKeys []string, model string, minInputWords int, log logger.Logger) Summarizer {
	if model == "" {
		model = "gemini-2.5-flash"
	}
	s := &implSummarizer{
		apiKeys:       apiKeys,
		clients:       make(map[string]*lazymodel.Model[*genai.Client], len(apiKeys)),
		logger:        log,
		model:         model,
		minInputWords: minInputWords,
		memo:          newMemo(),
	}
	for _, key := range apiKeys {
		s.clients[key] = lazymodel.New(func(ctx context.Context) (*genai.Client, error) {
			return genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  key,
				Backend: genai.BackendGeminiAPI,
			})
		}, nil)
	}
	s.generate = s.callGemini
	return s
}

// NewExtractive creates the offline frequency-based Summarizer
func NewExtractive(minInputWords int) Summarizer {
	return &extractiveSummarizer{minInputWords: minInputWords}
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

package speech

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/media"
)

var testLogger = logger.NewWriter("error", "json", io.Discard)

const narration = "Hello, I am Jane Doe. I am a senior software engineer with ten years of experience building distributed systems in Go. I lead platform teams and mentor engineers."

type fakeProber struct{ duration time.Duration }

func (f fakeProber) Probe(ctx context.Context, path string) (*media.Info, error) {
	return &media.Info{Duration: f.duration, HasAudio: true}, nil
}

func TestSplitChunks(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
	}{
		{"narration", narration, maxChunkChars},
		{"short", "Hello there.", maxChunkChars},
		{"long word", strings.Repeat("x", 250), maxChunkChars},
		{"tight", narration, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := splitChunks(tt.text, tt.max)
			if len(chunks) == 0 {
				t.Fatal("no chunks")
			}
			for _, c := range chunks {
				if n := utf8.RuneCountInString(c); n > tt.max {
					t.Errorf("chunk %q has %d chars, max %d", c, n, tt.max)
				}
			}
			joined := strings.ReplaceAll(strings.Join(chunks, ""), " ", "")
			if joined != strings.ReplaceAll(tt.text, " ", "") {
				t.Errorf("chunks lost text: %q", chunks)
			}
		})
	}
}

func TestTranslateSynthesize(t *testing.T) {
	var mu sync.Mutex
	var queries []map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		mu.Lock()
		queries = append(queries, map[string]string{
			"tl": q.Get("tl"), "client": q.Get("client"), "idx": q.Get("idx"), "total": q.Get("total"), "q": q.Get("q"), "textlen": q.Get("textlen"),
		})
		mu.Unlock()
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("MP3" + q.Get("idx")))
	}))
	defer server.Close()

	synth, err := New(config.SpeechConfig{Provider: "translate", Endpoint: server.URL, Timeout: 5 * time.Second}, nil, fakeProber{duration: 9 * time.Second}, testLogger)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	dest := filepath.Join(t.TempDir(), "speech.mp3")
	clip, err := synth.Synthesize(context.Background(), narration, "en-US", dest)
	if err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}

	if clip.Path != dest || clip.Duration != 9*time.Second {
		t.Errorf("clip = %+v", clip)
	}

	chunks := splitChunks(narration, maxChunkChars)
	if len(queries) != len(chunks) {
		t.Fatalf("made %d requests, want %d", len(queries), len(chunks))
	}

	var want strings.Builder
	for i, q := range queries {
		if q["tl"] != "en" || q["client"] != "tw-ob" {
			t.Errorf("request %d params = %v", i, q)
		}
		if q["idx"] != strconv.Itoa(i) || q["total"] != strconv.Itoa(len(chunks)) {
			t.Errorf("request %d idx/total = %s/%s", i, q["idx"], q["total"])
		}
		if q["q"] != chunks[i] || q["textlen"] != strconv.Itoa(utf8.RuneCountInString(chunks[i])) {
			t.Errorf("request %d text = %q (%s)", i, q["q"], q["textlen"])
		}
		want.WriteString("MP3" + strconv.Itoa(i))
	}

	data, _ := os.ReadFile(dest)
	if string(data) != want.String() {
		t.Errorf("audio = %q, want %q", data, want.String())
	}
}

func TestTranslateErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer server.Close()

	synth, _ := New(config.SpeechConfig{Provider: "translate", Endpoint: server.URL}, nil, nil, testLogger)
	dir := t.TempDir()

	t.Run("http failure", func(t *testing.T) {
		dest := filepath.Join(dir, "a.mp3")
		_, err := synth.Synthesize(context.Background(), narration, "en", dest)
		if !errors.Is(err, errkind.ErrIO) {
			t.Errorf("expected IOError, got %v", err)
		}
		if _, statErr := os.Stat(dest); !os.IsNotExist(statErr) {
			t.Error("partial audio file was left behind")
		}
	})

	t.Run("empty text", func(t *testing.T) {
		_, err := synth.Synthesize(context.Background(), "  ", "en", filepath.Join(dir, "b.mp3"))
		if !errors.Is(err, errkind.ErrEmptyInput) {
			t.Errorf("expected EmptyInput, got %v", err)
		}
	})

	t.Run("unwritable destination", func(t *testing.T) {
		_, err := synth.Synthesize(context.Background(), narration, "en", filepath.Join(dir, "missing", "c.mp3"))
		if !errors.Is(err, errkind.ErrIO) {
			t.Errorf("expected IOError, got %v", err)
		}
	})

	t.Run("bad language", func(t *testing.T) {
		if _, err := synth.Synthesize(context.Background(), narration, "not a tag!", filepath.Join(dir, "d.mp3")); err == nil {
			t.Error("expected error for invalid language tag")
		}
	})
}

type fakeExecutor struct {
	write bool
	err   error
	args  []string
}

func (f *fakeExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.args = args
	if f.write {
		for i, a := range args {
			if a == "-w" {
				os.WriteFile(args[i+1], []byte("RIFF"), 0644)
			}
		}
	}
	return "", f.err
}

func (f *fakeExecutor) ExecuteInDir(ctx context.Context, dir, name string, args ...string) (string, error) {
	return f.Execute(ctx, name, args...)
}

func (f *fakeExecutor) Stream(ctx context.Context, name string, stdin io.Reader, stdout io.Writer, args ...string) error {
	return nil
}

func TestCommandSynthesize(t *testing.T) {
	cfg := config.SpeechConfig{Provider: "command", Command: "espeak-ng", Args: []string{"-v", "{lang}", "-w", "{dest}", "{text}"}}
	dest := filepath.Join(t.TempDir(), "speech.wav")

	t.Run("placeholders", func(t *testing.T) {
		exec := &fakeExecutor{write: true}
		synth, _ := New(cfg, exec, nil, testLogger)

		clip, err := synth.Synthesize(context.Background(), "Hello there.", "fr-CA", dest)
		if err != nil {
			t.Fatalf("Synthesize() error = %v", err)
		}
		if clip.Path != dest {
			t.Errorf("clip path = %s", clip.Path)
		}
		want := "-v fr -w " + dest + " Hello there."
		if got := strings.Join(exec.args, " "); got != want {
			t.Errorf("args = %q, want %q", got, want)
		}
	})

	t.Run("no output", func(t *testing.T) {
		synth, _ := New(cfg, &fakeExecutor{}, nil, testLogger)
		_, err := synth.Synthesize(context.Background(), "Hello there.", "en", filepath.Join(t.TempDir(), "x.wav"))
		if !errors.Is(err, errkind.ErrExternalProcess) {
			t.Errorf("expected ExternalProcessFailure, got %v", err)
		}
	})

	t.Run("command fails", func(t *testing.T) {
		synth, _ := New(cfg, &fakeExecutor{err: errors.New("exit status 1")}, nil, testLogger)
		_, err := synth.Synthesize(context.Background(), "Hello there.", "en", filepath.Join(t.TempDir(), "y.wav"))
		if !errors.Is(err, errkind.ErrExternalProcess) {
			t.Errorf("expected ExternalProcessFailure, got %v", err)
		}
	})
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(config.SpeechConfig{Provider: "carrier-pigeon"}, nil, nil, testLogger); err == nil {
		t.Error("expected error for unknown provider")
	}
}

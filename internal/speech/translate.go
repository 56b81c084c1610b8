package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/media"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
)

// translateSynthesizer fetches MP3 speech from a translate_tts style endpoint
type translateSynthesizer struct {
	client   *http.Client
	endpoint string
	prober   media.Prober
	logger   logger.Logger
}

func (s *translateSynthesizer) Synthesize(ctx context.Context, text, lang, destination string) (*models.AudioClip, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	tl, err := baseLanguage(lang)
	if err != nil {
		return nil, err
	}

	out, err := os.Create(destination)
	if err != nil {
		return nil, errkind.Wrap(errkind.ErrIO, "synthesize", "create", "cannot write audio destination", err)
	}

	chunks := splitChunks(text, maxChunkChars)
	s.logger.Debug(ctx, "Synthesizing %d chunks (%s)", len(chunks), tl)

	for i, chunk := range chunks {
		if err := s.fetchChunk(ctx, out, tl, chunk, i, len(chunks)); err != nil {
			out.Close()
			os.Remove(destination)
			return nil, errkind.Wrap(errkind.ErrIO, "synthesize", "translate", fmt.Sprintf("chunk %d/%d", i+1, len(chunks)), err)
		}
	}

	if err := out.Close(); err != nil {
		return nil, errkind.Wrap(errkind.ErrIO, "synthesize", "close", "", err)
	}

	return finishClip(ctx, s.prober, s.logger, destination)
}

func (s *translateSynthesizer) fetchChunk(ctx context.Context, w io.Writer, tl, chunk string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", tl)
	q.Set("q", chunk)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(len([]rune(chunk))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("read audio: %w", err)
	}
	return nil
}

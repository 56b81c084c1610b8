package speech

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/text/language"

	"github.com/abhirajadhikary06/voiceurresume/internal/config"
	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/media"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
	"github.com/abhirajadhikary06/voiceurresume/pkg/executor"
)

// New returns the Synthesizer selected by cfg.Provider.
// prober may be nil, in which case clip durations are left zero.
func New(cfg config.SpeechConfig, exec executor.Executor, prober media.Prober, log logger.Logger) (Synthesizer, error) {
	switch cfg.Provider {
	case "translate", "":
		return &translateSynthesizer{
			client:   &http.Client{Timeout: cfg.Timeout},
			endpoint: cfg.Endpoint,
			prober:   prober,
			logger:   log,
		}, nil
	case "command":
		return &commandSynthesizer{
			executor: exec,
			command:  cfg.Command,
			args:     cfg.Args,
			prober:   prober,
			logger:   log,
		}, nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Provider)
	}
}

// baseLanguage validates a BCP-47 tag and returns its base language code
func baseLanguage(tag string) (string, error) {
	t, err := language.Parse(tag)
	if err != nil {
		return "", errkind.Wrap(errkind.ErrUnsupportedFormat, "synthesize", "language", fmt.Sprintf("invalid language tag %q", tag), err)
	}
	base, _ := t.Base()
	return base.String(), nil
}

func checkText(text string) error {
	if strings.TrimSpace(text) == "" {
		return errkind.Wrap(errkind.ErrEmptyInput, "synthesize", "", "no text to speak", nil)
	}
	return nil
}

// finishClip verifies destination was written and fills its duration
func finishClip(ctx context.Context, prober media.Prober, log logger.Logger, destination string) (*models.AudioClip, error) {
	info, err := os.Stat(destination)
	if err != nil || info.Size() == 0 {
		return nil, errkind.Wrap(errkind.ErrIO, "synthesize", "output", "audio file was not written", err)
	}

	clip := &models.AudioClip{Path: destination}
	if prober != nil {
		probed, err := prober.Probe(ctx, destination)
		if err != nil {
			log.Warn(ctx, "Could not probe audio duration: %v", err)
		} else {
			clip.Duration = probed.Duration
		}
	}
	return clip, nil
}

package speech

import (
	"context"
	"os"
	"strings"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
	"github.com/abhirajadhikary06/voiceurresume/internal/logger"
	"github.com/abhirajadhikary06/voiceurresume/internal/media"
	"github.com/abhirajadhikary06/voiceurresume/internal/models"
	"github.com/abhirajadhikary06/voiceurresume/pkg/executor"
)

// commandSynthesizer runs a local TTS binary such as espeak-ng.
// Arguments may contain {lang}, {dest} and {text} placeholders.
type commandSynthesizer struct {
	executor executor.Executor
	command  string
	args     []string
	prober   media.Prober
	logger   logger.Logger
}

func (s *commandSynthesizer) Synthesize(ctx context.Context, text, lang, destination string) (*models.AudioClip, error) {
	if err := checkText(text); err != nil {
		return nil, err
	}
	tl, err := baseLanguage(lang)
	if err != nil {
		return nil, err
	}

	replacer := strings.NewReplacer("{lang}", tl, "{dest}", destination, "{text}", text)
	args := make([]string, len(s.args))
	for i, a := range s.args {
		args[i] = replacer.Replace(a)
	}

	s.logger.Debug(ctx, "Running %s for speech", s.command)
	if _, err := s.executor.Execute(ctx, s.command, args...); err != nil {
		os.Remove(destination)
		return nil, errkind.Wrap(errkind.ErrExternalProcess, "synthesize", s.command, "", err)
	}

	info, err := os.Stat(destination)
	if err != nil || info.Size() == 0 {
		return nil, errkind.Wrap(errkind.ErrExternalProcess, "synthesize", s.command, "no audio produced", err)
	}

	return finishClip(ctx, s.prober, s.logger, destination)
}

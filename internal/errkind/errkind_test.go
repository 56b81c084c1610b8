package errkind_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/abhirajadhikary06/voiceurresume/internal/errkind"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := errkind.Wrap(errkind.ErrExternalProcess, "video", "inference", "exit status 1", base)
	if !errors.Is(err, errkind.ErrExternalProcess) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"video", "inference", "exit status 1", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapNilMarker(t *testing.T) {
	err := errkind.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, errkind.ErrBackendFailure) {
		t.Fatalf("nil marker should default to backend failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "pipeline failure") {
		t.Fatalf("empty detail should read pipeline failure, got %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"untagged", errors.New("plain"), "BackendFailure"},
		{"no face", errkind.Wrap(errkind.ErrNoFaceDetected, "faceswap", "detect", "", nil), "NoFaceDetected"},
		{"timeout rewrapped", fmt.Errorf("generate video: %w", errkind.Wrap(errkind.ErrRemoteJobTimeout, "remote", "poll", "", nil)), "RemoteJobTimeout"},
		{"io", errkind.Wrap(errkind.ErrIO, "speech", "write", "", errors.New("disk full")), "IOError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errkind.KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTagged(t *testing.T) {
	if errkind.Tagged(errors.New("plain")) {
		t.Error("plain error should not be tagged")
	}
	if !errkind.Tagged(errkind.Wrap(errkind.ErrEmptyInput, "summarize", "", "", nil)) {
		t.Error("wrapped error should be tagged")
	}
}

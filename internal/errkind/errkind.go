// Package errkind defines the failure taxonomy shared by every pipeline stage.
//
// Stages tag their errors with one of the sentinel kinds via Wrap so the
// orchestrator can log the originating kind while callers only ever see a
// single generic failure.
package errkind

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyInput        = errors.New("empty input")
	ErrNoFaceDetected    = errors.New("no face detected")
	ErrFrameDecode       = errors.New("frame decode error")
	ErrExternalProcess   = errors.New("external process failure")
	ErrRemoteSubmission  = errors.New("remote submission error")
	ErrRemoteJobFailed   = errors.New("remote job failed")
	ErrRemoteJobTimeout  = errors.New("remote job timeout")
	ErrIO                = errors.New("io error")
	ErrBackendFailure    = errors.New("backend failure")
)

var kindNames = []struct {
	marker error
	name   string
}{
	{ErrUnsupportedFormat, "UnsupportedFormat"},
	{ErrEmptyInput, "EmptyInput"},
	{ErrNoFaceDetected, "NoFaceDetected"},
	{ErrFrameDecode, "FrameDecodeError"},
	{ErrExternalProcess, "ExternalProcessFailure"},
	{ErrRemoteSubmission, "RemoteSubmissionError"},
	{ErrRemoteJobFailed, "RemoteJobFailed"},
	{ErrRemoteJobTimeout, "RemoteJobTimeout"},
	{ErrIO, "IOError"},
	{ErrBackendFailure, "BackendFailure"},
}

// Wrap builds an error that carries the kind marker, a stage/operation detail
// and the underlying cause. Both marker and cause stay visible to errors.Is.
// A nil marker is treated as ErrBackendFailure.
func Wrap(marker error, stage, operation, message string, err error) error {
	if marker == nil {
		marker = ErrBackendFailure
	}
	detail := buildDetail(stage, operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf names the taxonomy kind carried by err. Errors without a marker are
// reported as BackendFailure; nil yields "".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kindNames {
		if errors.Is(err, k.marker) {
			return k.name
		}
	}
	return "BackendFailure"
}

// Tagged reports whether err already carries one of the taxonomy markers.
func Tagged(err error) bool {
	for _, k := range kindNames {
		if errors.Is(err, k.marker) {
			return true
		}
	}
	return false
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}

package processor

import "time"

// State is a pipeline stage
type State string

const (
	StateReceived        State = "received"
	StateExtractingText  State = "extracting_text"
	StateSummarizing     State = "summarizing"
	StateSynthesizing    State = "synthesizing"
	StateGeneratingVideo State = "generating_video"
	StateMuxing          State = "muxing"
	StatePersisting      State = "persisting"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Result describes a finished run. A failed run carries only RequestID and
// State; the failing stage is logged, never returned.
// Summary is the narrated script of a successful run.
type Result struct {
	RequestID string
	VideoKey  string
	State     State
	Summary   string
	Duration  time.Duration
}

// VideoKey is the blob key a request's video is stored under
func VideoKey(requestID string) string {
	return "videos/" + requestID + "_resume_video.mp4"
}

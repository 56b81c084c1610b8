package models

import "fmt"

// JobStatus is the lifecycle state of a remote synthesis job
type JobStatus string

const (
	JobSubmitted JobStatus = "submitted"
	JobPolling   JobStatus = "polling"
	JobDone      JobStatus = "done"
	JobFailed    JobStatus = "failed"
	JobTimedOut  JobStatus = "timed_out"
)

// IsTerminal reports whether no further transition is possible
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobDone, JobFailed, JobTimedOut:
		return true
	default:
		return false
	}
}

var jobTransitions = map[JobStatus][]JobStatus{
	JobSubmitted: {JobPolling, JobFailed, JobTimedOut},
	JobPolling:   {JobPolling, JobDone, JobFailed, JobTimedOut},
}

// VideoJob tracks a job submitted to the remote synthesis API.
// Status only ever moves forward.
type VideoJob struct {
	ID              string
	Status          JobStatus
	ResultReference string
	Attempts        int
	Message         string
}

// NewVideoJob returns a job in the Submitted state
func NewVideoJob(id string) *VideoJob {
	return &VideoJob{ID: id, Status: JobSubmitted}
}

// Advance moves the job to the given status, rejecting backward or
// post-terminal transitions.
func (j *VideoJob) Advance(to JobStatus) error {
	for _, allowed := range jobTransitions[j.Status] {
		if allowed == to {
			j.Status = to
			return nil
		}
	}
	return fmt.Errorf("video job %s: illegal transition %s -> %s", j.ID, j.Status, to)
}

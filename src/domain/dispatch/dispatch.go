package dispatch

import (
	"time"
)

// JobStatus is the lifecycle state of a dispatch job.
type JobStatus string

const (
	StatusPending JobStatus = "pending"
	StatusSending JobStatus = "sending"
	StatusSent    JobStatus = "sent"
	StatusError   JobStatus = "error"
)

// MaxAttempts bounds how many times the dispatcher sends a single job.
// A failed send at this count moves the job to the terminal error state.
const MaxAttempts = 3

// IsTerminal reports whether a job in this status may never be mutated again.
func (s JobStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusError
}

func (s JobStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusSending, StatusSent, StatusError:
		return true
	}
	return false
}

// Job is one queued attempt to deliver a single notification to a single
// recipient. Phone and ContextCount are frozen at batch-build time; the
// rendered message reflects the state of the world when the batch was built,
// not when the send happens.
type Job struct {
	ID            string
	ResidentID    int
	CondominiumID int
	Phone         string
	ContextCount  int
	Status        JobStatus
	Attempts      int
	ErrorMessage  string
	ResponseData  string
	BatchID       string
	TriggeredBy   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CanRetry reports whether a failed send may put the job back on the queue.
func (j *Job) CanRetry() bool {
	return j.Attempts < MaxAttempts
}

// JobRepository persists dispatch jobs in the entity store.
//
// Transition applies a compare-and-swap status change: the update only lands
// when the job is still in the expected `from` status. The bool result
// reports whether the swap was applied; false means another worker already
// moved the job and the caller must skip it.
type JobRepository interface {
	Create(jobs []Job) ([]string, error)
	GetByID(id string) (*Job, error)
	GetByIDs(ids []string) ([]Job, error)
	GetByBatchID(batchID string) ([]Job, error)
	Transition(id string, from, to JobStatus, fields map[string]interface{}) (*Job, bool, error)
	SelectForProcessing(limit int) ([]Job, error)
	ReleaseStuckSending(olderThan time.Duration) (int, error)
}

// Enqueuer hands a set of job ids to the queue processor without blocking.
// Implementations must treat a full queue as a soft failure: the scheduled
// sweep picks pending jobs up regardless.
type Enqueuer interface {
	EnqueueJobs(jobIDs []string)
}

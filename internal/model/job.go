package model

import (
	"sync"
)

// Job statuses visible to pollers. Retries inside the render loop are not a
// distinct state; a job stays "pending" until it reaches a terminal status.
const (
	JobStatusPending = "pending"
	JobStatusDone    = "done"
	JobStatusError   = "error"
)

// MaxJobErrorLen bounds the diagnostic text stored on a failed job so verbose
// tool output cannot grow the store without limit.
const MaxJobErrorLen = 500

// JobStatus represents the externally visible state of one render job
type JobStatus struct {
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
	Error  string `json:"error,omitempty"`
}

// JobStore is an in-memory store of job statuses. Each job id is written by
// exactly one render loop for its whole lifetime and read by any number of
// pollers, so a plain RW mutex around the map is all the coordination needed.
// Jobs are never deleted; the store lives and dies with the process.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]JobStatus
}

// NewJobStore creates a new job store
func NewJobStore() *JobStore {
	return &JobStore{
		jobs: make(map[string]JobStatus),
	}
}

// Create registers a job in the pending state
func (s *JobStore) Create(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = JobStatus{Status: JobStatusPending}
}

// Get retrieves a job status
func (s *JobStore) Get(jobID string) (JobStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, exists := s.jobs[jobID]
	return status, exists
}

// Set stores a job status
func (s *JobStore) Set(jobID string, status JobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = status
}

// Done marks a job as successfully completed with its video URL
func (s *JobStore) Done(jobID, url string) {
	s.Set(jobID, JobStatus{Status: JobStatusDone, URL: url})
}

// Fail marks a job as terminally failed, truncating the diagnostic text
func (s *JobStore) Fail(jobID, errMsg string) {
	s.Set(jobID, JobStatus{Status: JobStatusError, Error: TruncateError(errMsg)})
}

// TruncateError bounds a diagnostic message to MaxJobErrorLen characters.
// The cut is made on rune boundaries; tool stderr carries multibyte
// box-drawing runes and a byte-level cut could ship invalid UTF-8.
func TruncateError(msg string) string {
	if len(msg) <= MaxJobErrorLen {
		return msg
	}
	runes := []rune(msg)
	if len(runes) <= MaxJobErrorLen {
		return msg
	}
	return string(runes[:MaxJobErrorLen])
}

package progress

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"evidos/internal/domain"
)

// Step identifies a pipeline stage within a processing job.
type Step int

const (
	StepQueued Step = iota + 1
	StepExtracting
	StepAnalyzing
	StepScoring
	StepSynthesizing
	StepPersisting
)

var stepNames = map[Step]string{
	StepQueued:       "queued",
	StepExtracting:   "extracting",
	StepAnalyzing:    "analyzing",
	StepScoring:      "scoring",
	StepSynthesizing: "synthesizing",
	StepPersisting:   "persisting",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// Job is a snapshot of one document processing run.
type Job struct {
	ID          uuid.UUID              `json:"id"`
	DocumentID  uuid.UUID              `json:"document_id"`
	Status      domain.AnalysisStatus  `json:"status"`
	Step        Step                   `json:"step"`
	StepName    string                 `json:"step_name"`
	Percent     int                    `json:"percent"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	Error       string                 `json:"error,omitempty"`
	StartedAt   time.Time              `json:"started_at"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
}

func (j Job) inFlight() bool {
	return j.Status == domain.AnalysisStatusPending || j.Status == domain.AnalysisStatusRunning
}

// Tracker keeps the latest processing job per document in memory. It exists
// to answer status polls while a run is underway; durable state lives in the
// documents table.
type Tracker struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]Job // keyed by document ID, latest job only
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{jobs: make(map[uuid.UUID]Job)}
}

// StartTracking registers a new job for the document. It refuses to start
// while a previous job for the same document is still in flight; a finished
// prior job is replaced.
func (t *Tracker) StartTracking(documentID uuid.UUID) (Job, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, ok := t.jobs[documentID]; ok && existing.inFlight() {
		return Job{}, domain.ErrAnalysisInProgress
	}

	job := Job{
		ID:         uuid.New(),
		DocumentID: documentID,
		Status:     domain.AnalysisStatusRunning,
		Step:       StepQueued,
		StepName:   StepQueued.String(),
		StartedAt:  time.Now().UTC(),
	}
	t.jobs[documentID] = job
	return job, nil
}

// UpdateStep advances the job for the document to the given step, recording
// overall percent complete and merging step metadata into the job. Unknown
// documents are ignored.
func (t *Tracker) UpdateStep(documentID uuid.UUID, step Step, percent int, metadata map[string]interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[documentID]
	if !ok || !job.inFlight() {
		return
	}
	job.Step = step
	job.StepName = step.String()
	job.Percent = clampPercent(percent)
	job.Metadata = mergeMetadata(job.Metadata, metadata)
	t.jobs[documentID] = job
}

// CompleteJob marks the document's job as completed at 100 percent, merging
// any final metadata (counts of controls scored, evidence created).
func (t *Tracker) CompleteJob(documentID uuid.UUID, metadata map[string]interface{}) {
	t.finish(documentID, domain.AnalysisStatusCompleted, "", metadata)
}

// FailJob marks the document's job as failed with the given message. The
// percent and metadata accumulated so far are kept for diagnosis.
func (t *Tracker) FailJob(documentID uuid.UUID, message string) {
	t.finish(documentID, domain.AnalysisStatusFailed, message, nil)
}

func (t *Tracker) finish(documentID uuid.UUID, status domain.AnalysisStatus, message string, metadata map[string]interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	job, ok := t.jobs[documentID]
	if !ok {
		return
	}
	now := time.Now().UTC()
	job.Status = status
	job.Error = message
	job.Metadata = mergeMetadata(job.Metadata, metadata)
	if status == domain.AnalysisStatusCompleted {
		job.Percent = 100
	}
	job.CompletedAt = &now
	t.jobs[documentID] = job
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func mergeMetadata(dst, src map[string]interface{}) map[string]interface{} {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]interface{}, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// GetByDocument returns the latest job for the document, if any.
func (t *Tracker) GetByDocument(documentID uuid.UUID) (Job, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	job, ok := t.jobs[documentID]
	return job, ok
}

package progress_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidos/internal/domain"
	"evidos/internal/progress"
)

func TestTracker_StartAndGet(t *testing.T) {
	tracker := progress.NewTracker()
	docID := uuid.New()

	job, err := tracker.StartTracking(docID)
	require.NoError(t, err)
	assert.Equal(t, docID, job.DocumentID)
	assert.Equal(t, domain.AnalysisStatusRunning, job.Status)
	assert.Equal(t, progress.StepQueued, job.Step)
	assert.Equal(t, "queued", job.StepName)

	got, ok := tracker.GetByDocument(docID)
	require.True(t, ok)
	assert.Equal(t, job.ID, got.ID)
}

func TestTracker_RejectsConcurrentRun(t *testing.T) {
	tracker := progress.NewTracker()
	docID := uuid.New()

	_, err := tracker.StartTracking(docID)
	require.NoError(t, err)

	_, err = tracker.StartTracking(docID)
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)
}

func TestTracker_ReplacesFinishedJob(t *testing.T) {
	tracker := progress.NewTracker()
	docID := uuid.New()

	first, err := tracker.StartTracking(docID)
	require.NoError(t, err)
	tracker.CompleteJob(docID, nil)

	second, err := tracker.StartTracking(docID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, ok := tracker.GetByDocument(docID)
	require.True(t, ok)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, domain.AnalysisStatusRunning, got.Status)
}

func TestTracker_UpdateStep(t *testing.T) {
	tracker := progress.NewTracker()
	docID := uuid.New()

	_, err := tracker.StartTracking(docID)
	require.NoError(t, err)

	tracker.UpdateStep(docID, progress.StepExtracting, 10, map[string]interface{}{"word_count": 500})
	tracker.UpdateStep(docID, progress.StepScoring, 55, map[string]interface{}{"controls_selected": 3})

	got, ok := tracker.GetByDocument(docID)
	require.True(t, ok)
	assert.Equal(t, progress.StepScoring, got.Step)
	assert.Equal(t, "scoring", got.StepName)
	assert.Equal(t, 55, got.Percent)
	assert.Equal(t, 500, got.Metadata["word_count"])
	assert.Equal(t, 3, got.Metadata["controls_selected"])
}

func TestTracker_UpdateStepIgnoresUnknownDocument(t *testing.T) {
	tracker := progress.NewTracker()
	tracker.UpdateStep(uuid.New(), progress.StepExtracting, 10, nil)

	_, ok := tracker.GetByDocument(uuid.New())
	assert.False(t, ok)
}

func TestTracker_FailJob(t *testing.T) {
	tracker := progress.NewTracker()
	docID := uuid.New()

	_, err := tracker.StartTracking(docID)
	require.NoError(t, err)

	tracker.FailJob(docID, "extraction failed")

	got, ok := tracker.GetByDocument(docID)
	require.True(t, ok)
	assert.Equal(t, domain.AnalysisStatusFailed, got.Status)
	assert.Equal(t, "extraction failed", got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestTracker_CompleteJob(t *testing.T) {
	tracker := progress.NewTracker()
	docID := uuid.New()

	_, err := tracker.StartTracking(docID)
	require.NoError(t, err)

	tracker.CompleteJob(docID, map[string]interface{}{"evidence_created": 2})

	got, ok := tracker.GetByDocument(docID)
	require.True(t, ok)
	assert.Equal(t, domain.AnalysisStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Percent)
	assert.Equal(t, 2, got.Metadata["evidence_created"])
	assert.Empty(t, got.Error)
	require.NotNil(t, got.CompletedAt)
}

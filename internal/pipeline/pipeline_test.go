package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"evidos/internal/config"
	"evidos/internal/domain"
	"evidos/internal/pipeline"
	"evidos/internal/port"
	"evidos/internal/progress"
	"evidos/mocks"
)

type pipelineMocks struct {
	documents *mocks.MockDocumentRepo
	controls  *mocks.MockControlRepo
	evidence  *mocks.MockEvidenceRepo
	storage   *mocks.MockObjectStorage
	extractor *mocks.MockContentExtractor
	tracker   *progress.Tracker
}

func newTestPipeline() (*pipeline.Pipeline, *pipelineMocks) {
	m := &pipelineMocks{
		documents: new(mocks.MockDocumentRepo),
		controls:  new(mocks.MockControlRepo),
		evidence:  new(mocks.MockEvidenceRepo),
		storage:   new(mocks.MockObjectStorage),
		extractor: new(mocks.MockContentExtractor),
		tracker:   progress.NewTracker(),
	}
	p := pipeline.NewPipeline(
		m.documents, m.controls, m.evidence, m.storage, m.extractor,
		nil, m.tracker,
		config.PipelineConfig{BatchConcurrency: 2, ScoringConcurrency: 2, RunTimeoutSecs: 60},
	)
	return p, m
}

func testDocument(systemID uuid.UUID) *domain.Document {
	return &domain.Document{
		ID:             uuid.New(),
		SystemID:       systemID,
		OriginalName:   "access_policy.txt",
		ContentType:    "text/plain",
		S3Bucket:       "artifacts",
		S3Key:          "systems/x/doc.txt",
		AnalysisStatus: domain.AnalysisStatusPending,
	}
}

func testControl(systemID uuid.UUID) domain.Control {
	return domain.Control{
		ID:          uuid.New(),
		SystemID:    systemID,
		Identifier:  "AC-1",
		Family:      "AC",
		Title:       "Access Control Policy and Procedures",
		Description: "The organization develops and documents an access control policy.",
	}
}

func policyContent() *port.ExtractedContent {
	text := "This document describes the AC-1 access control policy and procedures for the system."
	return &port.ExtractedContent{
		Text:     text,
		Metadata: port.ContentMetadata{WordCount: 14, Language: "en"},
	}
}

func TestProcessDocument_FullRunCreatesEvidence(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	doc := testDocument(systemID)
	control := testControl(systemID)

	m.documents.On("GetByID", mock.Anything, systemID, doc.ID).Return(doc, nil)
	m.documents.On("UpdateAnalysisState", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Download", mock.Anything, doc.S3Bucket, doc.S3Key).Return([]byte("raw"), nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(policyContent(), nil)
	m.controls.On("ListBySystem", mock.Anything, systemID).Return([]domain.Control{control}, nil)
	m.evidence.On("DeleteByDocument", mock.Anything, doc.ID).Return(nil)
	m.evidence.On("CreateBatch", mock.Anything, mock.MatchedBy(func(rows []domain.Evidence) bool {
		return len(rows) == 1 && rows[0].ControlID == control.ID && rows[0].RelevanceScore > 30
	})).Return(nil)

	result, err := p.ProcessDocument(context.Background(), systemID, doc.ID, pipeline.Options{
		CreateEvidence: true, AnalyzeAllControls: true,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.EvidenceCreated)
	require.NotNil(t, result.Analysis)
	require.Len(t, result.Relevance, 1)
	assert.GreaterOrEqual(t, result.Relevance[0].Score, 40)

	job, ok := p.CurrentJob(doc.ID)
	require.True(t, ok)
	assert.Equal(t, domain.AnalysisStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Percent)
	assert.Equal(t, 1, job.Metadata["evidence_created"])

	assert.Equal(t, domain.AnalysisStatusCompleted, doc.AnalysisStatus)
	require.NotNil(t, doc.LastAnalyzedAt)
	m.evidence.AssertExpectations(t)
}

func TestProcessDocument_SkipsEvidenceWhenDisabled(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	doc := testDocument(systemID)

	m.documents.On("GetByID", mock.Anything, systemID, doc.ID).Return(doc, nil)
	m.documents.On("UpdateAnalysisState", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Download", mock.Anything, doc.S3Bucket, doc.S3Key).Return([]byte("raw"), nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(policyContent(), nil)
	m.controls.On("ListBySystem", mock.Anything, systemID).Return([]domain.Control{testControl(systemID)}, nil)

	result, err := p.ProcessDocument(context.Background(), systemID, doc.ID, pipeline.Options{
		CreateEvidence: false, AnalyzeAllControls: true,
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.EvidenceCreated)
	m.evidence.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	m.evidence.AssertNotCalled(t, "DeleteByDocument", mock.Anything, mock.Anything)
}

func TestGetProcessingStatus(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	doc := testDocument(systemID)
	doc.AnalysisStatus = domain.AnalysisStatusCompleted

	m.documents.On("GetByID", mock.Anything, systemID, doc.ID).Return(doc, nil)
	m.evidence.On("CountByDocument", mock.Anything, doc.ID).Return(3, nil)

	status, err := p.GetProcessingStatus(context.Background(), systemID, doc.ID)

	require.NoError(t, err)
	assert.True(t, status.Processed)
	assert.Equal(t, 3, status.EvidenceCount)
	assert.Nil(t, status.Job)
}

func TestProcessDocument_RejectsConcurrentRun(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	docID := uuid.New()

	_, err := m.tracker.StartTracking(docID)
	require.NoError(t, err)

	_, err = p.ProcessDocument(context.Background(), systemID, docID, pipeline.DefaultOptions())
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)
}

func TestProcessDocument_UnsupportedContentType(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	doc := testDocument(systemID)
	doc.ContentType = "image/png"

	m.documents.On("GetByID", mock.Anything, systemID, doc.ID).Return(doc, nil)
	m.documents.On("UpdateAnalysisState", mock.Anything, mock.Anything).Return(nil)

	result, err := p.ProcessDocument(context.Background(), systemID, doc.ID, pipeline.DefaultOptions())

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)

	job, ok := p.CurrentJob(doc.ID)
	require.True(t, ok)
	assert.Equal(t, domain.AnalysisStatusFailed, job.Status)
}

func TestProcessDocument_ExtractionFailureMarksDocumentFailed(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	doc := testDocument(systemID)

	m.documents.On("GetByID", mock.Anything, systemID, doc.ID).Return(doc, nil)
	m.documents.On("UpdateAnalysisState", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Download", mock.Anything, doc.S3Bucket, doc.S3Key).Return([]byte("raw"), nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(nil, errors.New("corrupt file"))

	result, err := p.ProcessDocument(context.Background(), systemID, doc.ID, pipeline.DefaultOptions())

	require.Error(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, domain.AnalysisStatusFailed, doc.AnalysisStatus)
	assert.Contains(t, doc.AnalysisError, "corrupt file")
}

func TestProcessDocument_SelectedControlsWithMissingIdentifier(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	doc := testDocument(systemID)
	control := testControl(systemID)

	m.documents.On("GetByID", mock.Anything, systemID, doc.ID).Return(doc, nil)
	m.documents.On("UpdateAnalysisState", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Download", mock.Anything, doc.S3Bucket, doc.S3Key).Return([]byte("raw"), nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(policyContent(), nil)
	m.controls.On("GetByIdentifier", mock.Anything, systemID, "AC-1").Return(&control, nil)
	m.controls.On("GetByIdentifier", mock.Anything, systemID, "ZZ-9").Return(nil, domain.ErrNotFound)
	m.evidence.On("DeleteByDocument", mock.Anything, doc.ID).Return(nil)
	m.evidence.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	result, err := p.ProcessDocument(context.Background(), systemID, doc.ID, pipeline.Options{
		CreateEvidence:     true,
		ControlIdentifiers: []string{"AC-1", "ZZ-9"},
	})

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Relevance, 1)
	assert.Equal(t, "AC-1", result.Relevance[0].ControlIdentifier)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "ZZ-9")
}

func TestProcessDocuments_IsolatesFailures(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	good := testDocument(systemID)
	badID := uuid.New()

	m.documents.On("GetByID", mock.Anything, systemID, good.ID).Return(good, nil)
	m.documents.On("GetByID", mock.Anything, systemID, badID).Return(nil, domain.ErrNotFound)
	m.documents.On("UpdateAnalysisState", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Download", mock.Anything, good.S3Bucket, good.S3Key).Return([]byte("raw"), nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(policyContent(), nil)
	m.controls.On("ListBySystem", mock.Anything, systemID).Return([]domain.Control{testControl(systemID)}, nil)
	m.evidence.On("DeleteByDocument", mock.Anything, good.ID).Return(nil)
	m.evidence.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	results := p.ProcessDocuments(context.Background(), systemID, []uuid.UUID{badID, good.ID}, pipeline.DefaultOptions())

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Errors)
	assert.True(t, results[1].Success)
}

func TestReprocessDocument_ClearsPreviousEvidence(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	doc := testDocument(systemID)

	m.documents.On("GetByID", mock.Anything, systemID, doc.ID).Return(doc, nil)
	m.documents.On("UpdateAnalysisState", mock.Anything, mock.Anything).Return(nil)
	m.storage.On("Download", mock.Anything, doc.S3Bucket, doc.S3Key).Return([]byte("raw"), nil)
	m.extractor.On("Extract", mock.Anything, mock.Anything).Return(policyContent(), nil)
	m.controls.On("ListBySystem", mock.Anything, systemID).Return([]domain.Control{testControl(systemID)}, nil)
	m.evidence.On("DeleteByDocument", mock.Anything, doc.ID).Return(nil)
	m.evidence.On("CreateBatch", mock.Anything, mock.Anything).Return(nil)

	result, err := p.ReprocessDocument(context.Background(), systemID, doc.ID, pipeline.DefaultOptions())

	require.NoError(t, err)
	assert.True(t, result.Success)
	// once before the rerun, once for the replace-wholesale write
	m.evidence.AssertNumberOfCalls(t, "DeleteByDocument", 2)
}

func TestReprocessDocument_RejectsWhileRunning(t *testing.T) {
	p, m := newTestPipeline()
	systemID := uuid.New()
	docID := uuid.New()

	_, err := m.tracker.StartTracking(docID)
	require.NoError(t, err)

	_, err = p.ReprocessDocument(context.Background(), systemID, docID, pipeline.DefaultOptions())
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)
	m.evidence.AssertNotCalled(t, "DeleteByDocument", mock.Anything, mock.Anything)
}

package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"evidos/internal/analysis"
	"evidos/internal/config"
	"evidos/internal/domain"
	"evidos/internal/port"
	"evidos/internal/progress"
)

// Options control a single processing run.
type Options struct {
	// UseAI routes analysis sub-steps through the completion gateway. The
	// heuristic path is used when false or when no gateway is configured.
	UseAI bool
	// CreateEvidence persists evidence rows for sufficiently relevant controls.
	CreateEvidence bool
	// AnalyzeAllControls scores every control of the system. When false,
	// ControlIdentifiers selects the controls to score.
	AnalyzeAllControls bool
	ControlIdentifiers []string
}

// DefaultOptions returns the options used when a request does not override them.
func DefaultOptions() Options {
	return Options{UseAI: true, CreateEvidence: true, AnalyzeAllControls: true}
}

// ProcessingResult reports the outcome of one document run.
type ProcessingResult struct {
	DocumentID      uuid.UUID                  `json:"document_id"`
	Success         bool                       `json:"success"`
	EvidenceCreated int                        `json:"evidence_created"`
	Analysis        *analysis.DocumentInsight  `json:"analysis,omitempty"`
	Relevance       []analysis.ControlRelevance `json:"relevance,omitempty"`
	Errors          []string                   `json:"errors,omitempty"`
}

// Pipeline orchestrates document processing: extraction, analysis, relevance
// scoring, evidence synthesis, and persistence.
type Pipeline struct {
	documents port.DocumentRepository
	controls  port.ControlRepository
	evidence  port.EvidenceRepository
	storage   port.ObjectStorage
	extractor port.ContentExtractor
	gateway   port.CompletionGateway // may be nil
	tracker   *progress.Tracker
	heuristic *analysis.HeuristicAnalyzer

	batchConcurrency   int
	scoringConcurrency int
	runTimeout         time.Duration
}

// NewPipeline wires a Pipeline from its dependencies. gateway may be nil, in
// which case every run takes the heuristic path regardless of options.
func NewPipeline(
	documents port.DocumentRepository,
	controls port.ControlRepository,
	evidence port.EvidenceRepository,
	storage port.ObjectStorage,
	extractor port.ContentExtractor,
	gateway port.CompletionGateway,
	tracker *progress.Tracker,
	cfg config.PipelineConfig,
) *Pipeline {
	batch := cfg.BatchConcurrency
	if batch <= 0 {
		batch = 3
	}
	timeout := time.Duration(cfg.RunTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Pipeline{
		documents:          documents,
		controls:           controls,
		evidence:           evidence,
		storage:            storage,
		extractor:          extractor,
		gateway:            gateway,
		tracker:            tracker,
		heuristic:          analysis.NewHeuristicAnalyzer(),
		batchConcurrency:   batch,
		scoringConcurrency: cfg.ScoringConcurrency,
		runTimeout:         timeout,
	}
}

// ProcessDocument runs the full pipeline for one document and blocks until
// it finishes. It returns an error for precondition failures (unknown
// document, a run already in flight); mid-run failures mark the document
// failed and are reported both in the result and as an error.
func (p *Pipeline) ProcessDocument(ctx context.Context, systemID, documentID uuid.UUID, opts Options) (*ProcessingResult, error) {
	if _, err := p.tracker.StartTracking(documentID); err != nil {
		return nil, err
	}
	return p.run(ctx, systemID, documentID, opts)
}

// StartDocument registers a job and runs the pipeline in the background.
// Callers poll GetProcessingStatus for progress.
func (p *Pipeline) StartDocument(systemID, documentID uuid.UUID, opts Options) (progress.Job, error) {
	job, err := p.tracker.StartTracking(documentID)
	if err != nil {
		return progress.Job{}, err
	}
	go func() {
		if _, err := p.run(context.Background(), systemID, documentID, opts); err != nil {
			log.Printf("pipeline.StartDocument: document %s: %v", documentID, err)
		}
	}()
	return job, nil
}

// StartReprocess clears the document's evidence and starts a fresh
// background run.
func (p *Pipeline) StartReprocess(ctx context.Context, systemID, documentID uuid.UUID, opts Options) (progress.Job, error) {
	if job, ok := p.tracker.GetByDocument(documentID); ok {
		if job.Status == domain.AnalysisStatusPending || job.Status == domain.AnalysisStatusRunning {
			return progress.Job{}, domain.ErrAnalysisInProgress
		}
	}
	if err := p.evidence.DeleteByDocument(ctx, documentID); err != nil {
		return progress.Job{}, fmt.Errorf("clearing previous evidence: %w", err)
	}
	return p.StartDocument(systemID, documentID, opts)
}

// run executes the pipeline stages for a job already registered on the tracker.
func (p *Pipeline) run(ctx context.Context, systemID, documentID uuid.UUID, opts Options) (*ProcessingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.runTimeout)
	defer cancel()

	result := &ProcessingResult{DocumentID: documentID}

	doc, err := p.documents.GetByID(ctx, systemID, documentID)
	if err != nil {
		p.fail(ctx, nil, documentID, result, fmt.Errorf("loading document: %w", err))
		return result, err
	}
	if _, ok := domain.AllowedContentTypes[doc.ContentType]; !ok {
		p.fail(ctx, doc, documentID, result, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, doc.ContentType))
		return result, domain.ErrUnsupportedFileType
	}

	doc.AnalysisStatus = domain.AnalysisStatusRunning
	doc.AnalysisError = ""
	if err := p.documents.UpdateAnalysisState(ctx, doc); err != nil {
		p.fail(ctx, nil, documentID, result, fmt.Errorf("marking document running: %w", err))
		return result, err
	}

	p.tracker.UpdateStep(documentID, progress.StepExtracting, 10, nil)
	data, err := p.storage.Download(ctx, doc.S3Bucket, doc.S3Key)
	if err != nil {
		err = fmt.Errorf("downloading document: %w", err)
		p.fail(ctx, doc, documentID, result, err)
		return result, err
	}
	content, err := p.extractor.Extract(ctx, port.ExtractInput{
		Data:        data,
		ContentType: doc.ContentType,
		FileName:    doc.OriginalName,
	})
	if err != nil {
		err = fmt.Errorf("extracting content: %w", err)
		p.fail(ctx, doc, documentID, result, err)
		return result, err
	}

	controls, selectionErrs, err := p.selectControls(ctx, systemID, opts)
	if err != nil {
		p.fail(ctx, doc, documentID, result, err)
		return result, err
	}
	result.Errors = append(result.Errors, selectionErrs...)

	coord := p.coordinatorFor(opts)

	p.tracker.UpdateStep(documentID, progress.StepAnalyzing, 35, map[string]interface{}{
		"word_count":        content.Metadata.WordCount,
		"controls_selected": len(controls),
	})
	insight := coord.Describe(ctx, content, controls)

	p.tracker.UpdateStep(documentID, progress.StepScoring, 55, nil)
	relevance := coord.ScoreControls(ctx, content, controls)
	coord.Finalize(insight, content, relevance)
	result.Analysis = insight
	result.Relevance = relevance

	if opts.CreateEvidence {
		p.tracker.UpdateStep(documentID, progress.StepSynthesizing, 75, map[string]interface{}{
			"controls_scored": len(relevance),
		})
		candidates := analysis.Synthesize(documentID, relevance)

		p.tracker.UpdateStep(documentID, progress.StepPersisting, 90, nil)
		created, err := p.persistEvidence(ctx, doc, controls, candidates)
		if err != nil {
			err = fmt.Errorf("persisting evidence: %w", err)
			p.fail(ctx, doc, documentID, result, err)
			return result, err
		}
		result.EvidenceCreated = created
	}

	now := time.Now().UTC()
	doc.AnalysisStatus = domain.AnalysisStatusCompleted
	doc.AnalysisError = ""
	doc.LastAnalyzedAt = &now
	if err := p.documents.UpdateAnalysisState(ctx, doc); err != nil {
		p.fail(ctx, nil, documentID, result, fmt.Errorf("marking document completed: %w", err))
		return result, err
	}

	p.tracker.CompleteJob(documentID, map[string]interface{}{
		"evidence_created": result.EvidenceCreated,
	})
	result.Success = true
	return result, nil
}

// ProcessDocuments runs the pipeline over a batch with bounded concurrency.
// Each document fails independently; the returned slice matches input order.
func (p *Pipeline) ProcessDocuments(ctx context.Context, systemID uuid.UUID, documentIDs []uuid.UUID, opts Options) []*ProcessingResult {
	results := make([]*ProcessingResult, len(documentIDs))
	sem := make(chan struct{}, p.batchConcurrency)
	var wg sync.WaitGroup

	for i, id := range documentIDs {
		i, id := i, id
		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := p.ProcessDocument(ctx, systemID, id, opts)
			if err != nil {
				log.Printf("pipeline.ProcessDocuments: document %s failed: %v", id, err)
				if result == nil {
					result = &ProcessingResult{DocumentID: id}
				}
				result.Errors = append(result.Errors, err.Error())
			}
			results[i] = result
		}()
	}
	wg.Wait()

	return results
}

// ProcessSystem runs the pipeline over every document of a system and blocks
// until the batch finishes.
func (p *Pipeline) ProcessSystem(ctx context.Context, systemID uuid.UUID, opts Options) ([]*ProcessingResult, error) {
	ids, err := p.listDocumentIDs(ctx, systemID)
	if err != nil {
		return nil, err
	}
	return p.ProcessDocuments(ctx, systemID, ids, opts), nil
}

// StartSystem lists the system's documents and processes them in the
// background. It returns the document IDs that were queued.
func (p *Pipeline) StartSystem(ctx context.Context, systemID uuid.UUID, opts Options) ([]uuid.UUID, error) {
	ids, err := p.listDocumentIDs(ctx, systemID)
	if err != nil {
		return nil, err
	}
	go p.ProcessDocuments(context.Background(), systemID, ids, opts)
	return ids, nil
}

func (p *Pipeline) listDocumentIDs(ctx context.Context, systemID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	offset := 0
	const page = 100
	for {
		docs, total, err := p.documents.ListBySystem(ctx, systemID, offset, page)
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
		for _, d := range docs {
			ids = append(ids, d.ID)
		}
		offset += len(docs)
		if offset >= total || len(docs) == 0 {
			break
		}
	}
	return ids, nil
}

// ReprocessDocument deletes the document's existing evidence and runs the
// pipeline again.
func (p *Pipeline) ReprocessDocument(ctx context.Context, systemID, documentID uuid.UUID, opts Options) (*ProcessingResult, error) {
	if job, ok := p.tracker.GetByDocument(documentID); ok {
		if job.Status == domain.AnalysisStatusPending || job.Status == domain.AnalysisStatusRunning {
			return nil, domain.ErrAnalysisInProgress
		}
	}
	if err := p.evidence.DeleteByDocument(ctx, documentID); err != nil {
		return nil, fmt.Errorf("clearing previous evidence: %w", err)
	}
	return p.ProcessDocument(ctx, systemID, documentID, opts)
}

// ProcessingStatus summarizes a document's analysis state for status polling.
type ProcessingStatus struct {
	Processed     bool          `json:"processed"`
	LastProcessed *time.Time    `json:"last_processed,omitempty"`
	EvidenceCount int           `json:"evidence_count"`
	Job           *progress.Job `json:"job,omitempty"`
}

// GetProcessingStatus reports whether the document has been analyzed, when,
// how much evidence it produced, and the in-flight job if one exists.
func (p *Pipeline) GetProcessingStatus(ctx context.Context, systemID, documentID uuid.UUID) (*ProcessingStatus, error) {
	doc, err := p.documents.GetByID(ctx, systemID, documentID)
	if err != nil {
		return nil, err
	}
	count, err := p.evidence.CountByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("counting evidence: %w", err)
	}

	status := &ProcessingStatus{
		Processed:     doc.AnalysisStatus == domain.AnalysisStatusCompleted,
		LastProcessed: doc.LastAnalyzedAt,
		EvidenceCount: count,
	}
	if job, ok := p.tracker.GetByDocument(documentID); ok {
		status.Job = &job
	}
	return status, nil
}

// CurrentJob returns the latest tracked job for the document.
func (p *Pipeline) CurrentJob(documentID uuid.UUID) (progress.Job, bool) {
	return p.tracker.GetByDocument(documentID)
}

func (p *Pipeline) coordinatorFor(opts Options) *analysis.Coordinator {
	if opts.UseAI && p.gateway != nil {
		return analysis.NewCoordinator(p.gateway, analysis.NewAIScorer(p.gateway, p.heuristic), p.heuristic, p.scoringConcurrency)
	}
	return analysis.NewCoordinator(nil, analysis.NewHeuristicScorer(p.heuristic), p.heuristic, p.scoringConcurrency)
}

// selectControls resolves the controls to score. Identifiers that do not
// resolve are reported as soft errors; a selection that resolves nothing is
// a hard error.
func (p *Pipeline) selectControls(ctx context.Context, systemID uuid.UUID, opts Options) ([]domain.Control, []string, error) {
	if opts.AnalyzeAllControls || len(opts.ControlIdentifiers) == 0 {
		controls, err := p.controls.ListBySystem(ctx, systemID)
		if err != nil {
			return nil, nil, fmt.Errorf("listing controls: %w", err)
		}
		return controls, nil, nil
	}

	var controls []domain.Control
	var soft []string
	for _, identifier := range opts.ControlIdentifiers {
		control, err := p.controls.GetByIdentifier(ctx, systemID, identifier)
		if err != nil {
			soft = append(soft, fmt.Sprintf("control %s: %v", identifier, err))
			continue
		}
		controls = append(controls, *control)
	}
	if len(controls) == 0 {
		return nil, soft, domain.ErrNoControls
	}
	return controls, soft, nil
}

// persistEvidence replaces the document's evidence rows with the new
// candidates. Candidates whose control identifier is not in the scored set
// are skipped.
func (p *Pipeline) persistEvidence(ctx context.Context, doc *domain.Document, controls []domain.Control, candidates []analysis.EvidenceCandidate) (int, error) {
	byIdentifier := make(map[string]domain.Control, len(controls))
	for _, c := range controls {
		byIdentifier[c.Identifier] = c
	}

	rows := make([]domain.Evidence, 0, len(candidates))
	for _, cand := range candidates {
		control, ok := byIdentifier[cand.ControlIdentifier]
		if !ok {
			log.Printf("pipeline.persistEvidence: skipping unknown control %s", cand.ControlIdentifier)
			continue
		}
		rows = append(rows, domain.Evidence{
			ID:             uuid.New(),
			SystemID:       doc.SystemID,
			DocumentID:     doc.ID,
			ControlID:      control.ID,
			RelevanceScore: cand.RelevanceScore,
			Satisfaction:   cand.Satisfaction,
			ExcerptSummary: cand.ExcerptSummary,
		})
	}

	if err := p.evidence.DeleteByDocument(ctx, doc.ID); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := p.evidence.CreateBatch(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// fail records a run failure on the tracker, the result, and (when the
// document is known) the document row.
func (p *Pipeline) fail(ctx context.Context, doc *domain.Document, documentID uuid.UUID, result *ProcessingResult, err error) {
	log.Printf("pipeline.ProcessDocument: document %s: %v", documentID, err)
	result.Errors = append(result.Errors, err.Error())
	p.tracker.FailJob(documentID, err.Error())
	if doc != nil {
		doc.AnalysisStatus = domain.AnalysisStatusFailed
		doc.AnalysisError = err.Error()
		if uerr := p.documents.UpdateAnalysisState(ctx, doc); uerr != nil {
			log.Printf("pipeline.ProcessDocument: recording failure for %s: %v", documentID, uerr)
		}
	}
}

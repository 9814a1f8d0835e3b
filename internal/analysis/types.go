package analysis

import (
	"github.com/google/uuid"

	"evidos/internal/domain"
)

// SectionRelevance is a single section's score against a control.
type SectionRelevance struct {
	Title string `json:"title"`
	Score int    `json:"score"`
}

// ControlRelevance is the result of scoring one document (or section) against
// one control. One per (document, control) pair per run; re-running replaces
// prior results for that pair.
type ControlRelevance struct {
	ControlIdentifier string             `json:"control_identifier"`
	Score             int                `json:"score"`
	Rationale         string             `json:"rationale"`
	EvidenceExcerpts  []string           `json:"evidence_excerpts"`
	Gaps              []string           `json:"gaps"`
	Recommendations   []string           `json:"recommendations"`
	RelevantSections  []SectionRelevance `json:"relevant_sections,omitempty"`
}

// ImplementationDetails groups extracted implementation facts into the six
// fixed categories the pipeline recognizes.
type ImplementationDetails struct {
	Technologies       []string `json:"technologies"`
	Processes          []string `json:"processes"`
	Policies           []string `json:"policies"`
	Procedures         []string `json:"procedures"`
	Tools              []string `json:"tools"`
	ResponsibleParties []string `json:"responsible_parties"`
}

// DocumentInsight is the document-level analysis produced by the Coordinator.
type DocumentInsight struct {
	Summary               string                `json:"summary"`
	KeyTopics             []string              `json:"key_topics"`
	MentionedControlIDs   []string              `json:"mentioned_control_ids"`
	ImplementationDetails ImplementationDetails `json:"implementation_details"`
	ControlRelevance      []ControlRelevance    `json:"control_relevance"`
	Confidence            int                   `json:"confidence"`
}

// EvidenceCandidate is a proposed evidence record for a qualifying
// (document, control) pair. Persistence is the caller's concern.
type EvidenceCandidate struct {
	ControlIdentifier string                   `json:"control_identifier"`
	DocumentID        uuid.UUID                `json:"document_id"`
	RelevanceScore    int                      `json:"relevance_score"`
	ExcerptSummary    string                   `json:"excerpt_summary"`
	Satisfaction      domain.SatisfactionLevel `json:"satisfaction"`
}

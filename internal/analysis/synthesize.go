package analysis

import (
	"strings"

	"github.com/google/uuid"

	"evidos/internal/domain"
)

// evidenceThreshold is the minimum relevance score (exclusive) for a result
// to produce an evidence candidate.
const evidenceThreshold = 30

// Synthesize converts scored relevance results into evidence candidates.
// A candidate is emitted only when the score strictly exceeds the threshold.
// This is a pure transformation; persistence belongs to the caller.
func Synthesize(documentID uuid.UUID, results []ControlRelevance) []EvidenceCandidate {
	candidates := make([]EvidenceCandidate, 0, len(results))
	for _, r := range results {
		if r.Score <= evidenceThreshold {
			continue
		}
		candidates = append(candidates, EvidenceCandidate{
			ControlIdentifier: r.ControlIdentifier,
			DocumentID:        documentID,
			RelevanceScore:    r.Score,
			ExcerptSummary:    excerptSummary(r),
			Satisfaction:      domain.SatisfactionForScore(r.Score),
		})
	}
	return candidates
}

func excerptSummary(r ControlRelevance) string {
	summary := strings.TrimSpace(r.Rationale)
	if len(r.EvidenceExcerpts) > 0 {
		excerpt := strings.TrimSpace(r.EvidenceExcerpts[0])
		if excerpt != "" {
			if summary != "" {
				summary += " "
			}
			summary += "Supporting excerpt: " + excerpt
		}
	}
	return summary
}

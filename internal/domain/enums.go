package domain

// AnalysisStatus represents the lifecycle of a document's analysis.
type AnalysisStatus string

const (
	AnalysisStatusPending   AnalysisStatus = "pending"
	AnalysisStatusRunning   AnalysisStatus = "running"
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)

// SatisfactionLevel classifies how well a document satisfies a control.
type SatisfactionLevel string

const (
	SatisfactionSatisfies SatisfactionLevel = "satisfies"
	SatisfactionPartial   SatisfactionLevel = "partially_satisfies"
	SatisfactionNone      SatisfactionLevel = "does_not_satisfy"
)

// SatisfactionForScore maps a relevance score to a satisfaction level.
// Scores of 70 or below down to 40 count as partial; everything lower does
// not satisfy.
func SatisfactionForScore(score int) SatisfactionLevel {
	switch {
	case score > 70:
		return SatisfactionSatisfies
	case score >= 40:
		return SatisfactionPartial
	default:
		return SatisfactionNone
	}
}

// AllowedContentTypes maps supported MIME content types to a short format label.
var AllowedContentTypes = map[string]string{
	"application/pdf": "pdf",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "docx",
	"text/html":     "html",
	"text/plain":    "txt",
	"text/markdown": "md",
}

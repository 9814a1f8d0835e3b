package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidos/internal/analysis"
	"evidos/internal/domain"
	"evidos/internal/port"
)

func accessControl() domain.Control {
	return domain.Control{
		Identifier:  "AC-1",
		Family:      "AC",
		Title:       "Access Control Policy and Procedures",
		Description: "The organization develops and documents an access control policy.",
	}
}

func TestScoreValue_DirectIdentifierMatch(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	text := "This policy implements AC-1 requirements for the organization."

	score := h.ScoreValue(text, accessControl())

	// identifier match alone is worth 40
	assert.GreaterOrEqual(t, score, 40)
}

func TestScoreValue_IdentifierIsWholeToken(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	control := domain.Control{Identifier: "AC-1", Title: "zzz", Description: "zzz"}

	assert.Less(t, h.ScoreValue("the AC-10 control is different", control), 40)
	assert.GreaterOrEqual(t, h.ScoreValue("the AC-1 control applies", control), 40)
}

func TestScoreValue_FamilyKeyword(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	control := domain.Control{Identifier: "AC-7", Family: "AC", Title: "zzz", Description: "zzz"}

	score := h.ScoreValue("all access control decisions are logged", control)

	assert.GreaterOrEqual(t, score, 20)
	assert.Less(t, score, 40)
}

func TestScoreValue_NoMatchIsZero(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()

	score := h.ScoreValue("completely unrelated cooking recipe", domain.Control{
		Identifier: "SC-7", Family: "SC", Title: "Boundary Protection", Description: "Monitors communications",
	})

	assert.Equal(t, 0, score)
}

func TestScoreValue_ClampedTo100(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	text := "AC-1 access control policy and procedures organization develops documents"

	score := h.ScoreValue(text, accessControl())

	assert.LessOrEqual(t, score, 100)
	assert.Greater(t, score, 70)
}

func TestScore_RationaleReflectsMatchState(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	control := accessControl()

	direct := h.Score("Document references AC-1 explicitly.", control)
	assert.Contains(t, direct.Rationale, "directly references AC-1")
	assert.Empty(t, direct.Gaps)

	indirect := h.Score("Our access control policy covers this.", control)
	assert.Contains(t, indirect.Rationale, "without referencing it directly")
	require.Len(t, indirect.Gaps, 1)

	miss := h.Score("nothing relevant here", control)
	assert.Contains(t, miss.Rationale, "No terminology")
	assert.NotEmpty(t, miss.Recommendations)
}

func TestSectionScores_FilterAndOrder(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	sections := []port.Section{
		{Title: "Introduction", Content: "general background", Level: 1},
		{Title: "Access Control", Content: "AC-1 access control policy and procedures", Level: 1},
		{Title: "Appendix", Content: "access control policy notes", Level: 1},
	}

	scored := h.SectionScores(sections, accessControl())

	require.NotEmpty(t, scored)
	for _, s := range scored {
		assert.Greater(t, s.Score, 30)
	}
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
	assert.Equal(t, "Access Control", scored[0].Title)
}

func TestSummarize_EmptyDocument(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	content := &port.ExtractedContent{Text: "", Metadata: port.ContentMetadata{WordCount: 0}}

	assert.Equal(t, "Document contains limited text content.", h.Summarize(content))
}

func TestSummarize_UsesIntroSentenceAndWordCount(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	text := "Short lead. This document describes the access control program for the payroll system. More text follows."
	content := &port.ExtractedContent{Text: text, Metadata: port.ContentMetadata{WordCount: 17}}

	summary := h.Summarize(content)

	assert.Contains(t, summary, "This document describes the access control program")
	assert.Contains(t, summary, "contains 17 words")
}

func TestKeyTopics_FromVocabulary(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	text := "We enforce access control and audit logging with strong encryption."

	topics := h.KeyTopics(text)

	assert.Contains(t, topics, "access control")
	assert.Contains(t, topics, "encryption")
	assert.LessOrEqual(t, len(topics), 10)
}

func TestMentionedControls_PreservesOrderAndDedupes(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	controls := []domain.Control{
		{Identifier: "SC-7", Family: "SC", Title: "Boundary Protection"},
		{Identifier: "AC-1", Family: "AC", Title: "Access Control Policy"},
		{Identifier: "AC-1", Family: "AC", Title: "Access Control Policy"},
		{Identifier: "XX-9", Family: "XX", Title: "Unmatched Thing"},
	}
	text := "The firewall enforces boundary protection. AC-1 applies as well."

	mentioned := h.MentionedControls(text, controls)

	assert.Equal(t, []string{"SC-7", "AC-1"}, mentioned)
}

func TestImplementationDetails_Categories(t *testing.T) {
	h := analysis.NewHeuristicAnalyzer()
	text := "We run Kubernetes on AWS, scan with Nessus, follow the incident response process, " +
		"and enforce the password policy. System administrators review backup procedures."

	details := h.ImplementationDetails(text)

	assert.Contains(t, details.Technologies, "Kubernetes")
	assert.Contains(t, details.Tools, "Nessus")
	assert.NotEmpty(t, details.Processes)
	assert.NotEmpty(t, details.Policies)
	assert.NotEmpty(t, details.Procedures)
	assert.NotEmpty(t, details.ResponsibleParties)
}

package analysis_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"evidos/internal/analysis"
	"evidos/internal/domain"
	"evidos/internal/port"
	"evidos/mocks"
)

func heuristicCoordinator() *analysis.Coordinator {
	h := analysis.NewHeuristicAnalyzer()
	return analysis.NewCoordinator(nil, analysis.NewHeuristicScorer(h), h, 2)
}

func TestCoordinator_HeuristicPathProducesCompleteInsight(t *testing.T) {
	content := extractedContent("This document describes the access control program. AC-1 applies. We use encryption and audit logging.")
	controls := []domain.Control{accessControl()}

	insight := heuristicCoordinator().Analyze(context.Background(), content, controls)

	require.NotNil(t, insight)
	assert.NotEmpty(t, insight.Summary)
	assert.Contains(t, insight.KeyTopics, "access control")
	assert.Equal(t, []string{"AC-1"}, insight.MentionedControlIDs)
	require.Len(t, insight.ControlRelevance, 1)
	assert.GreaterOrEqual(t, insight.ControlRelevance[0].Score, 40)
	assert.Greater(t, insight.Confidence, 0)
}

func TestCoordinator_AlwaysFailingGatewayStillSucceeds(t *testing.T) {
	gw := new(mocks.MockCompletionGateway)
	gw.On("Complete", mock.Anything, mock.Anything).Return("", errors.New("provider down"))

	h := analysis.NewHeuristicAnalyzer()
	coord := analysis.NewCoordinator(gw, analysis.NewAIScorer(gw, h), h, 2)

	content := extractedContent("AC-1 access control policy text with encryption.")
	insight := coord.Analyze(context.Background(), content, []domain.Control{accessControl()})

	require.NotNil(t, insight)
	assert.NotEmpty(t, insight.Summary)
	require.Len(t, insight.ControlRelevance, 1)
	assert.GreaterOrEqual(t, insight.ControlRelevance[0].Score, 40)
}

func TestCoordinator_ZeroControls(t *testing.T) {
	content := extractedContent("Some document text that is long enough to summarize properly here.")

	insight := heuristicCoordinator().Analyze(context.Background(), content, nil)

	require.NotNil(t, insight)
	assert.Empty(t, insight.ControlRelevance)
	assert.Empty(t, insight.MentionedControlIDs)
}

func TestCoordinator_CapsControlsAtTen(t *testing.T) {
	controls := make([]domain.Control, 15)
	for i := range controls {
		controls[i] = domain.Control{
			Identifier: fmt.Sprintf("AC-%d", i+1),
			Family:     "AC",
			Title:      "Access Control",
		}
	}

	content := extractedContent("access control everywhere")
	insight := heuristicCoordinator().Analyze(context.Background(), content, controls)

	assert.Len(t, insight.ControlRelevance, 10)
	assert.Equal(t, "AC-1", insight.ControlRelevance[0].ControlIdentifier)
	assert.Equal(t, "AC-10", insight.ControlRelevance[9].ControlIdentifier)
}

func TestCoordinator_ConfidenceLowForEmptyDocument(t *testing.T) {
	content := &port.ExtractedContent{Text: "", Metadata: port.ContentMetadata{WordCount: 0}}

	insight := heuristicCoordinator().Analyze(context.Background(), content, nil)

	assert.Equal(t, "Document contains limited text content.", insight.Summary)
	assert.LessOrEqual(t, insight.Confidence, 20)
}

func TestCoordinator_UsesGatewaySummaryAndTopics(t *testing.T) {
	gw := new(mocks.MockCompletionGateway)
	// Summary, topics, and details prompts each get a distinct reply; the
	// relevance prompt is answered with valid JSON too.
	gw.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return req.MaxTokens == 256 && req.Temperature == 0.3
	})).Return("A concise model-written summary.", nil)
	gw.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return req.MaxTokens == 256 && req.Temperature == 0.2
	})).Return(`["access control","encryption"]`, nil)
	gw.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return req.MaxTokens == 512
	})).Return(`{"technologies":["AWS"],"processes":[],"policies":[],"procedures":[],"tools":[],"responsible_parties":[]}`, nil)
	gw.On("Complete", mock.Anything, mock.MatchedBy(func(req port.CompletionRequest) bool {
		return req.MaxTokens == 1024
	})).Return(`{"score": 66, "rationale": "covered", "evidence": [], "gaps": [], "recommendations": []}`, nil)

	h := analysis.NewHeuristicAnalyzer()
	coord := analysis.NewCoordinator(gw, analysis.NewAIScorer(gw, h), h, 2)

	content := extractedContent("document body text")
	insight := coord.Analyze(context.Background(), content, []domain.Control{accessControl()})

	assert.Equal(t, "A concise model-written summary.", insight.Summary)
	assert.Equal(t, []string{"access control", "encryption"}, insight.KeyTopics)
	assert.Equal(t, []string{"AWS"}, insight.ImplementationDetails.Technologies)
	require.Len(t, insight.ControlRelevance, 1)
	assert.Equal(t, 66, insight.ControlRelevance[0].Score)
}

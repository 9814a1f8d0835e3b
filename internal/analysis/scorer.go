package analysis

import (
	"context"
	"log"

	"evidos/internal/domain"
	"evidos/internal/port"
)

// RelevanceScorer computes how well document text satisfies a control.
type RelevanceScorer interface {
	Score(ctx context.Context, content *port.ExtractedContent, control domain.Control) (ControlRelevance, error)
}

// HeuristicScorer is the deterministic scoring path.
type HeuristicScorer struct {
	heuristic *HeuristicAnalyzer
}

// NewHeuristicScorer creates a HeuristicScorer.
func NewHeuristicScorer(h *HeuristicAnalyzer) *HeuristicScorer {
	return &HeuristicScorer{heuristic: h}
}

func (s *HeuristicScorer) Score(_ context.Context, content *port.ExtractedContent, control domain.Control) (ControlRelevance, error) {
	result := s.heuristic.Score(content.Text, control)
	result.RelevantSections = s.heuristic.SectionScores(content.Sections, control)
	return result, nil
}

// AIScorer asks a completion gateway for a structured relevance judgment and
// silently degrades to the heuristic path on any transport or parse failure.
// It never returns an error from a gateway problem.
type AIScorer struct {
	gateway   port.CompletionGateway
	heuristic *HeuristicAnalyzer
}

// NewAIScorer creates an AIScorer backed by the given gateway.
func NewAIScorer(gw port.CompletionGateway, h *HeuristicAnalyzer) *AIScorer {
	return &AIScorer{gateway: gw, heuristic: h}
}

func (s *AIScorer) Score(ctx context.Context, content *port.ExtractedContent, control domain.Control) (ControlRelevance, error) {
	payload, err := s.complete(ctx, content.Text, control)
	if err != nil {
		log.Printf("analysis.AIScorer: falling back to heuristic for %s: %v", control.Identifier, err)
		result := s.heuristic.Score(content.Text, control)
		result.RelevantSections = s.heuristic.SectionScores(content.Sections, control)
		return result, nil
	}

	result := ControlRelevance{
		ControlIdentifier: control.Identifier,
		Score:             int(*payload.Score),
		Rationale:         payload.Rationale,
		EvidenceExcerpts:  payload.Evidence,
		Gaps:              payload.Gaps,
		Recommendations:   payload.Recommendations,
		RelevantSections:  s.heuristic.SectionScores(content.Sections, control),
	}
	return result, nil
}

func (s *AIScorer) complete(ctx context.Context, text string, control domain.Control) (*relevancePayload, error) {
	reply, err := s.gateway.Complete(ctx, port.CompletionRequest{
		Prompt:      BuildRelevancePrompt(text, control),
		MaxTokens:   1024,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}
	return parseRelevanceResponse(reply)
}

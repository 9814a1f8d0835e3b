package analysis

import (
	"context"
	"log"
	"strings"
	"sync"

	"evidos/internal/domain"
	"evidos/internal/port"
)

// maxControlsPerRun caps per-document scoring fan-out to bound gateway cost.
const maxControlsPerRun = 10

// defaultScoringConcurrency bounds concurrent relevance calls within one run.
const defaultScoringConcurrency = 4

// Coordinator runs document-level analysis: summary, key topics, control
// mentions, implementation details, and per-control relevance. Every
// AI-assisted sub-step falls back independently to the heuristic path, so
// Analyze always produces a complete insight for extractable content.
type Coordinator struct {
	gateway            port.CompletionGateway // nil disables the AI path entirely
	scorer             RelevanceScorer
	heuristic          *HeuristicAnalyzer
	scoringConcurrency int
}

// NewCoordinator creates a Coordinator. A nil gateway makes every sub-step
// take the heuristic path.
func NewCoordinator(gw port.CompletionGateway, scorer RelevanceScorer, h *HeuristicAnalyzer, scoringConcurrency int) *Coordinator {
	if scoringConcurrency <= 0 {
		scoringConcurrency = defaultScoringConcurrency
	}
	return &Coordinator{
		gateway:            gw,
		scorer:             scorer,
		heuristic:          h,
		scoringConcurrency: scoringConcurrency,
	}
}

// Analyze produces a complete DocumentInsight for the extracted content
// against the supplied controls. Only the first ten controls are scored.
func (c *Coordinator) Analyze(ctx context.Context, content *port.ExtractedContent, controls []domain.Control) *DocumentInsight {
	insight := c.Describe(ctx, content, controls)
	c.Finalize(insight, content, c.ScoreControls(ctx, content, controls))
	return insight
}

// Describe runs the non-scoring sub-steps: summary, key topics, control
// mentions, and implementation details. Relevance and confidence are filled
// in later by Finalize so callers can report scoring progress separately.
func (c *Coordinator) Describe(ctx context.Context, content *port.ExtractedContent, controls []domain.Control) *DocumentInsight {
	return &DocumentInsight{
		Summary:               c.summarize(ctx, content),
		KeyTopics:             c.keyTopics(ctx, content.Text),
		MentionedControlIDs:   c.heuristic.MentionedControls(content.Text, controls),
		ImplementationDetails: c.implementationDetails(ctx, content.Text),
	}
}

// Finalize attaches relevance results to an insight and computes confidence.
func (c *Coordinator) Finalize(insight *DocumentInsight, content *port.ExtractedContent, relevance []ControlRelevance) {
	insight.ControlRelevance = relevance
	insight.Confidence = confidence(relevance, content)
}

func (c *Coordinator) summarize(ctx context.Context, content *port.ExtractedContent) string {
	if c.gateway != nil && strings.TrimSpace(content.Text) != "" {
		reply, err := c.gateway.Complete(ctx, port.CompletionRequest{
			Prompt:      BuildSummaryPrompt(content.Text),
			MaxTokens:   256,
			Temperature: 0.3,
		})
		if err == nil {
			if summary := strings.TrimSpace(reply); summary != "" {
				return summary
			}
		} else {
			log.Printf("analysis.Coordinator: summary fallback: %v", err)
		}
	}
	return c.heuristic.Summarize(content)
}

func (c *Coordinator) keyTopics(ctx context.Context, text string) []string {
	if c.gateway != nil && strings.TrimSpace(text) != "" {
		reply, err := c.gateway.Complete(ctx, port.CompletionRequest{
			Prompt:      BuildTopicsPrompt(text),
			MaxTokens:   256,
			Temperature: 0.2,
		})
		if err == nil {
			if topics, perr := parseTopicsResponse(reply); perr == nil {
				return topics
			} else {
				log.Printf("analysis.Coordinator: topics fallback: %v", perr)
			}
		} else {
			log.Printf("analysis.Coordinator: topics fallback: %v", err)
		}
	}
	return c.heuristic.KeyTopics(text)
}

func (c *Coordinator) implementationDetails(ctx context.Context, text string) ImplementationDetails {
	if c.gateway != nil && strings.TrimSpace(text) != "" {
		reply, err := c.gateway.Complete(ctx, port.CompletionRequest{
			Prompt:      BuildDetailsPrompt(text),
			MaxTokens:   512,
			Temperature: 0.2,
		})
		if err == nil {
			if details, perr := parseDetailsResponse(reply); perr == nil {
				return *details
			} else {
				log.Printf("analysis.Coordinator: details fallback: %v", perr)
			}
		} else {
			log.Printf("analysis.Coordinator: details fallback: %v", err)
		}
	}
	return c.heuristic.ImplementationDetails(text)
}

// ScoreControls scores up to maxControlsPerRun controls with bounded
// concurrency. An individual control's failure is recorded as a zero-score
// result instead of aborting the batch, and results keep input order.
func (c *Coordinator) ScoreControls(ctx context.Context, content *port.ExtractedContent, controls []domain.Control) []ControlRelevance {
	if len(controls) > maxControlsPerRun {
		log.Printf("analysis.Coordinator: capping relevance scoring to first %d of %d controls", maxControlsPerRun, len(controls))
		controls = controls[:maxControlsPerRun]
	}
	if len(controls) == 0 {
		return []ControlRelevance{}
	}

	results := make([]ControlRelevance, len(controls))
	sem := make(chan struct{}, c.scoringConcurrency)
	var wg sync.WaitGroup

	for i := range controls {
		i := i
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }() // release

			result, err := c.scorer.Score(ctx, content, controls[i])
			if err != nil {
				log.Printf("analysis.Coordinator: scoring %s failed: %v", controls[i].Identifier, err)
				results[i] = zeroScoreResult(controls[i])
				return
			}
			results[i] = result
		}()
	}
	wg.Wait()

	return results
}

func zeroScoreResult(control domain.Control) ControlRelevance {
	return ControlRelevance{
		ControlIdentifier: control.Identifier,
		Score:             0,
		Rationale:         "Relevance scoring failed for this control.",
		EvidenceExcerpts:  []string{},
		Gaps:              []string{},
		Recommendations:   []string{},
	}
}

// confidence combines average relevance with capped word-count and
// section-count contributions.
func confidence(results []ControlRelevance, content *port.ExtractedContent) int {
	avg := 0.0
	if len(results) > 0 {
		total := 0
		for _, r := range results {
			total += r.Score
		}
		avg = float64(total) / float64(len(results))
	}

	wordTerm := float64(content.Metadata.WordCount) / 1000
	if wordTerm > 1 {
		wordTerm = 1
	}

	sectionTerm := float64(len(flattenSections(content.Sections))) * 5
	if sectionTerm > 20 {
		sectionTerm = 20
	}

	value := avg*0.6 + wordTerm*20 + sectionTerm
	if value > 100 {
		value = 100
	}
	return int(value)
}

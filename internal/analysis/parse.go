package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// relevancePayload is the JSON shape expected from a relevance completion.
// Score is a pointer so a missing field is distinguishable from zero.
type relevancePayload struct {
	Score           *float64 `json:"score"`
	Rationale       string   `json:"rationale"`
	Evidence        []string `json:"evidence"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

// detailsPayload is the JSON shape expected from a details completion.
type detailsPayload struct {
	Technologies       []string `json:"technologies"`
	Processes          []string `json:"processes"`
	Policies           []string `json:"policies"`
	Procedures         []string `json:"procedures"`
	Tools              []string `json:"tools"`
	ResponsibleParties []string `json:"responsible_parties"`
}

// extractJSONObject locates the outermost JSON object in a model reply,
// tolerating code fences and surrounding prose.
func extractJSONObject(text string) (string, error) {
	return extractDelimited(text, '{', '}')
}

// extractJSONArray locates the outermost JSON array in a model reply.
func extractJSONArray(text string) (string, error) {
	return extractDelimited(text, '[', ']')
}

func extractDelimited(text string, open, close byte) (string, error) {
	text = stripFences(text)
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON payload in response")
	}
	return text[start : end+1], nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

// parseRelevanceResponse validates a relevance completion. Any missing or
// out-of-range field is an error; callers fall back to the heuristic path.
func parseRelevanceResponse(text string) (*relevancePayload, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var payload relevancePayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decoding relevance JSON: %w", err)
	}

	if payload.Score == nil {
		return nil, fmt.Errorf("relevance response missing score")
	}
	if *payload.Score < 0 || *payload.Score > 100 {
		return nil, fmt.Errorf("relevance score %v out of range", *payload.Score)
	}
	if strings.TrimSpace(payload.Rationale) == "" {
		return nil, fmt.Errorf("relevance response missing rationale")
	}

	payload.Evidence = cleanStrings(payload.Evidence, 0)
	payload.Gaps = cleanStrings(payload.Gaps, 0)
	payload.Recommendations = cleanStrings(payload.Recommendations, 0)
	return &payload, nil
}

// parseTopicsResponse validates a topics completion: a JSON array of
// non-empty strings, capped at ten.
func parseTopicsResponse(text string) ([]string, error) {
	raw, err := extractJSONArray(text)
	if err != nil {
		return nil, err
	}

	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil, fmt.Errorf("decoding topics JSON: %w", err)
	}

	topics = cleanStrings(topics, maxTopics)
	if len(topics) == 0 {
		return nil, fmt.Errorf("topics response contained no usable topics")
	}
	return topics, nil
}

// parseDetailsResponse validates a details completion: a JSON object with
// the six fixed category keys.
func parseDetailsResponse(text string) (*ImplementationDetails, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return nil, err
	}

	var payload detailsPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decoding details JSON: %w", err)
	}

	return &ImplementationDetails{
		Technologies:       cleanStrings(payload.Technologies, maxDetailsPerGroup),
		Processes:          cleanStrings(payload.Processes, maxDetailsPerGroup),
		Policies:           cleanStrings(payload.Policies, maxDetailsPerGroup),
		Procedures:         cleanStrings(payload.Procedures, maxDetailsPerGroup),
		Tools:              cleanStrings(payload.Tools, maxDetailsPerGroup),
		ResponsibleParties: cleanStrings(payload.ResponsibleParties, maxDetailsPerGroup),
	}, nil
}

// cleanStrings trims entries, drops empties and duplicates, and caps the
// result when max > 0.
func cleanStrings(in []string, max int) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		key := strings.ToLower(s)
		if s == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}

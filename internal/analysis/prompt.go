package analysis

import (
	"fmt"
	"strings"

	"evidos/internal/domain"
)

// maxPromptChars bounds how much document text is embedded in a prompt.
const maxPromptChars = 8000

// BuildRelevancePrompt asks the model to score document text against a control.
func BuildRelevancePrompt(text string, control domain.Control) string {
	var b strings.Builder
	b.WriteString("You are a compliance analyst. Evaluate how well the document text below satisfies the following control.\n\n")
	fmt.Fprintf(&b, "Control %s: %s\n%s\n", control.Identifier, control.Title, control.Description)
	if control.Guidance != "" {
		fmt.Fprintf(&b, "Supplemental guidance: %s\n", control.Guidance)
	}
	b.WriteString(`
Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object:
{
  "score": 0,
  "rationale": "",
  "evidence": [""],
  "gaps": [""],
  "recommendations": [""]
}

"score" is an integer 0-100 measuring how strongly the text satisfies the control. "evidence" lists verbatim excerpts supporting the score.

Document text:
`)
	b.WriteString(clampText(text))
	return b.String()
}

// BuildSummaryPrompt asks the model for a short document summary.
func BuildSummaryPrompt(text string) string {
	return "Summarize the following compliance document in 2-3 sentences. Focus on what the document covers and its security relevance. Return only the summary text.\n\nDocument text:\n" + clampText(text)
}

// BuildTopicsPrompt asks the model for key topics as a JSON array.
func BuildTopicsPrompt(text string) string {
	return `Identify the key security and compliance topics covered by the document below. Return ONLY a JSON array of at most 10 short topic phrases, e.g. ["access control","audit logging"]. No markdown, no explanation.

Document text:
` + clampText(text)
}

// BuildDetailsPrompt asks the model for categorized implementation details.
func BuildDetailsPrompt(text string) string {
	return `Extract implementation details from the document below. Return ONLY valid JSON with exactly these keys, each a JSON array of short strings (empty arrays where nothing is found):
{
  "technologies": [],
  "processes": [],
  "policies": [],
  "procedures": [],
  "tools": [],
  "responsible_parties": []
}
No markdown, no explanation.

Document text:
` + clampText(text)
}

func clampText(text string) string {
	if len(text) <= maxPromptChars {
		return text
	}
	return text[:maxPromptChars]
}

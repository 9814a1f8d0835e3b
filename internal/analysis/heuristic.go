package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"evidos/internal/domain"
	"evidos/internal/port"
)

const (
	// limitedContentSummary is returned for documents with no usable text.
	limitedContentSummary = "Document contains limited text content."

	maxTopics          = 10
	maxDetailsPerGroup = 10
	maxExcerpts        = 3
	maxExcerptLen      = 300

	// sectionRelevanceThreshold gates inclusion in RelevantSections.
	sectionRelevanceThreshold = 30
)

var (
	sentenceSplit = regexp.MustCompile(`[.!?]\s+`)
	wordPattern   = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9-]*`)
	introPattern  = regexp.MustCompile(`(?i)^(this (document|policy|plan|report|standard|procedure)|the purpose of|describes|provides an overview|outlines|defines|establishes)`)

	technologyPattern = regexp.MustCompile(`(?i)\b(aws|azure|gcp|kubernetes|docker|linux|windows server|active directory|okta|postgresql|mysql|oracle|mongodb|redis|vmware|tls|ssl|ipsec|vpn|firewall|siem|ldap|saml|oauth)\b`)
	toolPattern       = regexp.MustCompile(`(?i)\b(splunk|nessus|qualys|tenable|wireshark|nmap|terraform|ansible|jenkins|gitlab|github|jira|crowdstrike|defender|burp suite)\b`)
	processPattern    = regexp.MustCompile(`(?i)\b([a-z][a-z -]{2,40}?(?:process|workflow|lifecycle))\b`)
	policyPattern     = regexp.MustCompile(`(?i)\b([a-z][a-z -]{2,40}?policy)\b`)
	procedurePattern  = regexp.MustCompile(`(?i)\b([a-z][a-z -]{2,40}?procedures?)\b`)
	partyPattern      = regexp.MustCompile(`(?i)\b(system administrators?|security officers?|isso|ciso|system owners?|network engineers?|database administrators?|security team|help desk|it department|privacy officer)\b`)
)

// HeuristicAnalyzer performs every analytical task with deterministic
// pattern and keyword matching, without calling an external model. It is the
// fallback path for all AI-assisted steps and the only path for control
// mention detection.
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer creates a HeuristicAnalyzer.
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// ScoreValue computes the weighted relevance score of text against a control:
// +40 for a direct identifier match, +20 for a family keyword match, up to
// +30 for the fraction of title keywords present, and up to +10 for the
// fraction of description keywords present. Clamped to [0, 100].
func (h *HeuristicAnalyzer) ScoreValue(text string, control domain.Control) int {
	lower := strings.ToLower(text)
	score := 0.0

	if control.Identifier != "" && matchIdentifier(lower, control.Identifier) {
		score += 40
	}

	if matchFamily(lower, control) {
		score += 20
	}

	titleWords := keywordsOf(control.Title)
	if len(titleWords) > 0 {
		score += fractionPresent(lower, titleWords) * 30
	}

	descWords := keywordsOf(control.Description)
	if len(descWords) > 0 {
		descScore := fractionPresent(lower, descWords) * 10
		if descScore > 10 {
			descScore = 10
		}
		score += descScore
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// Score produces a full relevance result for text against a control.
func (h *HeuristicAnalyzer) Score(text string, control domain.Control) ControlRelevance {
	score := h.ScoreValue(text, control)

	result := ControlRelevance{
		ControlIdentifier: control.Identifier,
		Score:             score,
		EvidenceExcerpts:  h.excerpts(text, control),
		Gaps:              []string{},
		Recommendations:   []string{},
	}

	lower := strings.ToLower(text)
	directMatch := control.Identifier != "" && matchIdentifier(lower, control.Identifier)

	switch {
	case directMatch:
		result.Rationale = fmt.Sprintf("Document directly references %s and related terminology.", control.Identifier)
	case score > 0:
		result.Rationale = fmt.Sprintf("Document contains terminology related to %s (%s) without referencing it directly.", control.Identifier, control.Title)
	default:
		result.Rationale = fmt.Sprintf("No terminology related to %s was found in the document.", control.Identifier)
	}

	if !directMatch {
		result.Gaps = append(result.Gaps, fmt.Sprintf("No direct reference to %s found.", control.Identifier))
	}
	if score <= sectionRelevanceThreshold {
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("Provide documentation that explicitly addresses %s (%s).", control.Identifier, control.Title))
	}

	return result
}

// SectionScores scores each top-level section against a control and returns
// those above the inclusion threshold, sorted by score descending. Ties keep
// document order.
func (h *HeuristicAnalyzer) SectionScores(sections []port.Section, control domain.Control) []SectionRelevance {
	flat := flattenSections(sections)
	scored := make([]SectionRelevance, 0, len(flat))
	for _, s := range flat {
		v := h.ScoreValue(s.Title+" "+s.Content, control)
		if v > sectionRelevanceThreshold {
			scored = append(scored, SectionRelevance{Title: s.Title, Score: v})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored
}

// Summarize produces a deterministic summary: the first introductory (or
// first long) sentence plus word count and top keywords.
func (h *HeuristicAnalyzer) Summarize(content *port.ExtractedContent) string {
	text := strings.TrimSpace(content.Text)
	if text == "" || content.Metadata.WordCount == 0 {
		return limitedContentSummary
	}

	sentences := splitSentences(text)

	lead := ""
	for _, s := range sentences {
		if introPattern.MatchString(s) {
			lead = s
			break
		}
	}
	if lead == "" {
		for _, s := range sentences {
			if len(s) >= 60 {
				lead = s
				break
			}
		}
	}
	if lead == "" {
		lead = sentences[0]
	}
	lead = strings.TrimSpace(lead)
	if !strings.HasSuffix(lead, ".") {
		lead += "."
	}

	summary := fmt.Sprintf("%s The document contains %d words.", lead, content.Metadata.WordCount)
	if top := topKeywords(text, 5); len(top) > 0 {
		summary += fmt.Sprintf(" Key terms: %s.", strings.Join(top, ", "))
	}
	return summary
}

// KeyTopics returns up to 10 topics from the fixed vocabulary present in the text.
func (h *HeuristicAnalyzer) KeyTopics(text string) []string {
	lower := strings.ToLower(text)
	topics := make([]string, 0, maxTopics)
	for _, t := range topicVocabulary {
		if strings.Contains(lower, t) {
			topics = append(topics, t)
			if len(topics) == maxTopics {
				break
			}
		}
	}
	return topics
}

// MentionedControls returns the identifiers of controls the text mentions,
// by direct identifier match, family keyword, or at least half of the title
// keywords (minimum two) being present. Input order is preserved.
func (h *HeuristicAnalyzer) MentionedControls(text string, controls []domain.Control) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool, len(controls))
	mentioned := make([]string, 0, len(controls))

	for _, c := range controls {
		if c.Identifier == "" || seen[c.Identifier] {
			continue
		}
		if h.mentions(lower, c) {
			mentioned = append(mentioned, c.Identifier)
			seen[c.Identifier] = true
		}
	}
	return mentioned
}

func (h *HeuristicAnalyzer) mentions(lower string, control domain.Control) bool {
	if matchIdentifier(lower, control.Identifier) {
		return true
	}
	if matchFamily(lower, control) {
		return true
	}
	titleWords := keywordsOf(control.Title)
	if len(titleWords) < 2 {
		return false
	}
	matched := 0
	for _, w := range titleWords {
		if strings.Contains(lower, w) {
			matched++
		}
	}
	return matched >= 2 && float64(matched)/float64(len(titleWords)) >= 0.5
}

// ImplementationDetails extracts categorized implementation facts with regex
// templates, deduplicated and capped per category.
func (h *HeuristicAnalyzer) ImplementationDetails(text string) ImplementationDetails {
	return ImplementationDetails{
		Technologies:       collectMatches(technologyPattern, text),
		Processes:          collectMatches(processPattern, text),
		Policies:           collectMatches(policyPattern, text),
		Procedures:         collectMatches(procedurePattern, text),
		Tools:              collectMatches(toolPattern, text),
		ResponsibleParties: collectMatches(partyPattern, text),
	}
}

func (h *HeuristicAnalyzer) excerpts(text string, control domain.Control) []string {
	titleWords := keywordsOf(control.Title)
	out := make([]string, 0, maxExcerpts)

	for _, s := range splitSentences(text) {
		lower := strings.ToLower(s)
		hit := control.Identifier != "" && matchIdentifier(lower, control.Identifier)
		if !hit {
			matched := 0
			for _, w := range titleWords {
				if strings.Contains(lower, w) {
					matched++
				}
			}
			hit = matched >= 2
		}
		if hit {
			excerpt := strings.TrimSpace(s)
			if len(excerpt) > maxExcerptLen {
				excerpt = excerpt[:maxExcerptLen] + "..."
			}
			out = append(out, excerpt)
			if len(out) == maxExcerpts {
				break
			}
		}
	}
	return out
}

// matchIdentifier reports whether the identifier appears as a whole token
// ("AC-1" does not match inside "AC-10").
func matchIdentifier(lowerText, identifier string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(identifier)) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(lowerText)
}

func matchFamily(lowerText string, control domain.Control) bool {
	code := familyCode(control)
	for _, kw := range familyKeywords[code] {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

// familyCode returns the control's family code, derived from the identifier
// prefix when the Family field is unset.
func familyCode(control domain.Control) string {
	if control.Family != "" {
		return strings.ToUpper(control.Family)
	}
	if i := strings.IndexAny(control.Identifier, "-."); i > 0 {
		return strings.ToUpper(control.Identifier[:i])
	}
	return strings.ToUpper(control.Identifier)
}

// keywordsOf tokenizes a phrase into lowercased keywords longer than three
// characters, deduplicated in order.
func keywordsOf(s string) []string {
	words := wordPattern.FindAllString(strings.ToLower(s), -1)
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) <= 3 || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func fractionPresent(lowerText string, words []string) float64 {
	if len(words) == 0 {
		return 0
	}
	matched := 0
	for _, w := range words {
		if strings.Contains(lowerText, w) {
			matched++
		}
	}
	return float64(matched) / float64(len(words))
}

// topKeywords returns the n most frequent non-stopword keywords, most
// frequent first; ties keep first-appearance order for determinism.
func topKeywords(text string, n int) []string {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	counts := make(map[string]int)
	order := make(map[string]int)
	for i, w := range words {
		if len(w) <= 3 || stopwords[w] {
			continue
		}
		if _, ok := counts[w]; !ok {
			order[w] = i
		}
		counts[w]++
	}

	unique := make([]string, 0, len(counts))
	for w := range counts {
		unique = append(unique, w)
	}
	sort.Slice(unique, func(i, j int) bool {
		if counts[unique[i]] != counts[unique[j]] {
			return counts[unique[i]] > counts[unique[j]]
		}
		return order[unique[i]] < order[unique[j]]
	})

	if len(unique) > n {
		unique = unique[:n]
	}
	return unique
}

func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		out = append(out, strings.TrimSpace(text))
	}
	return out
}

func flattenSections(sections []port.Section) []port.Section {
	out := make([]port.Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, s)
		out = append(out, flattenSections(s.Children)...)
	}
	return out
}

// collectMatches runs a capture pattern over text, normalizes and dedupes
// the matches, and caps the result.
func collectMatches(re *regexp.Regexp, text string) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		val := m[0]
		if len(m) > 1 && m[1] != "" {
			val = m[1]
		}
		val = strings.TrimSpace(val)
		key := strings.ToLower(val)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, val)
		if len(out) == maxDetailsPerGroup {
			break
		}
	}
	return out
}

package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"

	"evidos/internal/domain"
	"evidos/internal/port"
)

const maxKeywords = 10

// Extractor turns uploaded artifacts into plain text with a section outline
// and basic metadata. Format support follows domain.AllowedContentTypes.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract dispatches on content type and builds the extracted content.
func (e *Extractor) Extract(ctx context.Context, in port.ExtractInput) (*port.ExtractedContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	format, ok := domain.AllowedContentTypes[in.ContentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, in.ContentType)
	}

	var (
		text     string
		sections []port.Section
		err      error
	)
	switch format {
	case "pdf":
		text, err = extractPDF(in.Data)
	case "docx":
		text, err = extractDocx(in.Data, in.ContentType)
	case "html":
		text, sections, err = extractHTML(in.Data)
	case "md":
		text = normalizeText(string(in.Data))
		sections = markdownOutline(text)
	case "txt":
		text = normalizeText(string(in.Data))
	}
	if err != nil {
		return nil, fmt.Errorf("extractor.Extract %s: %w", in.FileName, err)
	}

	return &port.ExtractedContent{
		Text:     text,
		Sections: sections,
		Metadata: buildMetadata(text),
	}, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("reading pdf text: %w", err)
	}
	return normalizeText(b.String()), nil
}

func extractDocx(data []byte, contentType string) (string, error) {
	res, err := docconv.Convert(bytes.NewReader(data), contentType, true)
	if err != nil {
		return "", fmt.Errorf("converting docx: %w", err)
	}
	return normalizeText(res.Body), nil
}

func buildMetadata(text string) port.ContentMetadata {
	words := strings.Fields(text)
	return port.ContentMetadata{
		WordCount: len(words),
		Language:  detectLanguage(words),
		Keywords:  keywords(words),
	}
}

// detectLanguage is a coarse check: a meaningful share of common English
// function words marks the text as English.
func detectLanguage(words []string) string {
	if len(words) == 0 {
		return "unknown"
	}
	hits := 0
	for _, w := range words {
		if englishMarkers[strings.ToLower(strings.Trim(w, ".,;:!?()\"'"))] {
			hits++
		}
	}
	if float64(hits)/float64(len(words)) >= 0.05 {
		return "en"
	}
	return "unknown"
}

func keywords(words []string) []string {
	freq := make(map[string]int)
	order := make(map[string]int)
	for i, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,;:!?()[]{}\"'"))
		if len(w) <= 3 || extractorStopwords[w] {
			continue
		}
		if _, seen := freq[w]; !seen {
			order[w] = i
		}
		freq[w]++
	}

	out := make([]string, 0, len(freq))
	for w := range freq {
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if freq[out[i]] != freq[out[j]] {
			return freq[out[i]] > freq[out[j]]
		}
		return order[out[i]] < order[out[j]]
	})
	if len(out) > maxKeywords {
		out = out[:maxKeywords]
	}
	return out
}

// normalizeText collapses runs of blank lines and trims trailing whitespace.
func normalizeText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

var englishMarkers = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "with": true,
	"this": true, "are": true, "was": true, "have": true, "has": true,
	"not": true, "all": true, "must": true, "shall": true, "will": true,
	"can": true, "may": true, "been": true, "from": true, "its": true,
}

var extractorStopwords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "before": true,
	"being": true, "between": true, "both": true, "each": true, "from": true,
	"have": true, "into": true, "more": true, "most": true, "other": true,
	"over": true, "shall": true, "should": true, "some": true, "such": true,
	"than": true, "that": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "those": true,
	"through": true, "under": true, "upon": true, "used": true, "were": true,
	"when": true, "where": true, "which": true, "while": true, "will": true,
	"with": true, "within": true, "would": true, "your": true, "must": true,
}

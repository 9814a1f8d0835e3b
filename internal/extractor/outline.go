package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"evidos/internal/port"
)

// markdownOutline builds a section tree from ATX headings. Content lines are
// attached to the nearest preceding heading; text before the first heading is
// ignored for the outline but kept in the flat text.
func markdownOutline(text string) []port.Section {
	type open struct {
		section *port.Section
		level   int
	}

	var roots []port.Section
	var stack []open
	var content strings.Builder

	flush := func() {
		if len(stack) > 0 {
			stack[len(stack)-1].section.Content = strings.TrimSpace(content.String())
		}
		content.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		level, title := headingLine(trimmed)
		if level == 0 {
			if trimmed != "" {
				content.WriteString(trimmed)
				content.WriteString("\n")
			}
			continue
		}

		flush()
		for len(stack) > 0 && stack[len(stack)-1].level >= level {
			stack = stack[:len(stack)-1]
		}

		section := port.Section{Title: title, Level: level}
		if len(stack) == 0 {
			roots = append(roots, section)
			stack = append(stack, open{section: &roots[len(roots)-1], level: level})
		} else {
			parent := stack[len(stack)-1].section
			parent.Children = append(parent.Children, section)
			stack = append(stack, open{section: &parent.Children[len(parent.Children)-1], level: level})
		}
	}
	flush()

	return roots
}

func headingLine(line string) (int, string) {
	if !strings.HasPrefix(line, "#") {
		return 0, ""
	}
	level := 0
	for level < len(line) && line[level] == '#' && level < 6 {
		level++
	}
	rest := strings.TrimSpace(line[level:])
	if rest == "" {
		return 0, ""
	}
	return level, rest
}

// extractHTML strips markup and builds one section per heading element, with
// the section content being the text between it and the next heading.
func extractHTML(data []byte) (string, []port.Section, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("parsing html: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	text := normalizeText(doc.Find("body").Text())
	if text == "" {
		text = normalizeText(doc.Text())
	}

	var headings []port.Section
	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Text())
		if title == "" {
			return
		}
		level := int(s.Nodes[0].Data[1] - '0')
		content := headingContent(s)
		headings = append(headings, port.Section{Title: title, Content: content, Level: level})
	})

	return text, nestSections(headings), nil
}

// headingContent collects sibling text until the next heading element.
func headingContent(s *goquery.Selection) string {
	var b strings.Builder
	for next := s.Next(); next.Length() > 0; next = next.Next() {
		tag := goquery.NodeName(next)
		if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
			break
		}
		if t := strings.TrimSpace(next.Text()); t != "" {
			b.WriteString(t)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// nestSections converts a flat heading list into a tree by level.
func nestSections(flat []port.Section) []port.Section {
	type open struct {
		section *port.Section
		level   int
	}

	var roots []port.Section
	var stack []open

	for _, s := range flat {
		for len(stack) > 0 && stack[len(stack)-1].level >= s.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, s)
			stack = append(stack, open{section: &roots[len(roots)-1], level: s.Level})
		} else {
			parent := stack[len(stack)-1].section
			parent.Children = append(parent.Children, s)
			stack = append(stack, open{section: &parent.Children[len(parent.Children)-1], level: s.Level})
		}
	}
	return roots
}

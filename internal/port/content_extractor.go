package port

import "context"

// Section is one node of a document's hierarchical outline. Children cover
// text regions contained within the parent's region.
type Section struct {
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Level    int       `json:"level"`
	Children []Section `json:"children,omitempty"`
}

// ContentMetadata summarizes an extracted document.
type ContentMetadata struct {
	WordCount int      `json:"word_count"`
	Language  string   `json:"language"`
	Keywords  []string `json:"keywords"`
}

// ExtractedContent is the normalized output of content extraction. It is
// immutable once produced and owned by the pipeline run that requested it.
type ExtractedContent struct {
	Text     string          `json:"text"`
	Sections []Section       `json:"sections"`
	Metadata ContentMetadata `json:"metadata"`
}

// ExtractInput carries the raw bytes for content extraction.
type ExtractInput struct {
	Data        []byte
	ContentType string
	FileName    string
}

// ContentExtractor turns raw document bytes into normalized text with a
// section outline and metadata.
type ContentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractedContent, error)
}

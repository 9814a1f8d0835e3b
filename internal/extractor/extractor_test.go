package extractor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidos/internal/domain"
	"evidos/internal/extractor"
	"evidos/internal/port"
)

func TestExtract_PlainText(t *testing.T) {
	e := extractor.New()
	text := "The access control policy requires that all accounts follow the least privilege principle.\n\n\nExtra   line.\n"

	content, err := e.Extract(context.Background(), port.ExtractInput{
		Data:        []byte(text),
		ContentType: "text/plain",
		FileName:    "policy.txt",
	})

	require.NoError(t, err)
	assert.Contains(t, content.Text, "access control policy")
	assert.Equal(t, "en", content.Metadata.Language)
	assert.Greater(t, content.Metadata.WordCount, 10)
	assert.Contains(t, content.Metadata.Keywords, "access")
	assert.Empty(t, content.Sections)
}

func TestExtract_MarkdownOutline(t *testing.T) {
	e := extractor.New()
	md := `# Security Plan

Intro text.

## Access Control

Accounts are reviewed quarterly.

### Password Rules

Minimum twelve characters.

## Audit Logging

Logs retained one year.
`

	content, err := e.Extract(context.Background(), port.ExtractInput{
		Data:        []byte(md),
		ContentType: "text/markdown",
		FileName:    "plan.md",
	})

	require.NoError(t, err)
	require.Len(t, content.Sections, 1)

	root := content.Sections[0]
	assert.Equal(t, "Security Plan", root.Title)
	assert.Equal(t, 1, root.Level)
	assert.Contains(t, root.Content, "Intro text.")
	require.Len(t, root.Children, 2)

	ac := root.Children[0]
	assert.Equal(t, "Access Control", ac.Title)
	assert.Equal(t, 2, ac.Level)
	assert.Contains(t, ac.Content, "reviewed quarterly")
	require.Len(t, ac.Children, 1)
	assert.Equal(t, "Password Rules", ac.Children[0].Title)

	assert.Equal(t, "Audit Logging", root.Children[1].Title)
}

func TestExtract_HTMLSections(t *testing.T) {
	e := extractor.New()
	html := `<html><head><style>body{color:red}</style></head><body>
<h1>System Overview</h1>
<p>The system processes payroll data.</p>
<h2>Encryption</h2>
<p>All data is encrypted at rest.</p>
<script>alert(1)</script>
</body></html>`

	content, err := e.Extract(context.Background(), port.ExtractInput{
		Data:        []byte(html),
		ContentType: "text/html",
		FileName:    "overview.html",
	})

	require.NoError(t, err)
	assert.Contains(t, content.Text, "payroll data")
	assert.NotContains(t, content.Text, "alert(1)")
	assert.NotContains(t, content.Text, "color:red")

	require.Len(t, content.Sections, 1)
	root := content.Sections[0]
	assert.Equal(t, "System Overview", root.Title)
	assert.Contains(t, root.Content, "payroll data")
	require.Len(t, root.Children, 1)
	assert.Equal(t, "Encryption", root.Children[0].Title)
	assert.Contains(t, root.Children[0].Content, "encrypted at rest")
}

func TestExtract_UnsupportedType(t *testing.T) {
	e := extractor.New()

	_, err := e.Extract(context.Background(), port.ExtractInput{
		Data:        []byte{0x89, 0x50},
		ContentType: "image/png",
		FileName:    "diagram.png",
	})

	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
}

func TestExtract_EmptyText(t *testing.T) {
	e := extractor.New()

	content, err := e.Extract(context.Background(), port.ExtractInput{
		Data:        []byte("   \n  \n"),
		ContentType: "text/plain",
		FileName:    "empty.txt",
	})

	require.NoError(t, err)
	assert.Equal(t, 0, content.Metadata.WordCount)
	assert.Equal(t, "unknown", content.Metadata.Language)
}

// Package ingestion turns uploaded documents and fetched pages into clean text.
package ingestion

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jonathan/resume-verifier/internal/fetch"
)

// Format is the detected document format
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatText     Format = "txt"
	FormatMarkdown Format = "md"
	FormatHTML     Format = "html"
)

var (
	// ErrUnsupportedFormat is returned for file types that cannot be read as text
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrEmptyDocument is returned when a document has no extractable text
	ErrEmptyDocument = errors.New("document contains no text")
)

var (
	innerSpace = regexp.MustCompile(`[ \t\f\v]+`)
	extraBlank = regexp.MustCompile(`\n\n\n+`)
)

// Document is cleaned text with its metadata
type Document struct {
	Text     string
	Metadata *Metadata
}

// DetectFormat maps a file extension to a Format
func DetectFormat(path string) (Format, error) {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "pdf":
		return FormatPDF, nil
	case "txt", "text", "":
		return FormatText, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("%w: .%s", ErrUnsupportedFormat, ext)
	}
}

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	// NUL and form feeds show up in PDF text layers
	content = strings.ReplaceAll(content, "\x00", "")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = extraBlank.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t\f\v")
	trimmed := strings.TrimLeft(line, " \t\f\v")
	if trimmed == "" {
		return ""
	}

	// markdown headings lose their indentation
	if strings.HasPrefix(trimmed, "#") {
		return innerSpace.ReplaceAllString(trimmed, " ")
	}

	indent := len(line) - len(trimmed)
	content := trimmed
	if !isBulletLine(trimmed) {
		content = innerSpace.ReplaceAllString(trimmed, " ")
	}
	if indent > 0 {
		return strings.Repeat(" ", indent) + content
	}
	return content
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// WordCount counts whitespace separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// IngestFromFile reads a PDF, text or markdown file and returns its cleaned text
func IngestFromFile(path string) (*Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %w", err)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return IngestBytes(content, path, format)
}

// IngestBytes extracts and cleans text from an in-memory document
func IngestBytes(content []byte, source string, format Format) (*Document, error) {
	var (
		raw   string
		pages int
		err   error
	)
	switch format {
	case FormatPDF:
		raw, pages, err = extractPDF(content)
		if err != nil {
			return nil, err
		}
	case FormatText, FormatMarkdown:
		raw = string(content)
	case FormatHTML:
		raw, err = fetch.HTMLToMarkdown(string(content), nil, fetch.DefaultTextSelectors())
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", source, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	text := CleanText(raw)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", source, ErrEmptyDocument)
	}

	meta := NewMetadata(text, source, format)
	meta.Pages = pages
	return &Document{Text: text, Metadata: meta}, nil
}

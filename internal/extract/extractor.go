// Package extract provides text extraction from uploaded documents.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned for binary formats the extractor cannot read.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// Format identifies how a document's bytes are decoded.
type Format string

const (
	FormatPlain Format = "plain"
	FormatPDF   Format = "pdf"
	FormatDOCX  Format = "docx"
	FormatXLSX  Format = "xlsx"
)

// Extractor extracts plain text from document files.
type Extractor struct{}

// NewExtractor returns a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract reads the file at path and returns its text content.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return e.ExtractBytes(content, filepath.Base(path))
}

// ExtractBytes extracts text from an uploaded file's content. The format is taken
// from the filename's extension, falling back to sniffing the content.
func (e *Extractor) ExtractBytes(content []byte, filename string) (string, error) {
	switch DetectFormat(filename, content) {
	case FormatPDF:
		return extractPDF(content)
	case FormatDOCX:
		return extractDOCX(content)
	case FormatXLSX:
		return extractExcel(content)
	default:
		return extractPlain(content)
	}
}

// DetectFormat picks a Format for filename and content.
func DetectFormat(filename string, content []byte) Format {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	case ".xlsx":
		return FormatXLSX
	case ".txt", ".md", ".rst", ".csv", ".json":
		return FormatPlain
	}
	if bytes.HasPrefix(content, []byte("%PDF-")) {
		return FormatPDF
	}
	return FormatPlain
}

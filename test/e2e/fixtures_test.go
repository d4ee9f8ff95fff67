package e2e

import (
	"strings"
	"testing"

	"github.com/hyperjump/coachrag/internal/extract"
)

func TestWriteMinimalFile_AllExtensionsExtractable(t *testing.T) {
	e := extract.NewExtractor()
	sample := "Coaching tip\n\nAsk open questions COACH99"
	for _, ext := range SupportedFileExtensions {
		ext := ext
		t.Run(ext, func(t *testing.T) {
			content, err := WriteMinimalFile(ext, sample)
			if err != nil {
				t.Fatalf("WriteMinimalFile: %v", err)
			}
			if len(content) == 0 {
				t.Fatal("empty content")
			}
			got, err := e.ExtractBytes(content, "tip"+ext)
			if err != nil {
				t.Fatalf("ExtractBytes: %v", err)
			}
			if !strings.Contains(got, "Ask open questions COACH99") {
				t.Errorf("extracted text %q does not contain sample", got)
			}
		})
	}
}

func TestBuildCorpus(t *testing.T) {
	c := BuildCorpus()
	if len(c.Documents) == 0 || len(c.TestCases) != len(c.Documents) {
		t.Fatalf("docs=%d cases=%d", len(c.Documents), len(c.TestCases))
	}
	codes := make(map[string]bool)
	for _, d := range c.Documents {
		if d.Priority < 1 || d.Priority > 5 {
			t.Errorf("%s: priority %d out of range", d.Name, d.Priority)
		}
		if codes[d.Code] {
			t.Errorf("duplicate code %s", d.Code)
		}
		codes[d.Code] = true
	}
	for _, tc := range c.TestCases {
		if _, ok := c.Document(tc.ExpectedDoc); !ok {
			t.Errorf("case %q expects unknown doc %q", tc.Description, tc.ExpectedDoc)
		}
		for code := range codes {
			if strings.Contains(tc.Query, code) {
				t.Errorf("query %q leaks code %s", tc.Query, code)
			}
		}
	}
}

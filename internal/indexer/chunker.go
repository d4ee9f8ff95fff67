// Package indexer provides document chunking and the upload/delete pipeline.
package indexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/coachrag/internal/models"
)

// Chunking defaults, in characters.
const (
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 100
	DefaultSingleChunkLimit = 256
)

// Mode selects how a document body is split.
type Mode int

const (
	// ModeMulti splits the text into overlapping windows.
	ModeMulti Mode = iota
	// ModeSingle stores the whole text as one chunk.
	ModeSingle
)

// ModeFor maps the upload flag onto a Mode.
func ModeFor(singleChunk bool) Mode {
	if singleChunk {
		return ModeSingle
	}
	return ModeMulti
}

func (m Mode) String() string {
	if m == ModeSingle {
		return "single"
	}
	return "multi"
}

// Chunker splits text into overlapping character windows that end on word boundaries.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
	singleLimit  int
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithSingleChunkLimit sets the exclusive character limit for ModeSingle.
func WithSingleChunkLimit(n int) ChunkerOption {
	return func(c *Chunker) {
		if n > 0 {
			c.singleLimit = n
		}
	}
}

// NewChunker creates a chunker with the given size and overlap (in characters).
// An overlap not smaller than the size is reduced to a quarter of the size.
func NewChunker(chunkSize, chunkOverlap int, opts ...ChunkerOption) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 4
	}
	c := &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		singleLimit:  DefaultSingleChunkLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits text according to mode. ModeSingle returns the text unchanged and
// rejects text of SingleChunkLimit characters or more. ModeMulti normalises
// whitespace first; every returned chunk is a non-empty substring of the
// normalised text.
func (c *Chunker) Chunk(text string, mode Mode) ([]string, error) {
	if mode == ModeSingle {
		if strings.TrimSpace(text) == "" {
			return nil, errEmptyText()
		}
		if utf8.RuneCountInString(text) >= c.singleLimit {
			return nil, models.NewValidationError(
				"File is too large to be processed in a single chunk, please set singleChunk to False")
		}
		return []string{text}, nil
	}

	norm := Preprocess(text)
	if norm == "" {
		return nil, errEmptyText()
	}
	runes := []rune(norm)
	spans := c.spans(runes)
	chunks := make([]string, len(spans))
	for i, s := range spans {
		chunks[i] = string(runes[s.start:s.end])
	}
	return chunks, nil
}

func errEmptyText() error {
	return models.NewValidationError("document contains no extractable text")
}

// span is a half-open rune range of the normalised text.
type span struct {
	start, end int
}

// spans assumes r has no leading, trailing or repeated spaces (see Preprocess).
// A window that stops short of the end is cut at the last space in its second
// half when there is one. The next window starts chunkOverlap runes earlier,
// moved forward to the start of a word.
func (c *Chunker) spans(r []rune) []span {
	n := len(r)
	var out []span
	start := 0
	for {
		end := start + c.chunkSize
		if end >= n {
			return append(out, span{start, n})
		}
		for i := end; i > start+c.chunkSize/2; i-- {
			if r[i] == ' ' {
				end = i
				break
			}
		}
		out = append(out, span{start, end})

		next := end - c.chunkOverlap
		if next <= start {
			next = start + 1
		}
		for next < end && r[next-1] != ' ' {
			next++
		}
		if r[next] == ' ' {
			next++
		}
		start = next
	}
}

// String describes the chunker settings for logs.
func (c *Chunker) String() string {
	return fmt.Sprintf("chunker(size=%d overlap=%d single<%d)", c.chunkSize, c.chunkOverlap, c.singleLimit)
}

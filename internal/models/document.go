// Package models defines core data structures for documents, chunks, queries, and API payloads.
package models

import (
	"fmt"
	"time"
)

// Priority bounds accepted on upload. Lower values rank first.
const (
	MinPriority = 1
	MaxPriority = 5
)

// Document describes an uploaded document. It is not persisted on its own;
// the store only holds its chunks, which share the document ID.
type Document struct {
	ID         string    `json:"doc_id"`
	Filename   string    `json:"filename,omitempty"`
	Priority   int       `json:"priority"`
	ChunkCount int       `json:"chunk_count"`
	Language   string    `json:"detected_language"`
	CreatedAt  time.Time `json:"created_at"`
}

// DocumentChunk is one stored record: a piece of a document's text with the
// metadata needed to rank it without consulting the parent document.
type DocumentChunk struct {
	ID         string    `json:"id" db:"id"`
	DocumentID string    `json:"doc_id" db:"doc_id"`
	ChunkID    int       `json:"chunk_id" db:"chunk_id"`
	Content    string    `json:"content" db:"content"`
	Priority   int       `json:"priority" db:"priority"`
	Embedding  []float32 `json:"-" db:"-"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ChunkRecordID returns the store record ID for chunk i of document docID.
func ChunkRecordID(docID string, i int) string {
	return fmt.Sprintf("Document_%s_%d", docID, i)
}

// NewChunks builds one record per content string, all carrying docID and priority.
// Chunk IDs are the 0-based positions in contents.
func NewChunks(docID string, contents []string, priority int) []*DocumentChunk {
	now := time.Now()
	chunks := make([]*DocumentChunk, len(contents))
	for i, c := range contents {
		chunks[i] = &DocumentChunk{
			ID:         ChunkRecordID(docID, i),
			DocumentID: docID,
			ChunkID:    i,
			Content:    c,
			Priority:   priority,
			CreatedAt:  now,
		}
	}
	return chunks
}

// UploadInput is a raw upload as received from the HTTP layer or CLI.
type UploadInput struct {
	Filename    string
	Content     []byte
	SingleChunk bool
	Priority    int
}

// Validate checks the priority range.
func (in *UploadInput) Validate() error {
	if in.Priority < MinPriority || in.Priority > MaxPriority {
		return NewValidationError(fmt.Sprintf("Priority should be between %d and %d", MinPriority, MaxPriority))
	}
	return nil
}

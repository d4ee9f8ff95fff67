package models

import "strings"

// QueryRequest is the body of POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// Validate ensures the query is not blank.
func (q *QueryRequest) Validate() error {
	if strings.TrimSpace(q.Query) == "" {
		return NewValidationError("query cannot be empty")
	}
	return nil
}

// RootResponse is returned by GET /.
type RootResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ChunkSummary reports how many chunks an upload produced.
type ChunkSummary struct {
	Count int `json:"count"`
}

// UploadResponse is returned by POST /upload.
type UploadResponse struct {
	Message          string       `json:"message"`
	DocID            string       `json:"doc_id"`
	Chunks           ChunkSummary `json:"chunks"`
	DetectedLanguage string       `json:"detected_language"`
}

// QueryResponse is returned by POST /query.
type QueryResponse struct {
	Message          string `json:"message"`
	Output           string `json:"output"`
	DetectedLanguage string `json:"detected_language"`
}

// DeleteData carries the deleted document ID.
type DeleteData struct {
	DocID string `json:"doc_id"`
}

// DeleteResponse is returned by DELETE /delete/{doc_id}.
type DeleteResponse struct {
	Message string     `json:"message"`
	Success bool       `json:"success"`
	Data    DeleteData `json:"data"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Chunks      int    `json:"chunks"`
	VectorStore string `json:"vector_store"`
	QuerySize   int    `json:"query_size"`
	Embedding   string `json:"embedding"`
	LLMProvider string `json:"llm_provider"`
	LLMModel    string `json:"llm_model"`
	DiskBytes   int64  `json:"disk_bytes"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

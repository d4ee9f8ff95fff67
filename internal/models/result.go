package models

// Candidate is a chunk returned by a vector store query, before ranking.
// Lower Distance means more similar.
type Candidate struct {
	ID         string  `json:"id"`
	DocumentID string  `json:"doc_id"`
	ChunkID    int     `json:"chunk_id"`
	Content    string  `json:"content"`
	Priority   int     `json:"priority"`
	Distance   float64 `json:"distance"`
}

// QueryResult is the outcome of the retrieval half of a query, plus the
// composed prompt. The answer itself is carried separately by the LLM result.
type QueryResult struct {
	Query            string       `json:"query"`
	DetectedLanguage string       `json:"detected_language"`
	References       []*Candidate `json:"references"`
	Prompt           string       `json:"-"`
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/coachrag/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case OutputText, OutputJSON:
		return OutputFormat(s), nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteUpload writes an upload response.
func WriteUpload(w io.Writer, resp *models.UploadResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintln(w, resp.Message)
	fmt.Fprintf(w, "doc_id:    %s\n", resp.DocID)
	fmt.Fprintf(w, "chunks:    %d\n", resp.Chunks.Count)
	fmt.Fprintf(w, "language:  %s\n", resp.DetectedLanguage)
	return nil
}

// WriteQuery writes a query response. Text output is the answer alone.
func WriteQuery(w io.Writer, resp *models.QueryResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintln(w, resp.Output)
	return nil
}

// WriteDelete writes a delete response.
func WriteDelete(w io.Writer, resp *models.DeleteResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "Document deleted: %s\n", resp.Data.DocID)
	return nil
}

// WriteStatus writes a status response.
func WriteStatus(w io.Writer, resp *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "chunks:        %d   # stored chunks\n", resp.Chunks)
	fmt.Fprintf(w, "vector_store:  %s\n", resp.VectorStore)
	fmt.Fprintf(w, "query_size:    %d   # chunks retrieved per query\n", resp.QuerySize)
	fmt.Fprintf(w, "disk:          %s\n", humanBytes(resp.DiskBytes))
	fmt.Fprintf(w, "embedding:     %s\n", resp.Embedding)
	fmt.Fprintf(w, "llm:           %s (%s)\n", resp.LLMProvider, resp.LLMModel)
	return nil
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

package search

import (
	"strings"

	"github.com/hyperjump/coachrag/internal/models"
)

// ProcessQuery validates a raw query and returns it with surrounding whitespace removed.
func ProcessQuery(query string) (string, error) {
	req := models.QueryRequest{Query: query}
	if err := req.Validate(); err != nil {
		return "", err
	}
	return strings.TrimSpace(query), nil
}

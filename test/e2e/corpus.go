// Package e2e provides end-to-end tests that drive the HTTP API with a coaching corpus.
package e2e

import "fmt"

// CoachDocument is an uploadable document in the E2E corpus.
type CoachDocument struct {
	Name     string
	Priority int
	Content  string
	// Code appears only in this document, never in a query, so a prompt that
	// contains it proves the document was retrieved.
	Code string
}

// QueryTestCase is a question whose prompt must reference ExpectedDoc.
type QueryTestCase struct {
	Query       string
	ExpectedDoc string
	Description string
}

// Corpus holds documents and query test cases for E2E tests.
type Corpus struct {
	Documents []CoachDocument
	TestCases []QueryTestCase
}

// BuildCorpus returns one document per coaching topic and one query per document.
// Each document carries a signature phrase that its query repeats.
func BuildCorpus() *Corpus {
	topics := []struct {
		name   string
		phrase string
		body   string
	}{
		{"delegation", "delegate ownership of outcomes", "Managers who delegate ownership of outcomes free time for strategy and grow their reports."},
		{"feedback", "give specific behavioural feedback", "Give specific behavioural feedback soon after the event and describe its impact."},
		{"one-on-ones", "weekly one-on-one meetings", "Weekly one-on-one meetings belong to the report; let them set the agenda."},
		{"retrospectives", "blameless sprint retrospectives", "Blameless sprint retrospectives focus on systems and processes rather than people."},
		{"burnout", "recognise early burnout signals", "Recognise early burnout signals such as cynicism, fatigue and missed commitments."},
		{"hiring", "structured hiring interviews", "Structured hiring interviews use the same questions and a rubric for every candidate."},
		{"conflict", "mediate team conflict calmly", "Mediate team conflict calmly by separating interests from positions."},
		{"goals", "set measurable quarterly goals", "Set measurable quarterly goals and review progress every month."},
		{"onboarding", "onboarding buddy programme", "An onboarding buddy programme pairs each new hire with a peer for the first ninety days."},
		{"promotion", "prepare promotion cases early", "Prepare promotion cases early by collecting evidence of impact throughout the year."},
		{"meetings", "cancel recurring status meetings", "Cancel recurring status meetings that could be replaced by a written update."},
		{"learning", "schedule deliberate learning time", "Schedule deliberate learning time each week and share what you learned with the team."},
	}

	c := &Corpus{}
	for i, tp := range topics {
		code := fmt.Sprintf("COACH%02d", i+1)
		c.Documents = append(c.Documents, CoachDocument{
			Name:     tp.name,
			Priority: i%5 + 1,
			Content:  fmt.Sprintf("%s\n\n%s Reference %s.", tp.name, tp.body, code),
			Code:     code,
		})
		c.TestCases = append(c.TestCases, QueryTestCase{
			Query:       "How do I " + tp.phrase + "?",
			ExpectedDoc: tp.name,
			Description: tp.name,
		})
	}
	return c
}

// Document returns the corpus document with the given name.
func (c *Corpus) Document(name string) (CoachDocument, bool) {
	for _, d := range c.Documents {
		if d.Name == name {
			return d, true
		}
	}
	return CoachDocument{}, false
}

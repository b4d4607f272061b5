package compliance

import "time"

// AnalysisID identifier type
type AnalysisID string

// StandardResult is the per-standard slice of a compliance assessment.
type StandardResult struct {
	Name     string   `json:"name"`
	Score    int      `json:"score"`
	Status   string   `json:"status"` // compliant | warning | non-compliant
	Findings []string `json:"findings"`
}

// Assessment is the model-produced verdict over a set of test cases.
type Assessment struct {
	OverallScore       int              `json:"overallScore"`
	StandardsBreakdown []StandardResult `json:"standardsBreakdown"`
	Recommendations    []string         `json:"recommendations"`
}

// Analysis is a persisted compliance assessment. Records are immutable:
// a new analysis request always creates a new record.
type Analysis struct {
	ID          AnalysisID `json:"analysisId"`
	TestCaseIDs []string   `json:"testCaseIds"`
	Standards   []string   `json:"standards"`
	Assessment
	AnalyzedAt time.Time `json:"analyzedAt"`
}

// Snippet is one retrieval-context fragment returned by the vector
// search service.
type Snippet struct {
	Content  string  `json:"content"`
	Standard string  `json:"standard"`
	Source   string  `json:"source"`
	Chapter  string  `json:"chapter,omitempty"`
	Distance float64 `json:"distance"`
}

package testcases

import (
	"time"
)

// ID tipe untuk TestCase
type TestCaseID string

// Priority enum
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Type enum
type Type string

const (
	TypeFunctional  Type = "functional"
	TypeIntegration Type = "integration"
	TypeRegression  Type = "regression"
	TypeCompliance  Type = "compliance"
)

// Status enum
type Status string

const (
	StatusDraft    Status = "draft"
	StatusReady    Status = "ready"
	StatusExecuted Status = "executed"
	StatusPassed   Status = "passed"
	StatusFailed   Status = "failed"
)

// Traceability links a test case back to the requirement it verifies.
// A test case references at most one requirement; a requirement may be
// covered by many test cases.
type Traceability struct {
	RequirementID          string `json:"requirementId"`
	RequirementDescription string `json:"requirementDescription,omitempty"`
	RiskLevel              string `json:"riskLevel,omitempty"` // High | Medium | Low
}

// Aggregate Root: TestCase
type TestCase struct {
	ID              TestCaseID    `json:"id"`
	ProjectID       string        `json:"projectId"`
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Preconditions   string        `json:"preconditions"`
	Steps           []string      `json:"steps"`
	ExpectedResults string        `json:"expectedResults"`
	Priority        Priority      `json:"priority"`
	Type            Type          `json:"type"`
	Status          Status        `json:"status"`
	Compliance      []string      `json:"compliance"`
	Traceability    *Traceability `json:"traceability,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
	CreatedBy       string        `json:"createdBy"`
	ExecutedAt      *time.Time    `json:"executedAt,omitempty"`
	ExecutedBy      string        `json:"executedBy,omitempty"`
}

// Normalize fills defaults so a serialized record never carries nulls
// where the API promises sequences.
func (tc *TestCase) Normalize() {
	if tc.Compliance == nil {
		tc.Compliance = []string{}
	}
	if tc.Steps == nil {
		tc.Steps = []string{}
	}
	if tc.Priority == "" {
		tc.Priority = PriorityMedium
	}
	if tc.Type == "" {
		tc.Type = TypeFunctional
	}
}

// Draft is a loosely typed test case as decoded from generation-model
// output, before an identity or project is assigned.
type Draft struct {
	Title           string        `json:"title"`
	Description     string        `json:"description"`
	Preconditions   string        `json:"preconditions"`
	Steps           []string      `json:"steps"`
	ExpectedResults string        `json:"expectedResults"`
	Priority        string        `json:"priority"`
	Type            string        `json:"type"`
	Compliance      []string      `json:"compliance"`
	Traceability    *Traceability `json:"traceability,omitempty"`
}

package requirements

import "time"

// RequirementID identifier type
type RequirementID string

// Requirement is a verifiable statement about the system under test.
type Requirement struct {
	ID                  RequirementID `json:"id"`
	ProjectID           string        `json:"projectId"`
	Title               string        `json:"title"`
	Description         string        `json:"description"`
	Type                string        `json:"type"`     // functional | non-functional | compliance
	Priority            string        `json:"priority"` // critical | high | medium | low
	Status              string        `json:"status"`   // draft | approved | implemented | tested
	ComplianceStandards []string      `json:"complianceStandards,omitempty"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
	CreatedBy           string        `json:"createdBy"`
}

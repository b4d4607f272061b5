package trackers

import (
	"context"

	"github.com/clinicase/clinicase/internal/domain/testcases"
)

// Route carries the destination-specific addressing for an export. Each
// tracker validates and reads only its own fields.
type Route struct {
	ProjectKey    string `json:"projectKey,omitempty"`    // Jira
	Project       string `json:"project,omitempty"`       // Azure DevOps
	AreaPath      string `json:"areaPath,omitempty"`      // Azure DevOps
	IterationPath string `json:"iterationPath,omitempty"` // Azure DevOps
	ProjectID     string `json:"projectId,omitempty"`     // Polarion
	SpaceID       string `json:"spaceId,omitempty"`       // Polarion
}

// WorkItem is the destination's record created for one test case.
type WorkItem struct {
	TestCaseID string `json:"testCaseId"`
	RemoteID   string `json:"remoteId"`
	RemoteKey  string `json:"remoteKey,omitempty"`
	URL        string `json:"url,omitempty"`
}

// ExportResult reports one test case's export attempt. Attempts are
// independent; one failure never aborts the batch.
type ExportResult struct {
	TestCaseID string    `json:"testCaseId"`
	Success    bool      `json:"success"`
	WorkItem   *WorkItem `json:"workItem,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// Tracker port: one implementation per destination. Implementations own
// only the payload mapping and the creation call; the fetch/collect loop
// is shared.
type Tracker interface {
	Name() string
	ValidateRoute(route Route) error
	CreateWorkItem(ctx context.Context, tc *testcases.TestCase, route Route) (*WorkItem, error)
}

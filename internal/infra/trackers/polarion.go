package trackers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/clinicase/clinicase/internal/domain/testcases"
	domain "github.com/clinicase/clinicase/internal/domain/trackers"
)

// Polarion creates one testcase work item per exported test case.
type Polarion struct {
	baseURL  string
	apiToken string
	http     *http.Client
}

func NewPolarion(baseURL, apiToken string) *Polarion {
	return &Polarion{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		http:     newHTTPClient(),
	}
}

func (p *Polarion) Name() string { return "polarion" }

func (p *Polarion) ValidateRoute(route domain.Route) error {
	if route.ProjectID == "" || route.SpaceID == "" {
		return fmt.Errorf("projectId and spaceId are required")
	}
	return nil
}

type polarionStep struct {
	StepNumber      int    `json:"stepNumber"`
	StepDescription string `json:"stepDescription"`
	ExpectedResult  string `json:"expectedResult"`
}

func (p *Polarion) CreateWorkItem(ctx context.Context, tc *testcases.TestCase, route domain.Route) (*domain.WorkItem, error) {
	steps := make([]polarionStep, 0, len(tc.Steps))
	for i, step := range tc.Steps {
		s := polarionStep{StepNumber: i + 1, StepDescription: step}
		if i == len(tc.Steps)-1 {
			s.ExpectedResult = tc.ExpectedResults
		}
		steps = append(steps, s)
	}

	payload := map[string]any{
		"type":        "testcase",
		"title":       tc.Title,
		"description": tc.Description,
		"testSteps":   map[string]any{"steps": steps},
		"customFields": map[string]string{
			"priority":   PolarionPriority(tc.Priority),
			"compliance": strings.Join(tc.Compliance, ", "),
		},
	}

	endpoint := fmt.Sprintf("%s/rest/v1/projects/%s/spaces/%s/workitems",
		p.baseURL, url.PathEscape(route.ProjectID), url.PathEscape(route.SpaceID))

	var out struct {
		ID string `json:"id"`
	}
	err := postJSON(ctx, p.http, endpoint,
		map[string]string{"Authorization": "Bearer " + p.apiToken}, payload, &out)
	if err != nil {
		return nil, err
	}

	return &domain.WorkItem{TestCaseID: string(tc.ID), RemoteID: out.ID}, nil
}

// PolarionPriority maps internal priority into Polarion's label scale.
// Unknown values fall back to medium.
func PolarionPriority(p testcases.Priority) string {
	switch testcases.Priority(strings.ToLower(string(p))) {
	case testcases.PriorityCritical:
		return "highest"
	case testcases.PriorityHigh:
		return "high"
	case testcases.PriorityMedium:
		return "medium"
	case testcases.PriorityLow:
		return "low"
	default:
		return "medium"
	}
}

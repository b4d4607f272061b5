package trackers

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/clinicase/clinicase/internal/domain/testcases"
	domain "github.com/clinicase/clinicase/internal/domain/trackers"
)

// Jira creates one Test issue per exported test case via the v3 REST API.
type Jira struct {
	baseURL  string
	email    string
	apiToken string
	http     *http.Client
}

func NewJira(baseURL, email, apiToken string) *Jira {
	return &Jira{
		baseURL:  strings.TrimRight(baseURL, "/"),
		email:    email,
		apiToken: apiToken,
		http:     newHTTPClient(),
	}
}

func (j *Jira) Name() string { return "jira" }

func (j *Jira) ValidateRoute(route domain.Route) error {
	if route.ProjectKey == "" {
		return fmt.Errorf("projectKey is required")
	}
	return nil
}

func (j *Jira) CreateWorkItem(ctx context.Context, tc *testcases.TestCase, route domain.Route) (*domain.WorkItem, error) {
	payload := map[string]any{
		"fields": map[string]any{
			"project":     map[string]string{"key": route.ProjectKey},
			"summary":     tc.Title,
			"description": jiraDescription(tc),
			"issuetype":   map[string]string{"name": "Test"},
			"priority":    map[string]string{"name": JiraPriority(tc.Priority)},
		},
	}

	basic := base64.StdEncoding.EncodeToString([]byte(j.email + ":" + j.apiToken))
	var out struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Self string `json:"self"`
	}
	err := postJSON(ctx, j.http, j.baseURL+"/rest/api/3/issue",
		map[string]string{"Authorization": "Basic " + basic}, payload, &out)
	if err != nil {
		return nil, err
	}

	return &domain.WorkItem{
		TestCaseID: string(tc.ID),
		RemoteID:   out.ID,
		RemoteKey:  out.Key,
		URL:        out.Self,
	}, nil
}

// JiraPriority maps internal priority into Jira's named scale. Unknown
// values fall back to Medium.
func JiraPriority(p testcases.Priority) string {
	switch testcases.Priority(strings.ToLower(string(p))) {
	case testcases.PriorityCritical:
		return "Highest"
	case testcases.PriorityHigh:
		return "High"
	case testcases.PriorityMedium:
		return "Medium"
	case testcases.PriorityLow:
		return "Low"
	default:
		return "Medium"
	}
}

func jiraDescription(tc *testcases.TestCase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*Description:* %s\n\n", tc.Description)
	fmt.Fprintf(&b, "*Preconditions:* %s\n\n", tc.Preconditions)
	b.WriteString("*Test Steps:*\n")
	for i, step := range tc.Steps {
		fmt.Fprintf(&b, "%d. %s\n", i+1, step)
	}
	fmt.Fprintf(&b, "\n*Expected Results:* %s\n\n", tc.ExpectedResults)
	if len(tc.Compliance) > 0 {
		fmt.Fprintf(&b, "*Compliance Standards:* %s\n", strings.Join(tc.Compliance, ", "))
	}
	return b.String()
}

package trackers

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/clinicase/clinicase/internal/domain/testcases"
	domain "github.com/clinicase/clinicase/internal/domain/trackers"
)

// AzureDevOps creates one Test Case work item per exported test case via
// the json-patch work-item API.
type AzureDevOps struct {
	organization string
	pat          string
	baseURL      string // overridable in tests
	http         *http.Client
}

func NewAzureDevOps(organization, personalAccessToken string) *AzureDevOps {
	return &AzureDevOps{
		organization: organization,
		pat:          personalAccessToken,
		baseURL:      "https://dev.azure.com",
		http:         newHTTPClient(),
	}
}

func (a *AzureDevOps) Name() string { return "azure-devops" }

func (a *AzureDevOps) ValidateRoute(route domain.Route) error {
	if route.Project == "" {
		return fmt.Errorf("project is required")
	}
	return nil
}

type patchOp struct {
	Op    string `json:"op"`
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (a *AzureDevOps) CreateWorkItem(ctx context.Context, tc *testcases.TestCase, route domain.Route) (*domain.WorkItem, error) {
	ops := []patchOp{
		{Op: "add", Path: "/fields/System.Title", Value: tc.Title},
		{Op: "add", Path: "/fields/System.Description", Value: tc.Description},
		{Op: "add", Path: "/fields/Microsoft.VSTS.TCM.Steps", Value: azureSteps(tc)},
		{Op: "add", Path: "/fields/Microsoft.VSTS.Common.Priority", Value: AzurePriority(tc.Priority)},
	}
	if route.AreaPath != "" {
		ops = append(ops, patchOp{Op: "add", Path: "/fields/System.AreaPath", Value: route.Project + `\` + route.AreaPath})
	}
	if route.IterationPath != "" {
		ops = append(ops, patchOp{Op: "add", Path: "/fields/System.IterationPath", Value: route.Project + `\` + route.IterationPath})
	}

	endpoint := fmt.Sprintf("%s/%s/%s/_apis/wit/workitems/$Test%%20Case?api-version=7.0",
		a.baseURL, url.PathEscape(a.organization), url.PathEscape(route.Project))

	// PAT auth uses an empty user name.
	basic := base64.StdEncoding.EncodeToString([]byte(":" + a.pat))
	var out struct {
		ID    int `json:"id"`
		Links struct {
			HTML struct {
				Href string `json:"href"`
			} `json:"html"`
		} `json:"_links"`
	}
	err := postJSON(ctx, a.http, endpoint, map[string]string{
		"Authorization": "Basic " + basic,
		"Content-Type":  "application/json-patch+json",
	}, ops, &out)
	if err != nil {
		return nil, err
	}

	return &domain.WorkItem{
		TestCaseID: string(tc.ID),
		RemoteID:   strconv.Itoa(out.ID),
		URL:        out.Links.HTML.Href,
	}, nil
}

// AzurePriority maps internal priority into Azure DevOps's numeric
// scale (1 highest .. 4 lowest). Unknown values fall back to 3.
func AzurePriority(p testcases.Priority) int {
	switch testcases.Priority(strings.ToLower(string(p))) {
	case testcases.PriorityCritical:
		return 1
	case testcases.PriorityHigh:
		return 2
	case testcases.PriorityMedium:
		return 3
	case testcases.PriorityLow:
		return 4
	default:
		return 3
	}
}

// azureSteps renders the TCM steps XML; the expected result rides on the
// final step, matching how the Azure test runner displays it.
func azureSteps(tc *testcases.TestCase) string {
	var b strings.Builder
	b.WriteString("<steps>")
	for i, step := range tc.Steps {
		fmt.Fprintf(&b, `<step id="%d"><parameterizedString isformatted="true">%s</parameterizedString>`,
			i+1, html.EscapeString(step))
		if i == len(tc.Steps)-1 {
			fmt.Fprintf(&b, `<parameterizedString isformatted="true">%s</parameterizedString>`,
				html.EscapeString(tc.ExpectedResults))
		} else {
			b.WriteString(`<parameterizedString isformatted="true"></parameterizedString>`)
		}
		b.WriteString("<description/></step>")
	}
	b.WriteString("</steps>")
	return b.String()
}

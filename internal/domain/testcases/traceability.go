package testcases

import "math"

// TraceabilityItem is one requirement row of the coverage matrix. Items
// are derived from their source test cases on every query and never
// stored, so they cannot go stale.
type TraceabilityItem struct {
	RequirementID          string   `json:"requirementId"`
	RequirementDescription string   `json:"requirementDescription"`
	TestCaseIDs            []string `json:"testCaseIds"`
	RiskLevel              string   `json:"riskLevel"`
	ComplianceStandards    []string `json:"complianceStandards"`
	Coverage               int      `json:"coverage"`
}

// TraceabilityMatrix groups test cases by the requirement they verify.
type TraceabilityMatrix struct {
	Matrix          []TraceabilityItem `json:"matrix"`
	OverallCoverage int                `json:"overallCoverage"`
}

// BuildTraceabilityMatrix groups test cases by requirement id; cases
// without a traceability link are excluded. Per-requirement coverage is
// min(100, n*20) — a capped linear heuristic, not a true verification
// ratio. It is kept as-is for compatibility with existing reports and
// must not be changed without product sign-off.
func BuildTraceabilityMatrix(tcs []*TestCase) *TraceabilityMatrix {
	var order []string
	groups := make(map[string]*TraceabilityItem)

	for _, tc := range tcs {
		if tc.Traceability == nil || tc.Traceability.RequirementID == "" {
			continue
		}

		reqID := tc.Traceability.RequirementID
		item, ok := groups[reqID]
		if !ok {
			desc := tc.Traceability.RequirementDescription
			if desc == "" {
				desc = reqID
			}
			risk := tc.Traceability.RiskLevel
			if risk == "" {
				risk = "Medium"
			}
			item = &TraceabilityItem{
				RequirementID:          reqID,
				RequirementDescription: desc,
				RiskLevel:              risk,
				TestCaseIDs:            []string{},
				ComplianceStandards:    []string{},
			}
			groups[reqID] = item
			order = append(order, reqID)
		}

		item.TestCaseIDs = append(item.TestCaseIDs, string(tc.ID))
		for _, std := range tc.Compliance {
			if !containsString(item.ComplianceStandards, std) {
				item.ComplianceStandards = append(item.ComplianceStandards, std)
			}
		}
	}

	matrix := make([]TraceabilityItem, 0, len(order))
	sum := 0
	for _, reqID := range order {
		item := groups[reqID]
		item.Coverage = coverageFor(len(item.TestCaseIDs))
		sum += item.Coverage
		matrix = append(matrix, *item)
	}

	overall := 0
	if len(matrix) > 0 {
		overall = int(math.Round(float64(sum) / float64(len(matrix))))
	}

	return &TraceabilityMatrix{Matrix: matrix, OverallCoverage: overall}
}

func coverageFor(testCaseCount int) int {
	c := testCaseCount * 20
	if c > 100 {
		return 100
	}
	return c
}

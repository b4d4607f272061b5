package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/clinicase/clinicase/internal/domain/compliance"
	"github.com/clinicase/clinicase/internal/domain/testcases"
)

// BuildCompliancePrompt asks the model to assess a set of test cases
// against the named standards, grounded on retrieved compliance text.
func BuildCompliancePrompt(tcs []*testcases.TestCase, standards []string, complianceRequirements []string) string {
	cases, _ := json.MarshalIndent(tcs, "", "  ")
	return fmt.Sprintf(`Analyze the following test cases for compliance with %s.

TEST CASES:
%s

COMPLIANCE REQUIREMENTS:
%s

Provide:
1. Overall compliance score (0-100)
2. For each standard: score, status (compliant/warning/non-compliant), specific findings
3. Recommendations for improvement

Return as JSON:
{
  "overallScore": number,
  "standardsBreakdown": [
    {
      "name": "standard name",
      "score": number,
      "status": "compliant|warning|non-compliant",
      "findings": ["finding1", "finding2"]
    }
  ],
  "recommendations": ["rec1", "rec2"]
}`,
		strings.Join(standards, ", "), string(cases), strings.Join(complianceRequirements, "\n\n"))
}

// ParseAssessment decodes a compliance assessment from model output. The
// model sometimes pads the object with commentary, so only the outermost
// {...} span is decoded. Output without a JSON object yields ErrMalformed.
func ParseAssessment(raw string) (*compliance.Assessment, error) {
	cleaned := StripCodeFences(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in output", ErrMalformed)
	}

	var a compliance.Assessment
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &a, nil
}

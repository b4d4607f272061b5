package prompt

import (
	"fmt"
	"strings"
)

// BuildTestCasePrompt assembles the generation instruction from document
// text, free-form requirements, and retrieved compliance context. Output
// is deterministic for identical inputs.
func BuildTestCasePrompt(documentContext, requirements string, standards []string, complianceContext string) string {
	stds := strings.Join(standards, ", ")
	return fmt.Sprintf(`You are an expert healthcare QA engineer specializing in test case generation for medical devices and healthcare systems.

Generate comprehensive test cases based on the following information:

DOCUMENT CONTEXT:
%s

REQUIREMENTS:
%s

COMPLIANCE STANDARDS: %s

COMPLIANCE REQUIREMENTS:
%s

Generate 5-10 detailed test cases that:
1. Cover all specified requirements
2. Address compliance standards (%s)
3. Include edge cases and error scenarios
4. Follow healthcare industry best practices

For each test case, provide:
- title: Clear, descriptive title
- description: What is being tested
- preconditions: Setup required before testing
- steps: Array of test steps
- expectedResults: Expected outcome
- priority: critical/high/medium/low
- type: functional/integration/regression/compliance
- compliance: Array of applicable standards
- traceability: { requirementId, requirementDescription, riskLevel }

Return ONLY a JSON array of test cases, no additional text.`,
		documentContext, requirements, stds, complianceContext, stds)
}

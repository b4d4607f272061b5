package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTestCasesBareArray(t *testing.T) {
	drafts, err := ParseTestCases(`[{"title":"Verify login","steps":["open app"]}]`)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Verify login", drafts[0].Title)
	assert.Equal(t, []string{"open app"}, drafts[0].Steps)
}

func TestParseTestCasesStripsCodeFences(t *testing.T) {
	raw := "```json\n[{\"title\":\"A\"}]\n```"
	drafts, err := ParseTestCases(raw)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "A", drafts[0].Title)
}

func TestParseTestCasesEmptyArray(t *testing.T) {
	drafts, err := ParseTestCases("[]")
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestParseTestCasesMalformed(t *testing.T) {
	drafts, err := ParseTestCases("I could not generate test cases.")
	assert.ErrorIs(t, err, ErrMalformed)
	assert.Empty(t, drafts)
}

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, "plain", StripCodeFences("  plain  "))
}

func TestBuildTestCasePromptDeterministic(t *testing.T) {
	a := BuildTestCasePrompt("doc", "reqs", []string{"ISO 13485", "HIPAA"}, "ctx")
	b := BuildTestCasePrompt("doc", "reqs", []string{"ISO 13485", "HIPAA"}, "ctx")
	assert.Equal(t, a, b)
	assert.Contains(t, a, "DOCUMENT CONTEXT:\ndoc")
	assert.Contains(t, a, "COMPLIANCE STANDARDS: ISO 13485, HIPAA")
	assert.Contains(t, a, "Return ONLY a JSON array of test cases")
}

func TestParseAssessmentExtractsObject(t *testing.T) {
	raw := "Here you go:\n```json\n{\"overallScore\":82,\"standardsBreakdown\":[{\"name\":\"HIPAA\",\"score\":82,\"status\":\"warning\",\"findings\":[\"x\"]}],\"recommendations\":[\"add auth tests\"]}\n```"
	a, err := ParseAssessment(raw)
	require.NoError(t, err)
	assert.Equal(t, 82, a.OverallScore)
	require.Len(t, a.StandardsBreakdown, 1)
	assert.Equal(t, "HIPAA", a.StandardsBreakdown[0].Name)
	assert.Equal(t, []string{"add auth tests"}, a.Recommendations)
}

func TestParseAssessmentMalformed(t *testing.T) {
	_, err := ParseAssessment("no json here")
	assert.ErrorIs(t, err, ErrMalformed)
}

package testcases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracedTC(id, reqID string, standards ...string) *TestCase {
	return &TestCase{
		ID:           TestCaseID(id),
		Compliance:   standards,
		Traceability: &Traceability{RequirementID: reqID},
	}
}

func TestBuildTraceabilityMatrixEmpty(t *testing.T) {
	m := BuildTraceabilityMatrix(nil)
	assert.Empty(t, m.Matrix)
	assert.Equal(t, 0, m.OverallCoverage)
}

func TestBuildTraceabilityMatrixSkipsUnlinked(t *testing.T) {
	m := BuildTraceabilityMatrix([]*TestCase{
		{ID: "tc_1"},
		{ID: "tc_2", Traceability: &Traceability{}},
	})
	assert.Empty(t, m.Matrix)
}

func TestBuildTraceabilityMatrixGroupsByRequirement(t *testing.T) {
	m := BuildTraceabilityMatrix([]*TestCase{
		tracedTC("tc_1", "REQ-001", "ISO 13485"),
		tracedTC("tc_2", "REQ-001", "IEC 62304"),
		tracedTC("tc_3", "REQ-001", "ISO 13485"),
		tracedTC("tc_4", "REQ-002"),
	})

	require.Len(t, m.Matrix, 2)

	first := m.Matrix[0]
	assert.Equal(t, "REQ-001", first.RequirementID)
	assert.Equal(t, []string{"tc_1", "tc_2", "tc_3"}, first.TestCaseIDs)
	assert.Equal(t, []string{"ISO 13485", "IEC 62304"}, first.ComplianceStandards)
	assert.Equal(t, 60, first.Coverage)

	second := m.Matrix[1]
	assert.Equal(t, "REQ-002", second.RequirementID)
	assert.Equal(t, 20, second.Coverage)

	// round((60+20)/2) = 40
	assert.Equal(t, 40, m.OverallCoverage)
}

func TestBuildTraceabilityMatrixCoverageCapped(t *testing.T) {
	var tcs []*TestCase
	for _, id := range []string{"tc_1", "tc_2", "tc_3", "tc_4", "tc_5", "tc_6", "tc_7"} {
		tcs = append(tcs, tracedTC(id, "REQ-001"))
	}
	m := BuildTraceabilityMatrix(tcs)
	require.Len(t, m.Matrix, 1)
	assert.Equal(t, 100, m.Matrix[0].Coverage)
	assert.Equal(t, 100, m.OverallCoverage)
}

func TestBuildTraceabilityMatrixDefaults(t *testing.T) {
	m := BuildTraceabilityMatrix([]*TestCase{
		{ID: "tc_1", Traceability: &Traceability{RequirementID: "REQ-009"}},
	})
	require.Len(t, m.Matrix, 1)
	assert.Equal(t, "REQ-009", m.Matrix[0].RequirementDescription)
	assert.Equal(t, "Medium", m.Matrix[0].RiskLevel)
}

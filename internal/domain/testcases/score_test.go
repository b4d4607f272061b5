package testcases

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func tcWithCompliance(standards ...string) *TestCase {
	return &TestCase{ID: "tc_x", Compliance: standards}
}

func TestScoreEmptyInputs(t *testing.T) {
	assert.Equal(t, 0, Score(nil, []string{"ISO 13485"}))
	assert.Equal(t, 0, Score([]*TestCase{tcWithCompliance("ISO 13485")}, nil))
}

func TestScoreSingleStandard(t *testing.T) {
	tcs := []*TestCase{
		tcWithCompliance("ISO 13485"),
		tcWithCompliance("ISO 13485"),
		tcWithCompliance(),
		tcWithCompliance(),
	}
	// 2 of 4 cases cover the standard
	assert.Equal(t, 50, Score(tcs, []string{"ISO 13485"}))
}

func TestScoreAveragesAcrossStandards(t *testing.T) {
	tcs := []*TestCase{
		tcWithCompliance("ISO 13485", "IEC 62304"),
		tcWithCompliance("ISO 13485"),
		tcWithCompliance(),
		tcWithCompliance(),
	}
	// ISO 13485: 50%, IEC 62304: 25% -> round(37.5) = 38
	assert.Equal(t, 38, Score(tcs, []string{"ISO 13485", "IEC 62304"}))
}

func TestScoreFullCoverage(t *testing.T) {
	tcs := []*TestCase{
		tcWithCompliance("FDA 21 CFR Part 820"),
		tcWithCompliance("FDA 21 CFR Part 820"),
	}
	assert.Equal(t, 100, Score(tcs, []string{"FDA 21 CFR Part 820"}))
}

func TestScoreExactStandardMatchOnly(t *testing.T) {
	tcs := []*TestCase{tcWithCompliance("ISO 13485:2016")}
	assert.Equal(t, 0, Score(tcs, []string{"ISO 13485"}))
}

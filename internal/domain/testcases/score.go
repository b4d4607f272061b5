package testcases

import "math"

// Score returns the overall compliance coverage of a set of test cases
// against the target standards as an integer percentage. Per-standard
// coverage is the share of test cases tagged with that standard; the
// overall score is the rounded mean across standards. An empty test-case
// list or standards list scores 0.
func Score(tcs []*TestCase, standards []string) int {
	if len(tcs) == 0 || len(standards) == 0 {
		return 0
	}

	total := 0.0
	for _, std := range standards {
		covering := 0
		for _, tc := range tcs {
			if containsString(tc.Compliance, std) {
				covering++
			}
		}
		total += float64(covering) / float64(len(tcs)) * 100
	}

	return int(math.Round(total / float64(len(standards))))
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

package middleware

import (
	"fmt"
	"regexp"
	"strings"
)

// Input validation and sanitization utilities

var (
	projectIDPattern  = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	testCaseIDPattern = regexp.MustCompile(`^tc_[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)
)

// ValidateProjectID validates project ID format
func ValidateProjectID(projectID string) error {
	if projectID == "" {
		return fmt.Errorf("project ID cannot be empty")
	}
	if !projectIDPattern.MatchString(projectID) {
		return fmt.Errorf("invalid project ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateTestCaseID validates test case ID format
func ValidateTestCaseID(id string) error {
	if id == "" {
		return fmt.Errorf("test case ID cannot be empty")
	}
	if !testCaseIDPattern.MatchString(id) {
		return fmt.Errorf("invalid test case ID format")
	}
	return nil
}

// ValidateIDList validates a batch of test case IDs
func ValidateIDList(ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("at least one test case ID is required")
	}
	if len(ids) > 200 {
		return fmt.Errorf("too many test case IDs (max 200)")
	}
	for _, id := range ids {
		if err := ValidateTestCaseID(id); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStandards validates a compliance standards list
func ValidateStandards(standards []string) error {
	if len(standards) == 0 {
		return fmt.Errorf("at least one compliance standard is required")
	}
	for _, s := range standards {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("compliance standard cannot be empty")
		}
		if len(s) > 128 {
			return fmt.Errorf("compliance standard name too long (max 128 chars)")
		}
	}
	return nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters
	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/clinicase/clinicase/internal/domain/testcases"
)

// ErrMalformed indicates model output that could not be decoded into the
// requested shape. Callers treat it as "zero results", never as a request
// failure; it exists so that genuine parse failures stay distinguishable
// from an empty but valid array.
var ErrMalformed = errors.New("malformed model output")

// ParseTestCases extracts test-case drafts from raw model output. The
// model is asked for a bare JSON array but routinely wraps it in code
// fences, so those are stripped first. Output that is not a JSON array
// yields an empty slice plus ErrMalformed.
func ParseTestCases(raw string) ([]testcases.Draft, error) {
	cleaned := StripCodeFences(raw)

	var drafts []testcases.Draft
	if err := json.Unmarshal([]byte(cleaned), &drafts); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return drafts, nil
}

// StripCodeFences removes markdown code-fence markers the model tends to
// wrap JSON in.
func StripCodeFences(raw string) string {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	return strings.TrimSpace(cleaned)
}

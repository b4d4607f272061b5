package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/clinicase/clinicase/internal/domain/testcases"
)

// Supported format selectors.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatHTML = "html"
)

// ErrUnsupportedFormat rejects unknown format selectors; there is no
// silent fallback.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// File is one rendered export payload.
type File struct {
	Content     []byte
	ContentType string
	Extension   string
}

var csvHeaders = []string{
	"ID", "Title", "Description", "Priority", "Type", "Status",
	"Compliance", "Steps", "Expected Results",
}

// Render serializes test cases into the selected format.
func Render(tcs []*testcases.TestCase, format string) (*File, error) {
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(tcs, "", "  ")
		if err != nil {
			return nil, err
		}
		return &File{Content: b, ContentType: "application/json", Extension: "json"}, nil
	case FormatCSV:
		return &File{Content: renderCSV(tcs), ContentType: "text/csv", Extension: "csv"}, nil
	case FormatXLSX:
		b, err := renderXLSX(tcs)
		if err != nil {
			return nil, err
		}
		return &File{
			Content:     b,
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Extension:   "xlsx",
		}, nil
	case FormatHTML:
		return &File{Content: renderHTML(tcs), ContentType: "text/html", Extension: "html"}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func row(tc *testcases.TestCase) []string {
	return []string{
		string(tc.ID),
		tc.Title,
		tc.Description,
		string(tc.Priority),
		string(tc.Type),
		string(tc.Status),
		strings.Join(tc.Compliance, "; "),
		strings.Join(tc.Steps, " | "),
		tc.ExpectedResults,
	}
}

// renderCSV quotes every field and doubles embedded quotes, so field
// boundaries survive free-text descriptions.
func renderCSV(tcs []*testcases.TestCase) []byte {
	var b strings.Builder
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
		}
		b.WriteByte('\n')
	}
	writeRow(csvHeaders)
	for _, tc := range tcs {
		writeRow(row(tc))
	}
	return []byte(b.String())
}

// renderXLSX writes one worksheet row per test case with the same
// columns as the CSV form.
func renderXLSX(tcs []*testcases.TestCase) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Test Cases"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for col, h := range csvHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	for i, tc := range tcs {
		for col, v := range row(tc) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderHTML produces a printable document: one section per test case,
// steps as an ordered list, expected results as an unordered list.
func renderHTML(tcs []*testcases.TestCase) []byte {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; margin: 20px; }
h1 { color: #333; }
section { margin-bottom: 30px; page-break-inside: avoid; }
</style>
</head>
<body>
<h1>Test Cases Export</h1>
`)
	for _, tc := range tcs {
		b.WriteString("<section>\n")
		fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(tc.Title))
		fmt.Fprintf(&b, "<p><strong>ID:</strong> %s</p>\n", html.EscapeString(string(tc.ID)))
		fmt.Fprintf(&b, "<p><strong>Priority:</strong> %s</p>\n", html.EscapeString(string(tc.Priority)))
		fmt.Fprintf(&b, "<p><strong>Type:</strong> %s</p>\n", html.EscapeString(string(tc.Type)))
		fmt.Fprintf(&b, "<p><strong>Description:</strong> %s</p>\n", html.EscapeString(tc.Description))
		b.WriteString("<p><strong>Steps:</strong></p>\n<ol>\n")
		for _, step := range tc.Steps {
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(step))
		}
		b.WriteString("</ol>\n<p><strong>Expected Results:</strong></p>\n<ul>\n")
		fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(tc.ExpectedResults))
		b.WriteString("</ul>\n</section>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return []byte(b.String())
}

// Package csvcodec renders order records as CSV text and merges per-page CSV
// chunks into the accumulated export.
//
// A value is quoted only when it contains a comma or a double quote, lines are
// joined with "\n" and there is no trailing newline.
package csvcodec

import "strings"

// Record is a row with a fixed column layout.
type Record interface {
	Header() []string
	Values() []string
}

// Encode renders records as a header line followed by one line per record.
// The header comes from the first record. An empty input yields "".
func Encode[R Record](records []R) string {
	if len(records) == 0 {
		return ""
	}

	lines := make([]string, 0, len(records)+1)
	lines = append(lines, strings.Join(records[0].Header(), ","))
	for _, record := range records {
		values := record.Values()
		escaped := make([]string, len(values))
		for i, value := range values {
			escaped[i] = Escape(value)
		}
		lines = append(lines, strings.Join(escaped, ","))
	}
	return strings.Join(lines, "\n")
}

// Escape quotes value when it contains a comma or a quote, doubling embedded quotes.
func Escape(value string) string {
	if !strings.ContainsAny(value, `,"`) {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

// Merge appends the data rows of incoming to existing. When existing is empty
// incoming is returned unchanged. The header of incoming is dropped without
// being compared to the header of existing.
func Merge(existing, incoming string) string {
	if existing == "" {
		return incoming
	}
	lines := strings.Split(existing, "\n")
	incomingLines := strings.Split(incoming, "\n")
	lines = append(lines, incomingLines[1:]...)
	return strings.Join(lines, "\n")
}

// Rows counts the data rows of csv, excluding the header.
func Rows(csv string) int {
	if csv == "" {
		return 0
	}
	return strings.Count(csv, "\n")
}

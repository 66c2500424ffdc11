package textreport

import (
	"strings"
)

// LineKind is the verdict of the line classifier
type LineKind int

const (
	LineBlank LineKind = iota
	LineSeparator
	LineHeader
	LineData
)

// String returns the lowercase name of the kind
func (k LineKind) String() string {
	switch k {
	case LineBlank:
		return "blank"
	case LineSeparator:
		return "separator"
	case LineHeader:
		return "header"
	case LineData:
		return "data"
	default:
		return "unknown"
	}
}

// DefaultSeparatorThreshold is the number of '-' above which a line is a border
const DefaultSeparatorThreshold = 20

// LineRules configures the classifier for one report type
type LineRules struct {
	// SeparatorThreshold defaults to DefaultSeparatorThreshold when zero.
	SeparatorThreshold int
	// RequireLeadingDelimiter treats rows not starting with '|' as noise.
	RequireLeadingDelimiter bool
	// RequireDate demands a date token on data rows.
	RequireDate bool
	// HeaderMarkers are matched case-insensitively.
	HeaderMarkers []string
}

// ClassifyLine decides what a raw line is. It carries no state between
// calls; header tracking is the caller's job.
func ClassifyLine(line string, rules LineRules) LineKind {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LineBlank
	}

	threshold := rules.SeparatorThreshold
	if threshold <= 0 {
		threshold = DefaultSeparatorThreshold
	}
	if strings.Count(trimmed, "-") > threshold {
		return LineSeparator
	}
	if !strings.Contains(trimmed, Delimiter) {
		return LineSeparator
	}
	if rules.RequireLeadingDelimiter && !strings.HasPrefix(trimmed, Delimiter) {
		return LineSeparator
	}

	hasDate := HasDate(trimmed)
	if !hasDate && containsMarker(trimmed, rules.HeaderMarkers) {
		return LineHeader
	}

	if rules.RequireDate && !hasDate {
		return LineSeparator
	}
	return LineData
}

func containsMarker(line string, markers []string) bool {
	if len(markers) == 0 {
		return false
	}
	lower := strings.ToLower(line)
	for _, m := range markers {
		if m != "" && strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

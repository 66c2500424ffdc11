package textreport

import "strings"

// Delimiter separates fields in the list exports
const Delimiter = "|"

// SplitColumns splits a data line on the delimiter and trims every field.
// When the line is delimiter-bounded the empty first and last artifacts are
// dropped. Internal empty fields are kept so positional indices stay stable.
func SplitColumns(line string) []string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	parts := strings.Split(trimmed, Delimiter)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if len(parts) >= 2 && strings.HasPrefix(trimmed, Delimiter) && strings.HasSuffix(trimmed, Delimiter) {
		parts = parts[1 : len(parts)-1]
	}
	return parts
}

// SplitCompact splits like SplitColumns and then drops every empty field.
// Only parsers that do not rely on positional indices may use it.
func SplitCompact(line string) []string {
	parts := SplitColumns(line)
	compact := parts[:0]
	for _, p := range parts {
		if p != "" {
			compact = append(compact, p)
		}
	}
	return compact
}

// Splitter is the signature shared by SplitColumns and SplitCompact
type Splitter func(line string) []string

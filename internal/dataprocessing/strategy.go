package dataprocessing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"deliveryboard/internal/textreport"
)

// Strategy describes how the columns of a data line map to record fields.
// It is either FixedOffset or HeaderDriven.
type Strategy interface {
	// Splitter returns the column splitter bound to the strategy
	Splitter() textreport.Splitter
	strategy()
}

// Anchor selects what FixedOffset column indices are relative to
type Anchor int

const (
	// AnchorStart uses absolute column indices
	AnchorStart Anchor = iota
	// AnchorFirstDate makes indices relative to the first column holding a date
	AnchorFirstDate
)

// FixedOffset maps fields by column position
type FixedOffset struct {
	Columns    map[string]int
	MinColumns int
	Anchor     Anchor
	// RequiredAny drops rows where every one of these fields is empty
	RequiredAny []string
	// Compact drops empty cells before indexing, for exports that emit
	// stray empty columns between the anchor and the fields.
	Compact bool
}

func (s FixedOffset) Splitter() textreport.Splitter {
	if s.Compact {
		return textreport.SplitCompact
	}
	return textreport.SplitColumns
}

func (FixedOffset) strategy() {}

// Map returns the fields of one data row. It returns false when the row has
// no anchor column or none of the RequiredAny fields is filled.
func (s FixedOffset) Map(cols []string) (map[string]string, bool) {
	start := 0
	if s.Anchor == AnchorFirstDate {
		start = -1
		for i, c := range cols {
			if textreport.HasDate(c) {
				start = i
				break
			}
		}
		if start < 0 {
			return nil, false
		}
	}

	row := cols[start:]
	if len(row) < s.MinColumns {
		padded := make([]string, s.MinColumns)
		copy(padded, row)
		row = padded
	}

	fields := make(map[string]string, len(s.Columns))
	for name, idx := range s.Columns {
		if idx >= 0 && idx < len(row) {
			fields[name] = row[idx]
		} else {
			fields[name] = ""
		}
	}

	if len(s.RequiredAny) > 0 && !anyFilled(fields, s.RequiredAny) {
		return nil, false
	}
	return fields, true
}

// HeaderDriven maps fields through the labels of the most recent header row
type HeaderDriven struct {
	// Synonyms lists the accepted header labels per logical field
	Synonyms map[string][]string
	// KeyField must be present in a header for it to be accepted
	KeyField string
}

func (HeaderDriven) Splitter() textreport.Splitter { return textreport.SplitColumns }
func (HeaderDriven) strategy()                     {}

// ColumnMap is a logical field to column index mapping
type ColumnMap map[string]int

// Has reports whether field was found in the header
func (m ColumnMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// ColumnMap builds the mapping for one header row. Labels are compared
// ignoring case, accents, punctuation dots and repeated whitespace. When two
// columns match the same field the leftmost wins.
func (s HeaderDriven) ColumnMap(labels []string) ColumnMap {
	lookup := s.labelLookup()
	m := make(ColumnMap)
	for i, label := range labels {
		field, ok := lookup[NormalizeLabel(label)]
		if !ok || m.Has(field) {
			continue
		}
		m[field] = i
	}
	return m
}

// Map returns the fields of one data row under m. Rows that repeat the
// header (key field holding one of its own labels) or carry nothing in any
// mapped column are rejected.
func (s HeaderDriven) Map(cols []string, m ColumnMap) (map[string]string, bool) {
	if len(m) == 0 {
		return nil, false
	}

	fields := make(map[string]string, len(m))
	filled := false
	for name, idx := range m {
		v := ""
		if idx < len(cols) {
			v = cols[idx]
		}
		fields[name] = v
		if v != "" {
			filled = true
		}
	}
	if !filled {
		return nil, false
	}

	if key := NormalizeLabel(fields[s.KeyField]); key != "" {
		for _, syn := range s.Synonyms[s.KeyField] {
			if NormalizeLabel(syn) == key {
				return nil, false
			}
		}
	}
	return fields, true
}

func (s HeaderDriven) labelLookup() map[string]string {
	lookup := make(map[string]string)
	for field, syns := range s.Synonyms {
		for _, syn := range syns {
			lookup[NormalizeLabel(syn)] = field
		}
	}
	return lookup
}

// NormalizeLabel folds a header label for comparison:
// "  Data  Rem. " and "data rem" normalize to the same string, as do
// "Requisição" and "REQUISICAO".
func NormalizeLabel(label string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, label)
	if err != nil {
		folded = label
	}
	folded = strings.ToLower(strings.NewReplacer(".", " ", ":", " ", "_", " ").Replace(folded))
	return strings.Join(strings.Fields(folded), " ")
}

func anyFilled(fields map[string]string, names []string) bool {
	for _, n := range names {
		if fields[n] != "" {
			return true
		}
	}
	return false
}

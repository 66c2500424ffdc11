// Package textreport holds the line-level primitives used to read the ERP
// list exports: classifying raw lines, splitting pipe-delimited rows into
// columns, finding embedded dd.mm.yyyy dates and decoding legacy
// single-byte text.
//
// Nothing in this package knows about a specific report layout; the report
// parsers in internal/dataprocessing combine these primitives through a
// per-report strategy.
//
// Example:
//
//	rules := textreport.LineRules{RequireDate: true, RequireLeadingDelimiter: true}
//	for _, line := range textreport.Lines(textreport.Decode(raw, textreport.EncodingLatin1)) {
//	    if textreport.ClassifyLine(line, rules) != textreport.LineData {
//	        continue
//	    }
//	    cols := textreport.SplitColumns(line)
//	    ...
//	}
package textreport

// Package exporter turns a classified board into downloadable files.
//
// BuildTable flattens a ReportSnapshot into rows, one block per bucket, with
// the columns of the record kind's layout. BoardExporter renders that table
// as an XLSX workbook (a summary sheet plus one sheet per bucket) or as a
// UTF-8 CSV with BOM so Excel opens accented text correctly. CSVWriter is
// also used directly to write CSV files to disk.
//
// Example usage:
//
//	exp := exporter.NewBoardExporter(logger)
//	w.Header().Set("Content-Type", exporter.FormatXLSX.ContentType())
//	err := exp.Export(w, snapshot, exporter.FormatXLSX)
package exporter

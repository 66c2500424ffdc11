package exporter

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"deliveryboard/internal/dataprocessing"
	"deliveryboard/pkg/contracts/domain"
)

// Format is a board download format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported download formats
var Formats = []Format{FormatXLSX, FormatCSV}

// ParseFormat parses a format name; the empty string means xlsx
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "xlsx", "excel":
		return FormatXLSX, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType returns the MIME type of f
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Table is a board flattened to rows, one block per bucket
type Table struct {
	Headers []string
	// Rows holds the rows of every bucket, keyed by bucket
	Rows map[domain.Bucket][][]string
}

// All returns the rows of every bucket in display order
func (t Table) All() [][]string {
	var all [][]string
	for _, b := range bucketOrder {
		all = append(all, t.Rows[b]...)
	}
	return all
}

// BuildTable flattens a snapshot. Columns are the status, the record id,
// every field of the record kind, the target date, the confirmation and the
// ask flag.
func BuildTable(snap *domain.ReportSnapshot) (Table, error) {
	layout, err := dataprocessing.LayoutFor(snap.Kind)
	if err != nil {
		return Table{}, err
	}

	headers := []string{"Situação", "ID"}
	for _, f := range layout.Fields {
		headers = append(headers, fieldLabel(f))
	}
	headers = append(headers, "Data alvo", "Confirmado", "Perguntar")

	table := Table{Headers: headers, Rows: make(map[domain.Bucket][][]string, len(bucketOrder))}
	for _, b := range bucketOrder {
		records := snap.Result.Bucket(b)
		rows := make([][]string, 0, len(records))
		for _, cr := range records {
			row := []string{bucketLabel(b), cr.ID}
			for _, f := range layout.Fields {
				row = append(row, cr.Field(f))
			}
			ask := ""
			if cr.Ask {
				ask = formatBool(true)
			}
			row = append(row, formatDate(cr.TargetDate), formatConfirmed(cr.Confirmed), ask)
			rows = append(rows, row)
		}
		table.Rows[b] = rows
	}
	return table, nil
}

// Filename returns the download name of a snapshot, e.g.
// "reservation_2025-03-10.xlsx".
func Filename(snap *domain.ReportSnapshot, f Format) string {
	return fmt.Sprintf("%s_%s.%s", snap.Kind, snap.Today, f)
}

// BoardExporter writes board snapshots in the supported formats
type BoardExporter struct {
	csv    *CSVWriter
	logger *slog.Logger
}

// NewBoardExporter creates an exporter
func NewBoardExporter(logger *slog.Logger) *BoardExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardExporter{
		csv:    NewCSVWriter("", logger),
		logger: logger.With(slog.String("component", "board_exporter")),
	}
}

// Export writes snap to w in format f. The document is built in memory
// first so a failure never leaves a truncated download behind.
func (e *BoardExporter) Export(w io.Writer, snap *domain.ReportSnapshot, f Format) error {
	if snap == nil {
		return fmt.Errorf("no board to export")
	}
	table, err := BuildTable(snap)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	switch f {
	case FormatCSV:
		err = e.csv.WriteCSV(&buf, WriteOptions{
			Headers:   table.Headers,
			Records:   table.All(),
			BOMPrefix: true,
		})
	case FormatXLSX:
		err = writeXLSX(&buf, snap, table)
	default:
		err = fmt.Errorf("unsupported export format %q", f)
	}
	if err != nil {
		return err
	}

	e.logger.Debug("Board exported",
		slog.String("kind", string(snap.Kind)),
		slog.String("format", string(f)),
		slog.Int("bytes", buf.Len()))

	_, err = buf.WriteTo(w)
	return err
}

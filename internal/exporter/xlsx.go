package exporter

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"deliveryboard/pkg/contracts/domain"
)

const summarySheet = "Resumo"

// writeXLSX writes a workbook with a summary sheet followed by one sheet per
// bucket.
func writeXLSX(w io.Writer, snap *domain.ReportSnapshot, table Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}

	counts := snap.Result.Counts()
	summary := [][]interface{}{
		{"Relatório", string(snap.Kind)},
		{"Arquivo", snap.Source.Name},
		{"Hoje", formatDate(&snap.Today)},
		{"Atualizado", snap.RefreshedAt.Format(time.DateTime)},
	}
	for _, b := range bucketOrder {
		summary = append(summary, []interface{}{bucketLabel(b), counts[b]})
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if err := f.SetColStyle(summarySheet, "A", bold); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return fmt.Errorf("failed to size summary: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(len(table.Headers))
	if err != nil {
		return err
	}

	for _, b := range bucketOrder {
		sheet := bucketLabel(b)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
		headers := table.Headers
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return fmt.Errorf("failed to style headers: %w", err)
		}
		for i, row := range table.Rows[b] {
			cell, _ := excelize.CoordinatesToCellName(1, i+2)
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("failed to write row %d of %s: %w", i, sheet, err)
			}
		}
		if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
			return fmt.Errorf("failed to size columns: %w", err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze header: %w", err)
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

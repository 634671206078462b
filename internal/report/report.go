// Package report renders extracted tables for the terminal or CSV export.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/hydrolytics/olisurvey/internal/result"
)

// MissingSentinel marks cells the service returned no value for. It is
// distinct from a rendered zero on purpose.
const MissingSentinel = "n/a"

// Render draws the table to w with an index column followed by the
// extraction columns in request order.
func Render(w io.Writer, table *result.Table) {
	out := tablewriter.NewWriter(w)
	out.SetHeader(header(table))
	for _, row := range table.Rows {
		out.Append(formatRow(row))
	}
	out.Render()
}

// WriteCSV writes the table as CSV with the same layout as Render.
func WriteCSV(w io.Writer, table *result.Table) error {
	out := csv.NewWriter(w)
	if err := out.Write(header(table)); err != nil {
		return fmt.Errorf("report: write header: %w", err)
	}
	for _, row := range table.Rows {
		if err := out.Write(formatRow(row)); err != nil {
			return fmt.Errorf("report: write row %d: %w", row.Index, err)
		}
	}
	out.Flush()
	if err := out.Error(); err != nil {
		return fmt.Errorf("report: flush: %w", err)
	}
	return nil
}

func header(table *result.Table) []string {
	return append([]string{"index"}, table.Columns...)
}

func formatRow(row result.Row) []string {
	fields := make([]string, 0, len(row.Cells)+1)
	fields = append(fields, strconv.Itoa(row.Index))
	for _, cell := range row.Cells {
		if !cell.Present {
			fields = append(fields, MissingSentinel)
			continue
		}
		fields = append(fields, strconv.FormatFloat(cell.Value, 'g', -1, 64))
	}
	return fields
}

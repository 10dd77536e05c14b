// Package export writes the visible rows of an admin table as a spreadsheet-ready CSV file.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"admin_dashboard/internal/cell"
	"admin_dashboard/internal/datatable"
)

// Formatter converts a rendered cell into its exported value.
type Formatter func(value string) string

// Spec describes the export of one table.
type Spec struct {
	Filename  string
	SheetName string
	// Columns lists the exported column indexes. Nil exports every column.
	Columns []int
	// SkipLast drops the last column (usually the action buttons) when Columns is nil.
	SkipLast bool
	// Format overrides the formatter of individual columns.
	Format map[int]Formatter
}

// ColumnIndexes resolves the exported columns for a table of n columns.
func (s Spec) ColumnIndexes(n int) []int {
	if s.Columns != nil {
		out := make([]int, 0, len(s.Columns))
		for _, c := range s.Columns {
			if c >= 0 && c < n {
				out = append(out, c)
			}
		}
		return out
	}
	if s.SkipLast && n > 0 {
		n--
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// FileName returns the attachment name of the export.
func (s Spec) FileName() string {
	name := s.Filename
	if name == "" {
		name = "export"
	}
	return name + ".csv"
}

func (s Spec) formatter(col int) Formatter {
	if f, ok := s.Format[col]; ok {
		return f
	}
	return StripSpan
}

// Write renders the header and rows as CSV into w.
func Write(w io.Writer, s Spec, columns []datatable.Column, rows []datatable.Row) error {
	cols := s.ColumnIndexes(len(columns))
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = columns[c].Title
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			var v string
			if c < len(row) {
				v = row[c]
			}
			record[i] = s.formatter(c)(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// StripSpan exports the cell with its <span> wrappers removed.
func StripSpan(value string) string {
	return cell.StripSpan(value)
}

// SelectedOption exports the value of the selected option of the select matching selector.
func SelectedOption(selector string) Formatter {
	return func(value string) string {
		return cell.SelectedValue(value, selector)
	}
}

// CheckMark exports ✔️ as "true" and ❌ as "false"; other cells go through StripSpan.
func CheckMark(value string) string {
	switch {
	case strings.Contains(value, "✔️"):
		return "true"
	case strings.Contains(value, "❌"):
		return "false"
	}
	return StripSpan(value)
}

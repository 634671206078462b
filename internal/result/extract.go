package result

// Cell is one table entry. Present distinguishes "service returned no value"
// from a genuine zero; a missing cell never reads as 0.
type Cell struct {
	Value   float64
	Present bool
}

// Row is one table row, keyed by the survey point index it was built from.
type Row struct {
	Index int
	Cells []Cell
}

// Table is the flattened extraction output: one row per input result in input
// order, one column per requested name in request order.
type Table struct {
	Columns []string
	Rows    []Row
}

// Cell returns the cell at (row, column name).
func (t *Table) Cell(row int, column string) (Cell, bool) {
	if row < 0 || row >= len(t.Rows) {
		return Cell{}, false
	}
	for i, name := range t.Columns {
		if name == column {
			return t.Rows[row].Cells[i], true
		}
	}
	return Cell{}, false
}

// Report aggregates the per-row lookup failures of one extraction.
type Report struct {
	// MissingPhases counts rows whose result lacked the requested phase.
	MissingPhases int
	// MissingValues counts individual absent property or scalant cells in
	// rows where the phase (if any) was found.
	MissingValues int
}

// BasicProperties flattens the requested phase properties across results.
// A result without the phase yields a fully-missing row and extraction
// continues; an absent property yields a missing cell. The table always has
// one row per input result and one column per requested property, so a
// property absent everywhere still produces a (fully missing) column.
// The inputs are never mutated and the call never fails.
func BasicProperties(results []*RawResult, phase string, properties []string) (*Table, Report) {
	table := &Table{Columns: append([]string(nil), properties...)}
	var report Report

	for i, r := range results {
		row := Row{Index: i, Cells: make([]Cell, len(properties))}
		if r == nil || !r.HasPhase(phase) {
			report.MissingPhases++
			table.Rows = append(table.Rows, row)
			continue
		}
		for c, name := range properties {
			if v, ok := r.Property(phase, name); ok {
				row.Cells[c] = Cell{Value: v, Present: true}
			} else {
				report.MissingValues++
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, report
}

// ScalingTendencies flattens the requested scalant tendencies across results.
// Same shape guarantees as BasicProperties, with scalant names as columns.
func ScalingTendencies(results []*RawResult, scalants []string) (*Table, Report) {
	table := &Table{Columns: append([]string(nil), scalants...)}
	var report Report

	for i, r := range results {
		row := Row{Index: i, Cells: make([]Cell, len(scalants))}
		for c, name := range scalants {
			if r == nil {
				report.MissingValues++
				continue
			}
			if v, ok := r.ScalingTendency(name); ok {
				row.Cells[c] = Cell{Value: v, Present: true}
			} else {
				report.MissingValues++
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, report
}

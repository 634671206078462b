package result

import "testing"

func liquid(props map[string]float64) *RawResult {
	return New(map[string]map[string]float64{"liquid1": props}, nil)
}

func TestBasicProperties_RoundTrip(t *testing.T) {
	results := []*RawResult{
		liquid(map[string]float64{"ph": 7.0, "density": 1000}),
		liquid(map[string]float64{"ph": 7.5, "density": 1010}),
	}

	table, report := BasicProperties(results, "liquid1", []string{"ph", "density"})
	if report.MissingPhases != 0 || report.MissingValues != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(table.Rows))
	}
	cell, ok := table.Cell(1, "ph")
	if !ok || !cell.Present || cell.Value != 7.5 {
		t.Errorf("expected row 1 ph = 7.5, got %+v (found=%v)", cell, ok)
	}
	cell, _ = table.Cell(0, "density")
	if !cell.Present || cell.Value != 1000 {
		t.Errorf("expected row 0 density = 1000, got %+v", cell)
	}
}

func TestBasicProperties_ColumnOrderMatchesRequest(t *testing.T) {
	results := []*RawResult{liquid(map[string]float64{"a": 1, "b": 2, "c": 3})}
	table, _ := BasicProperties(results, "liquid1", []string{"c", "a", "b"})
	want := []string{"c", "a", "b"}
	for i, name := range want {
		if table.Columns[i] != name {
			t.Errorf("column %d: expected %s, got %s", i, name, table.Columns[i])
		}
	}
	wantValues := []float64{3, 1, 2}
	for i, v := range wantValues {
		if table.Rows[0].Cells[i].Value != v {
			t.Errorf("cell %d: expected %v, got %v", i, v, table.Rows[0].Cells[i].Value)
		}
	}
}

func TestBasicProperties_MissingPropertyMarksCell(t *testing.T) {
	results := make([]*RawResult, 5)
	for i := range results {
		props := map[string]float64{"ph": 7.0 + float64(i), "density": 1000}
		if i == 2 {
			delete(props, "ph")
		}
		results[i] = liquid(props)
	}

	table, report := BasicProperties(results, "liquid1", []string{"ph", "density"})
	if len(table.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(table.Rows))
	}
	if report.MissingValues != 1 {
		t.Errorf("expected 1 missing value, got %d", report.MissingValues)
	}
	for i := range results {
		cell, _ := table.Cell(i, "ph")
		if i == 2 {
			if cell.Present {
				t.Errorf("row 2 ph should be missing, got %+v", cell)
			}
			continue
		}
		if !cell.Present || cell.Value != 7.0+float64(i) {
			t.Errorf("row %d ph: expected %v, got %+v", i, 7.0+float64(i), cell)
		}
	}
}

func TestBasicProperties_MissingPhaseIsPerRow(t *testing.T) {
	results := []*RawResult{
		liquid(map[string]float64{"ph": 7.0}),
		New(map[string]map[string]float64{"vapor": {"volume": 1}}, nil),
		liquid(map[string]float64{"ph": 7.2}),
	}

	table, report := BasicProperties(results, "liquid1", []string{"ph"})
	if report.MissingPhases != 1 {
		t.Errorf("expected 1 missing phase, got %d", report.MissingPhases)
	}
	if len(table.Rows) != 3 {
		t.Fatalf("extraction must keep one row per result, got %d", len(table.Rows))
	}
	if cell, _ := table.Cell(1, "ph"); cell.Present {
		t.Error("row with missing phase should have missing cells")
	}
	if cell, _ := table.Cell(2, "ph"); !cell.Present || cell.Value != 7.2 {
		t.Errorf("rows after a missing phase must still extract, got %+v", cell)
	}
}

func TestBasicProperties_AbsentEverywhereStillAColumn(t *testing.T) {
	results := []*RawResult{
		liquid(map[string]float64{"ph": 7.0}),
		liquid(map[string]float64{"ph": 7.1}),
	}
	table, report := BasicProperties(results, "liquid1", []string{"ph", "entropy"})
	if len(table.Columns) != 2 {
		t.Fatalf("expected requested-but-absent column to survive, got %v", table.Columns)
	}
	if report.MissingValues != 2 {
		t.Errorf("expected 2 missing values, got %d", report.MissingValues)
	}
	for i := range results {
		if cell, _ := table.Cell(i, "entropy"); cell.Present {
			t.Errorf("row %d entropy should be missing", i)
		}
	}
}

func TestBasicProperties_ZeroIsNotMissing(t *testing.T) {
	table, report := BasicProperties([]*RawResult{liquid(map[string]float64{"ph": 0})}, "liquid1", []string{"ph"})
	cell, _ := table.Cell(0, "ph")
	if !cell.Present || cell.Value != 0 {
		t.Errorf("zero value must be present, got %+v", cell)
	}
	if report.MissingValues != 0 {
		t.Errorf("zero value must not count as missing, got %d", report.MissingValues)
	}
}

func TestScalingTendencies_MissingScalant(t *testing.T) {
	results := []*RawResult{
		New(nil, map[string]float64{"CACO3": 1.8, "CASO4.2H2O": 0.4}),
		New(nil, map[string]float64{"CACO3": 2.1}),
	}

	table, report := ScalingTendencies(results, []string{"CACO3", "CASO4.2H2O"})
	if len(table.Rows) != 2 || len(table.Columns) != 2 {
		t.Fatalf("expected 2x2 table, got %dx%d", len(table.Rows), len(table.Columns))
	}
	if cell, _ := table.Cell(0, "CASO4.2H2O"); !cell.Present || cell.Value != 0.4 {
		t.Errorf("row 0 CASO4.2H2O: expected 0.4, got %+v", cell)
	}
	if cell, _ := table.Cell(1, "CASO4.2H2O"); cell.Present {
		t.Errorf("row 1 CASO4.2H2O should be missing, got %+v", cell)
	}
	if report.MissingValues != 1 {
		t.Errorf("expected 1 missing value, got %d", report.MissingValues)
	}
}

func TestScalingTendencies_EmptyResults(t *testing.T) {
	table, report := ScalingTendencies(nil, []string{"CACO3"})
	if len(table.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(table.Rows))
	}
	if len(table.Columns) != 1 {
		t.Errorf("expected 1 column, got %d", len(table.Columns))
	}
	if report.MissingPhases != 0 || report.MissingValues != 0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestCell_OutOfRange(t *testing.T) {
	table, _ := ScalingTendencies(nil, []string{"CACO3"})
	if _, ok := table.Cell(0, "CACO3"); ok {
		t.Error("expected no cell for out-of-range row")
	}
	table2, _ := BasicProperties([]*RawResult{liquid(nil)}, "liquid1", []string{"ph"})
	if _, ok := table2.Cell(0, "nope"); ok {
		t.Error("expected no cell for unknown column")
	}
}

package report

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/hydrolytics/olisurvey/internal/result"
)

func sampleTable() *result.Table {
	results := []*result.RawResult{
		result.New(map[string]map[string]float64{"liquid1": {"ph": 7.0, "density": 0}}, nil),
		result.New(map[string]map[string]float64{"liquid1": {"density": 1010}}, nil),
	}
	table, _ := result.BasicProperties(results, "liquid1", []string{"ph", "density"})
	return table
}

func TestWriteCSV_Layout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}

	wantHeader := []string{"index", "ph", "density"}
	for i, name := range wantHeader {
		if records[0][i] != name {
			t.Errorf("header %d: expected %s, got %s", i, name, records[0][i])
		}
	}
	if records[1][1] != "7" {
		t.Errorf("row 0 ph: expected 7, got %s", records[1][1])
	}
	if records[2][1] != MissingSentinel {
		t.Errorf("row 1 ph: expected sentinel %q, got %s", MissingSentinel, records[2][1])
	}
}

func TestWriteCSV_ZeroDistinctFromMissing(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back failed: %v", err)
	}
	// Row 0 density is a genuine zero, row 1 ph is missing.
	if records[1][2] != "0" {
		t.Errorf("zero value must render as 0, got %s", records[1][2])
	}
	if records[1][2] == MissingSentinel {
		t.Error("zero value must not render as the missing sentinel")
	}
}

func TestRender_ContainsSentinelAndValues(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, sampleTable())

	out := buf.String()
	if !strings.Contains(out, MissingSentinel) {
		t.Errorf("rendered table should contain the missing sentinel, got:\n%s", out)
	}
	if !strings.Contains(out, "1010") {
		t.Errorf("rendered table should contain values, got:\n%s", out)
	}
	if !strings.Contains(strings.ToLower(out), "density") {
		t.Errorf("rendered table should contain column headers, got:\n%s", out)
	}
}

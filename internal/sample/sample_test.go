package sample

import (
	"os"
	"path/filepath"
	"testing"
)

const brineDoc = `
temperature: {value: 298.15, unit: K}
pressure: {value: 101325, unit: Pa}
components:
  - {name: Cl_-, value: 870, unit: mg/L}
  - {name: Na_+, value: 739, unit: mg/L}
  - {name: SO4_2-, value: 1011, unit: mg/L}
survey:
  - {component: SO4_2-, values: [0, 500, 1000]}
outputs:
  phase: liquid1
  properties: [ph, osmoticPressure]
  scalants: [CACO3, CASO4.2H2O]
`

func writeDoc(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "brine.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	return path
}

func TestLoad_FullDocument(t *testing.T) {
	doc, err := Load(writeDoc(t, brineDoc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s, err := doc.ToState()
	if err != nil {
		t.Fatalf("ToState failed: %v", err)
	}
	if s.Temperature().Value != 298.15 || s.Temperature().Unit != "K" {
		t.Errorf("unexpected temperature: %+v", s.Temperature())
	}
	comps := s.Components()
	if len(comps) != 3 || comps[0].Name != "Cl_-" || comps[2].Name != "SO4_2-" {
		t.Errorf("unexpected components: %+v", comps)
	}

	axes := doc.Axes()
	if len(axes) != 1 || axes[0].Component != "SO4_2-" || len(axes[0].Values) != 3 {
		t.Errorf("unexpected axes: %+v", axes)
	}

	if doc.Outputs.Phase != "liquid1" || len(doc.Outputs.Properties) != 2 || len(doc.Outputs.Scalants) != 2 {
		t.Errorf("unexpected outputs: %+v", doc.Outputs)
	}
}

func TestLoad_MissingUnits(t *testing.T) {
	doc := `
temperature: {value: 298.15}
pressure: {value: 101325, unit: Pa}
`
	if _, err := Load(writeDoc(t, doc)); err == nil {
		t.Fatal("expected error for missing temperature unit")
	}
}

func TestLoad_ComponentWithoutName(t *testing.T) {
	doc := `
temperature: {value: 298.15, unit: K}
pressure: {value: 101325, unit: Pa}
components:
  - {value: 870, unit: mg/L}
`
	if _, err := Load(writeDoc(t, doc)); err == nil {
		t.Fatal("expected error for unnamed component")
	}
}

func TestLoad_PropertiesRequirePhase(t *testing.T) {
	doc := `
temperature: {value: 298.15, unit: K}
pressure: {value: 101325, unit: Pa}
outputs:
  properties: [ph]
`
	if _, err := Load(writeDoc(t, doc)); err == nil {
		t.Fatal("expected error for properties without phase")
	}
}

func TestLoad_DuplicateComponent(t *testing.T) {
	doc := `
temperature: {value: 298.15, unit: K}
pressure: {value: 101325, unit: Pa}
components:
  - {name: Na_+, value: 1, unit: mg/L}
  - {name: Na_+, value: 2, unit: mg/L}
`
	parsed, err := Load(writeDoc(t, doc))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := parsed.ToState(); err == nil {
		t.Fatal("expected error for duplicate component")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

// Package sample loads the YAML document describing a base water sample,
// its survey axes, and the outputs to extract.
package sample

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hydrolytics/olisurvey/internal/state"
	"github.com/hydrolytics/olisurvey/internal/survey"
)

// Quantity is one unit-tagged value in the document.
type Quantity struct {
	Name  string  `yaml:"name,omitempty"`
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit"`
}

// AxisSpec is one survey axis in the document.
type AxisSpec struct {
	Component string    `yaml:"component"`
	Values    []float64 `yaml:"values"`
}

// Outputs selects what to extract from the results.
type Outputs struct {
	Phase      string   `yaml:"phase"`
	Properties []string `yaml:"properties"`
	Scalants   []string `yaml:"scalants"`
}

// Document is a full survey description.
type Document struct {
	Temperature Quantity   `yaml:"temperature"`
	Pressure    Quantity   `yaml:"pressure"`
	Components  []Quantity `yaml:"components"`
	Survey      []AxisSpec `yaml:"survey"`
	Outputs     Outputs    `yaml:"outputs"`
}

// Load reads and validates a survey document.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sample: read %s: %w", path, err)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("sample: parse %s: %w", path, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document names every quantity it must.
func (d *Document) Validate() error {
	if d.Temperature.Unit == "" {
		return fmt.Errorf("sample: temperature unit is required")
	}
	if d.Pressure.Unit == "" {
		return fmt.Errorf("sample: pressure unit is required")
	}
	for i, comp := range d.Components {
		if comp.Name == "" {
			return fmt.Errorf("sample: component %d: name is required", i)
		}
		if comp.Unit == "" {
			return fmt.Errorf("sample: component %s: unit is required", comp.Name)
		}
	}
	for i, axis := range d.Survey {
		if axis.Component == "" {
			return fmt.Errorf("sample: survey axis %d: component is required", i)
		}
	}
	if len(d.Outputs.Properties) > 0 && d.Outputs.Phase == "" {
		return fmt.Errorf("sample: outputs.phase is required when properties are requested")
	}
	return nil
}

// ToState builds the base State from the document.
func (d *Document) ToState() (*state.State, error) {
	s, err := state.New(
		state.Variable{Name: d.Temperature.Name, Value: d.Temperature.Value, Unit: d.Temperature.Unit},
		state.Variable{Name: d.Pressure.Name, Value: d.Pressure.Value, Unit: d.Pressure.Unit},
	)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	for _, comp := range d.Components {
		v := state.Variable{Name: comp.Name, Value: comp.Value, Unit: comp.Unit}
		if err := s.AddComponent(v); err != nil {
			return nil, fmt.Errorf("sample: %w", err)
		}
	}
	return s, nil
}

// Axes returns the survey axes in declaration order.
func (d *Document) Axes() []survey.Axis {
	axes := make([]survey.Axis, 0, len(d.Survey))
	for _, spec := range d.Survey {
		axes = append(axes, survey.Axis{Component: spec.Component, Values: spec.Values})
	}
	return axes
}

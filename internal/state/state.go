// Package state models one water sample as a set of unit-tagged quantities:
// a temperature, a pressure, and an ordered collection of component
// concentrations. Values are treated as opaque numbers once tagged; unit
// conversion is the caller's responsibility and never happens here.
package state

import "fmt"

// Variable is a single named quantity with a unit tag.
type Variable struct {
	Name  string
	Value float64
	Unit  string
}

// State describes one water sample. Temperature and pressure are always
// present; component names are unique and keep insertion order.
type State struct {
	temperature Variable
	pressure    Variable
	components  []Variable
	index       map[string]int
}

// New creates a State with the given temperature and pressure.
func New(temperature, pressure Variable) (*State, error) {
	if temperature.Name == "" {
		temperature.Name = "Temperature"
	}
	if pressure.Name == "" {
		pressure.Name = "Pressure"
	}
	if temperature.Unit == "" {
		return nil, fmt.Errorf("state: temperature unit is required")
	}
	if pressure.Unit == "" {
		return nil, fmt.Errorf("state: pressure unit is required")
	}
	return &State{
		temperature: temperature,
		pressure:    pressure,
		index:       make(map[string]int),
	}, nil
}

// AddComponent appends a component concentration. Component names are unique.
func (s *State) AddComponent(v Variable) error {
	if v.Name == "" {
		return fmt.Errorf("state: component name is required")
	}
	if v.Unit == "" {
		return fmt.Errorf("state: component %s: unit is required", v.Name)
	}
	if _, exists := s.index[v.Name]; exists {
		return fmt.Errorf("state: duplicate component %s", v.Name)
	}
	s.index[v.Name] = len(s.components)
	s.components = append(s.components, v)
	return nil
}

// Temperature returns the temperature entry.
func (s *State) Temperature() Variable { return s.temperature }

// Pressure returns the pressure entry.
func (s *State) Pressure() Variable { return s.pressure }

// Component returns the named component and whether it exists.
func (s *State) Component(name string) (Variable, bool) {
	i, ok := s.index[name]
	if !ok {
		return Variable{}, false
	}
	return s.components[i], true
}

// Components returns the components in insertion order. The returned slice
// is a copy; mutating it does not affect the State.
func (s *State) Components() []Variable {
	out := make([]Variable, len(s.components))
	copy(out, s.components)
	return out
}

// SetComponentValue overwrites the value of an existing component, keeping
// its unit tag.
func (s *State) SetComponentValue(name string, value float64) error {
	i, ok := s.index[name]
	if !ok {
		return fmt.Errorf("state: unknown component %s", name)
	}
	s.components[i].Value = value
	return nil
}

// Clone returns a deep copy of the State.
func (s *State) Clone() *State {
	out := &State{
		temperature: s.temperature,
		pressure:    s.pressure,
		components:  make([]Variable, len(s.components)),
		index:       make(map[string]int, len(s.index)),
	}
	copy(out.components, s.components)
	for name, i := range s.index {
		out.index[name] = i
	}
	return out
}

// Equal reports whether two States carry identical entries in the same order.
func (s *State) Equal(other *State) bool {
	if other == nil {
		return false
	}
	if s.temperature != other.temperature || s.pressure != other.pressure {
		return false
	}
	if len(s.components) != len(other.components) {
		return false
	}
	for i, v := range s.components {
		if other.components[i] != v {
			return false
		}
	}
	return true
}

// Package result holds the raw nested output of one remote calculation and
// the extractor that flattens a batch of them into a reportable table.
package result

import (
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/tidwall/gjson"
)

// RawResult is the read-only nested property structure returned by the
// chemistry service for one survey point: phase → property → value, plus a
// scalant → tendency mapping.
type RawResult struct {
	phases  map[string]map[string]float64
	scaling map[string]float64
	raw     []byte
}

// New builds a RawResult from already-materialized mappings. The maps are
// copied so later caller mutation cannot leak in.
func New(phases map[string]map[string]float64, scaling map[string]float64) *RawResult {
	r := &RawResult{
		phases:  make(map[string]map[string]float64, len(phases)),
		scaling: make(map[string]float64, len(scaling)),
	}
	for phase, props := range phases {
		copied := make(map[string]float64, len(props))
		for name, v := range props {
			copied[name] = v
		}
		r.phases[phase] = copied
	}
	for name, v := range scaling {
		r.scaling[name] = v
	}
	return r
}

// Parse decodes a service response document. Phase properties live under
// result.phases.<phase>.properties and may be bare numbers or {value, unit}
// objects; scaling tendencies live under
// result.additionalProperties.prescalingTendencies.values.
func Parse(data []byte) (*RawResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("result: invalid JSON document")
	}

	r := &RawResult{
		phases:  make(map[string]map[string]float64),
		scaling: make(map[string]float64),
		raw:     append([]byte(nil), data...),
	}

	doc := gjson.GetBytes(data, "result")
	if !doc.Exists() {
		return nil, fmt.Errorf("result: document has no result object")
	}

	doc.Get("phases").ForEach(func(phase, body gjson.Result) bool {
		props := make(map[string]float64)
		body.Get("properties").ForEach(func(name, value gjson.Result) bool {
			if v, ok := numericValue(value); ok {
				props[name.String()] = v
			}
			return true
		})
		r.phases[phase.String()] = props
		return true
	})

	tendencies := doc.Get("additionalProperties.prescalingTendencies.values")
	if !tendencies.Exists() {
		tendencies = doc.Get("additionalProperties.scalingTendencies.values")
	}
	tendencies.ForEach(func(name, value gjson.Result) bool {
		if v, ok := numericValue(value); ok {
			r.scaling[name.String()] = v
		}
		return true
	})

	return r, nil
}

// numericValue accepts either a bare number or a {value, unit} object.
func numericValue(value gjson.Result) (float64, bool) {
	switch value.Type {
	case gjson.Number:
		return value.Float(), true
	case gjson.JSON:
		inner := value.Get("value")
		if inner.Type == gjson.Number {
			return inner.Float(), true
		}
	}
	return 0, false
}

// HasPhase reports whether the result contains the named phase.
func (r *RawResult) HasPhase(phase string) bool {
	_, ok := r.phases[phase]
	return ok
}

// Property returns the value of a property within a phase.
func (r *RawResult) Property(phase, property string) (float64, bool) {
	props, ok := r.phases[phase]
	if !ok {
		return 0, false
	}
	v, ok := props[property]
	return v, ok
}

// ScalingTendency returns the tendency recorded for a scalant.
func (r *RawResult) ScalingTendency(scalant string) (float64, bool) {
	v, ok := r.scaling[scalant]
	return v, ok
}

// Lookup evaluates a JSONPath expression (e.g.
// "$.result.phases.liquid1.properties.ph.value") against the raw document.
// It is only available for results built with Parse.
func (r *RawResult) Lookup(path string) (any, error) {
	if len(r.raw) == 0 {
		return nil, fmt.Errorf("result: no raw document to query")
	}
	var doc any
	if err := json.Unmarshal(r.raw, &doc); err != nil {
		return nil, fmt.Errorf("result: decode raw document: %w", err)
	}
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, fmt.Errorf("result: lookup %s: %w", path, err)
	}
	return v, nil
}

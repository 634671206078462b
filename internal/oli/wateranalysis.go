package oli

import (
	"strings"

	"github.com/hydrolytics/olisurvey/internal/state"
)

// AnalysisOptions configures one water-analysis calculation. It is passed
// explicitly per call; there is no long-lived mutable toggle object.
type AnalysisOptions struct {
	// ReconciliationType defaults to EquilCalcOnly.
	ReconciliationType string
	// BalanceType defaults to DominantIon.
	BalanceType string
	// OptionalProperties requests extra output blocks (e.g.
	// prescalingTendencies) by name.
	OptionalProperties []string
}

// InputRow is one named quantity in a water-analysis input.
type InputRow struct {
	Group string  `json:"group"`
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

// WaterAnalysisInput is the request payload for a water-analysis flash call.
type WaterAnalysisInput struct {
	Params WaterAnalysisParams `json:"params"`
}

// WaterAnalysisParams carries the input rows plus reconciliation settings.
type WaterAnalysisParams struct {
	WaterAnalysisInputs          []InputRow      `json:"waterAnalysisInputs"`
	ReconciliationType           string          `json:"reconciliationType"`
	ElectroNeutralityBalanceType string          `json:"electroNeutralityBalanceType"`
	OptionalProperties           map[string]bool `json:"optionalProperties,omitempty"`
}

// BuildWaterAnalysisInput converts a sample State into the calculation
// payload: temperature and pressure in the Properties group, one row per
// component in declaration order. Values are passed through untouched with
// their unit tags; no conversion happens here.
func BuildWaterAnalysisInput(s *state.State, opts AnalysisOptions) WaterAnalysisInput {
	reconciliation := opts.ReconciliationType
	if reconciliation == "" {
		reconciliation = "EquilCalcOnly"
	}
	balance := opts.BalanceType
	if balance == "" {
		balance = "DominantIon"
	}

	temp := s.Temperature()
	pres := s.Pressure()
	rows := []InputRow{
		{Group: "Properties", Name: temp.Name, Unit: temp.Unit, Value: temp.Value},
		{Group: "Properties", Name: pres.Name, Unit: pres.Unit, Value: pres.Value},
	}
	for _, comp := range s.Components() {
		rows = append(rows, InputRow{
			Group: ionGroup(comp.Name),
			Name:  comp.Name,
			Unit:  comp.Unit,
			Value: comp.Value,
		})
	}

	var optional map[string]bool
	if len(opts.OptionalProperties) > 0 {
		optional = make(map[string]bool, len(opts.OptionalProperties))
		for _, name := range opts.OptionalProperties {
			optional[name] = true
		}
	}

	return WaterAnalysisInput{
		Params: WaterAnalysisParams{
			WaterAnalysisInputs:          rows,
			ReconciliationType:           reconciliation,
			ElectroNeutralityBalanceType: balance,
			OptionalProperties:           optional,
		},
	}
}

// ionGroup classifies a component by the charge suffix of its tag name
// (Na_+, SO4_2-, ...). Untagged species are neutral.
func ionGroup(name string) string {
	if strings.HasSuffix(name, "+") {
		return "Cations"
	}
	if strings.HasSuffix(name, "-") {
		return "Anions"
	}
	return "Neutrals"
}

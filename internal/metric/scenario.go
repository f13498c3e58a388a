package metric

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// ErrUnknownScenario is returned for a scenario name outside the menu
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario is one entry of the fixed projection menu
type Scenario string

// Scenario names, as shown on the projections page
const (
	Optimistic  Scenario = "Optimistic"
	Base        Scenario = "Base"
	Pessimistic Scenario = "Pessimistic"
)

// DefaultTarget is the account ownership goal, in percent
const DefaultTarget = 60.0

var multipliers = map[Scenario]float64{
	Optimistic:  1.15,
	Base:        1.0,
	Pessimistic: 0.85,
}

// Scenarios returns the menu from most to least favourable
func Scenarios() []Scenario {
	return []Scenario{Optimistic, Base, Pessimistic}
}

// Multiplier returns the factor applied to base forecasts, or zero for a
// scenario outside the menu
func (s Scenario) Multiplier() float64 {
	return multipliers[s]
}

// ParseScenario matches name against the menu, ignoring case
func ParseScenario(name string) (Scenario, error) {
	for _, s := range Scenarios() {
		if strings.EqualFold(strings.TrimSpace(name), string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of Optimistic, Base, Pessimistic)", ErrUnknownScenario, name)
}

// ProjectScenario scales each base forecast value by the scenario multiplier
func ProjectScenario(base []model.YearValue, s Scenario) ([]model.YearValue, error) {
	m, ok := multipliers[s]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScenario, string(s))
	}
	out := make([]model.YearValue, len(base))
	for i, p := range base {
		out[i] = model.YearValue{Year: p.Year, Value: p.Value * m}
	}
	return out, nil
}

// TargetGap returns the last projected value minus target. A positive gap
// means the target is exceeded. ok is false when nothing is projected.
func TargetGap(projected []model.YearValue, target float64) (float64, bool) {
	if len(projected) == 0 {
		return 0, false
	}
	return projected[len(projected)-1].Value - target, true
}

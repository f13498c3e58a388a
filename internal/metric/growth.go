// Package metric derives growth figures, linear trends and scenario
// projections from indicator series.
package metric

import (
	"fmt"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// LatestAndGrowth summarizes a date-sorted series. The latest value is the
// last row's value; growth compares it with the row before. A single row
// has a defined growth of zero. ok is false for an empty series.
func LatestAndGrowth(sorted []model.Observation) (summary model.LatestSummary, ok bool) {
	if len(sorted) == 0 {
		return model.LatestSummary{}, false
	}

	last := sorted[len(sorted)-1]
	summary.LatestDate = last.ObservationDate
	if last.Value != nil {
		summary.Latest = *last.Value
	}

	if len(sorted) == 1 {
		summary.GrowthDefined = last.Value != nil
		return summary, true
	}

	prev := sorted[len(sorted)-2]
	if prev.Value != nil {
		summary.Previous = *prev.Value
		summary.HasPrevious = true
	}
	summary.GrowthRate, summary.GrowthDefined = growthRate(prev.Value, last.Value)
	return summary, true
}

// growthRate is the percent change from prev to curr. It is undefined on a
// null value or a zero baseline; negative baselines use the formula as is.
func growthRate(prev, curr *float64) (float64, bool) {
	if prev == nil || curr == nil || *prev == 0 {
		return 0, false
	}
	return (*curr - *prev) / *prev * 100, true
}

// PeriodChanges returns the change in percentage points between each pair
// of consecutive dated, valued rows of a date-sorted series
func PeriodChanges(sorted []model.Observation) []model.PeriodChange {
	var changes []model.PeriodChange
	var prev *model.Observation
	for i := range sorted {
		o := &sorted[i]
		if !o.ObservationDate.Valid || o.Value == nil {
			continue
		}
		if prev != nil {
			changes = append(changes, model.PeriodChange{
				Period:   fmt.Sprintf("%d-%d", prev.ObservationDate.Time.Year(), o.ObservationDate.Time.Year()),
				ChangePP: *o.Value - *prev.Value,
				Previous: *prev.Value,
				Current:  *o.Value,
			})
		}
		prev = o
	}
	return changes
}

// Points turns dated, valued observations into (year, value) pairs in input
// order. Several observations in one year are all kept.
func Points(observations []model.Observation) []model.YearValue {
	var points []model.YearValue
	for _, o := range observations {
		year, ok := o.Year()
		if !ok || o.Value == nil {
			continue
		}
		points = append(points, model.YearValue{Year: year, Value: *o.Value})
	}
	return points
}

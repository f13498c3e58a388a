package view

import (
	"sort"
	"strings"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// MatchMode decides how Query.Label is compared with an observation's indicator
type MatchMode int

const (
	// MatchExact requires indicator == Label
	MatchExact MatchMode = iota
	// MatchContains requires indicator to contain Label, case-insensitively
	MatchContains
)

// Query selects observations. A row matches when any set predicate holds;
// empty fields are ignored.
type Query struct {
	Name   string    // display name
	Code   string    // case-insensitive substring of indicator_code
	Label  string    // compared with indicator according to Mode
	Mode   MatchMode // per call site, never inferred
	Pillar string    // exact pillar match
}

// Queries used by the overview, trends and forecast pages
var (
	AccountOwnership = Query{Name: "Account Ownership", Code: "ACC_OWNERSHIP", Label: "Account Ownership Rate", Mode: MatchExact}
	MobileMoney      = Query{Name: "Mobile Money Accounts", Code: "MM_ACCOUNT", Label: "mobile money", Mode: MatchContains}
	DigitalUsage     = Query{Name: "Digital Payment Usage", Code: "USG_DIGITAL", Pillar: string(model.PillarUsage)}
)

// ForCode returns a query matching a single indicator code
func ForCode(code string) Query {
	return Query{Name: code, Code: code}
}

// Matches reports whether o satisfies the query
func (q Query) Matches(o model.Observation) bool {
	if q.Code != "" && o.IndicatorCode != "" &&
		strings.Contains(strings.ToLower(o.IndicatorCode), strings.ToLower(q.Code)) {
		return true
	}
	if q.Label != "" && o.Indicator != "" {
		switch q.Mode {
		case MatchExact:
			if o.Indicator == q.Label {
				return true
			}
		case MatchContains:
			if strings.Contains(strings.ToLower(o.Indicator), strings.ToLower(q.Label)) {
				return true
			}
		}
	}
	return q.Pillar != "" && string(o.Pillar) == q.Pillar
}

// MatchIndicator returns the observations matching q, in input order
func MatchIndicator(observations []model.Observation, q Query) []model.Observation {
	var out []model.Observation
	for _, o := range observations {
		if q.Matches(o) {
			out = append(out, o)
		}
	}
	return out
}

// SortByDate returns a copy sorted by observation date, ascending. Equal
// dates keep input order; null dates go last.
func SortByDate(observations []model.Observation) []model.Observation {
	out := append([]model.Observation(nil), observations...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ObservationDate.Before(out[j].ObservationDate)
	})
	return out
}

// IndicatorCodes returns the distinct non-empty indicator codes, sorted
func IndicatorCodes(observations []model.Observation) []string {
	seen := make(map[string]bool)
	var codes []string
	for _, o := range observations {
		if o.IndicatorCode != "" && !seen[o.IndicatorCode] {
			seen[o.IndicatorCode] = true
			codes = append(codes, o.IndicatorCode)
		}
	}
	sort.Strings(codes)
	return codes
}

// DateRange returns the earliest and latest valid observation dates.
// ok is false when no observation has a date.
func DateRange(observations []model.Observation) (from, to model.Date, ok bool) {
	for _, o := range observations {
		d := o.ObservationDate
		if !d.Valid {
			continue
		}
		if !ok || d.Time.Before(from.Time) {
			from = d
		}
		if !ok || d.Time.After(to.Time) {
			to = d
		}
		ok = true
	}
	return from, to, ok
}

// WithinRange keeps observations dated within [from, to]. An invalid bound
// is open. Undated observations are dropped when either bound is set.
func WithinRange(observations []model.Observation, from, to model.Date) []model.Observation {
	if !from.Valid && !to.Valid {
		return append([]model.Observation(nil), observations...)
	}
	var out []model.Observation
	for _, o := range observations {
		d := o.ObservationDate
		if !d.Valid {
			continue
		}
		if from.Valid && d.Time.Before(from.Time) {
			continue
		}
		if to.Valid && d.Time.After(to.Time) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// Package validate checks record enums at the derivation boundary.
package validate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// ValidationError reports one field holding a value outside its enum
type ValidationError struct {
	RecordID string
	Field    string
	Value    string
	Allowed  []string
}

func (e *ValidationError) Error() string {
	id := e.RecordID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("record %s: %s %q not in [%s]", id, e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// Policy decides what happens to rows that fail validation. Strict fails
// the whole derivation; otherwise invalid rows are dropped and reported.
type Policy struct {
	Strict bool
}

// Validator checks observations and impact links against closed enums
type Validator struct {
	policy     Policy
	pillars    *enum
	confidence *enum
	directions *enum
}

// enum is a case-insensitive set that remembers its display order
type enum struct {
	allowed []string
	set     map[string]bool
}

func newEnum(values []string) *enum {
	e := &enum{set: make(map[string]bool, len(values))}
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || e.set[key] {
			continue
		}
		e.set[key] = true
		e.allowed = append(e.allowed, v)
	}
	return e
}

// admits reports whether v is allowed. Null values are absent and pass.
func (e *enum) admits(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || e.set[strings.ToLower(v)]
}

// New builds a validator from configuration. An empty enum list falls back
// to the default values for that field.
func New(cfg model.ValidationConfig) *Validator {
	def := model.DefaultConfig().Validation
	pick := func(values, fallback []string) []string {
		if len(values) == 0 {
			return fallback
		}
		return values
	}

	return &Validator{
		policy:     Policy{Strict: cfg.Strict},
		pillars:    newEnum(pick(cfg.Pillars, def.Pillars)),
		confidence: newEnum(pick(cfg.Confidence, def.Confidence)),
		directions: newEnum(pick(cfg.Directions, def.Directions)),
	}
}

// CheckObservation returns every enum violation of o
func (v *Validator) CheckObservation(o model.Observation) []*ValidationError {
	var errs []*ValidationError
	errs = v.check(errs, o.RecordID, model.ColPillar, string(o.Pillar), v.pillars)
	errs = v.check(errs, o.RecordID, model.ColConfidence, o.Confidence, v.confidence)
	return errs
}

// CheckImpactLink returns every enum violation of l, including a negative lag
func (v *Validator) CheckImpactLink(l model.ImpactLink) []*ValidationError {
	var errs []*ValidationError
	errs = v.check(errs, l.RecordID, model.ColPillar, string(l.Pillar), v.pillars)
	errs = v.check(errs, l.RecordID, model.ColConfidence, l.Confidence, v.confidence)
	errs = v.check(errs, l.RecordID, model.ColImpactDirection, l.ImpactDirection, v.directions)
	if l.LagMonths != nil && *l.LagMonths < 0 {
		errs = append(errs, &ValidationError{
			RecordID: l.RecordID,
			Field:    model.ColLagMonths,
			Value:    fmt.Sprint(*l.LagMonths),
			Allowed:  []string{">= 0"},
		})
	}
	return errs
}

func (v *Validator) check(errs []*ValidationError, id, field, value string, e *enum) []*ValidationError {
	if e.admits(value) {
		return errs
	}
	return append(errs, &ValidationError{RecordID: id, Field: field, Value: value, Allowed: e.allowed})
}

// Observations validates the subset about to be derived from. Under a
// strict policy any violation returns a joined error and no rows; otherwise
// the valid rows are returned along with the violations of the dropped ones.
func (v *Validator) Observations(obs []model.Observation) ([]model.Observation, []*ValidationError, error) {
	return filter(obs, v.CheckObservation, v.policy)
}

// ImpactLinks is Observations for impact links
func (v *Validator) ImpactLinks(links []model.ImpactLink) ([]model.ImpactLink, []*ValidationError, error) {
	return filter(links, v.CheckImpactLink, v.policy)
}

func filter[T any](rows []T, check func(T) []*ValidationError, p Policy) ([]T, []*ValidationError, error) {
	var kept []T
	var all []*ValidationError
	for _, r := range rows {
		errs := check(r)
		if len(errs) == 0 {
			kept = append(kept, r)
			continue
		}
		all = append(all, errs...)
	}

	if p.Strict && len(all) > 0 {
		return nil, all, Join(all)
	}
	return kept, all, nil
}

// Join combines violations into one error, or nil when there are none
func Join(errs []*ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i, e := range errs {
		joined[i] = e
	}
	return errors.Join(joined...)
}

// Fields lists the distinct fields with violations, sorted
func Fields(errs []*ValidationError) []string {
	seen := make(map[string]bool)
	var fields []string
	for _, e := range errs {
		if !seen[e.Field] {
			seen[e.Field] = true
			fields = append(fields, e.Field)
		}
	}
	sort.Strings(fields)
	return fields
}

// Violations collects the validation errors wrapped in err, including those
// combined by Join. It returns nil when err holds none.
func Violations(err error) []*ValidationError {
	var out []*ValidationError
	var walk func(error)
	walk = func(e error) {
		if ve, ok := e.(*ValidationError); ok {
			out = append(out, ve)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			if inner := u.Unwrap(); inner != nil {
				walk(inner)
			}
		}
	}
	if err != nil {
		walk(err)
	}
	return out
}

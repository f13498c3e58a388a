// Package builder constructs schema-conformant records with the unified
// schema's defaults. Enum-like fields are accepted as given.
package builder

import (
	"time"

	"github.com/google/uuid"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// Defaults applied when an option is not given
const (
	DefaultConfidence  = model.ConfidenceMedium
	DefaultCollectedBy = "Data Team"
)

// Builder creates records. The zero value is not usable; call New.
type Builder struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Builder
type Option func(*Builder)

// WithClock replaces the clock used for default collection dates
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithIDGenerator replaces the record id generator
func WithIDGenerator(gen func() string) Option {
	return func(b *Builder) { b.newID = gen }
}

// New creates a builder using the wall clock and random UUIDs
func New(opts ...Option) *Builder {
	b := &Builder{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RecordOption sets one of the optional provenance fields
type RecordOption func(*model.Provenance)

// WithConfidence sets the confidence level (default "medium")
func WithConfidence(c string) RecordOption {
	return func(p *model.Provenance) { p.Confidence = c }
}

// WithOriginalText sets the quoted source figure
func WithOriginalText(s string) RecordOption {
	return func(p *model.Provenance) { p.OriginalText = s }
}

// WithNotes sets free-text notes
func WithNotes(s string) RecordOption {
	return func(p *model.Provenance) { p.Notes = s }
}

// WithCollectedBy sets who collected the record (default "Data Team")
func WithCollectedBy(s string) RecordOption {
	return func(p *model.Provenance) { p.CollectedBy = s }
}

// WithCollectionDate sets the collection date (default today)
func WithCollectionDate(d model.Date) RecordOption {
	return func(p *model.Provenance) { p.CollectionDate = d }
}

// WithRecordID sets the record identity (default a new UUID)
func WithRecordID(id string) RecordOption {
	return func(p *model.Provenance) { p.RecordID = id }
}

// Source names where a record came from
type Source struct {
	Name string
	URL  string
}

// ObservationFields are the required inputs of an observation
type ObservationFields struct {
	Pillar          model.Pillar
	Indicator       string
	IndicatorCode   string
	Value           float64
	ObservationDate model.Date
	Source          Source
}

// EventFields are the required inputs of an event
type EventFields struct {
	Category    string
	EventDate   model.Date
	EventName   string
	Description string
	Source      Source
}

// ImpactLinkFields are the required inputs of an impact link
type ImpactLinkFields struct {
	ParentID         string
	Pillar           model.Pillar
	RelatedIndicator string
	ImpactDirection  string
	ImpactMagnitude  float64
	LagMonths        int
	EvidenceBasis    string
	Source           Source
}

// Observation builds an observation record
func (b *Builder) Observation(f ObservationFields, opts ...RecordOption) model.Observation {
	return model.Observation{
		Provenance:      b.provenance(f.Source, opts),
		Pillar:          f.Pillar,
		Indicator:       f.Indicator,
		IndicatorCode:   f.IndicatorCode,
		Value:           model.Float(f.Value),
		ObservationDate: f.ObservationDate,
	}
}

// Event builds an event record. Events carry no pillar.
func (b *Builder) Event(f EventFields, opts ...RecordOption) model.Event {
	return model.Event{
		Provenance:  b.provenance(f.Source, opts),
		Category:    f.Category,
		EventDate:   f.EventDate,
		EventName:   f.EventName,
		Description: f.Description,
	}
}

// ImpactLink builds an impact link record. ParentID is not checked.
func (b *Builder) ImpactLink(f ImpactLinkFields, opts ...RecordOption) model.ImpactLink {
	return model.ImpactLink{
		Provenance:       b.provenance(f.Source, opts),
		ParentID:         f.ParentID,
		Pillar:           f.Pillar,
		RelatedIndicator: f.RelatedIndicator,
		ImpactDirection:  f.ImpactDirection,
		ImpactMagnitude:  model.Float(f.ImpactMagnitude),
		LagMonths:        model.Int(f.LagMonths),
		EvidenceBasis:    f.EvidenceBasis,
	}
}

func (b *Builder) provenance(src Source, opts []RecordOption) model.Provenance {
	p := model.Provenance{
		SourceName:  src.Name,
		SourceURL:   src.URL,
		Confidence:  DefaultConfidence,
		CollectedBy: DefaultCollectedBy,
	}
	for _, opt := range opts {
		opt(&p)
	}
	if !p.CollectionDate.Valid {
		p.CollectionDate = model.NewDate(b.now())
	}
	if p.RecordID == "" {
		p.RecordID = b.newID()
	}
	return p
}

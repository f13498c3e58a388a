package model

// Kind is the record_type discriminant of the unified table
type Kind string

const (
	KindObservation Kind = "observation"
	KindEvent       Kind = "event"
	KindImpactLink  Kind = "impact_link"
)

// Pillar is a financial-inclusion dimension. Free-form on ingestion;
// checked against the configured enum at derivation time.
type Pillar string

const (
	PillarAccess Pillar = "access" // having an account
	PillarUsage  Pillar = "usage"  // actively transacting
)

// Confidence levels carried by every record
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Impact directions of an impact link
const (
	DirectionPositive = "positive"
	DirectionNegative = "negative"
)

// Record is one row of the unified table. It is implemented by
// Observation, Event and ImpactLink only.
type Record interface {
	Kind() Kind
	Meta() Provenance
}

// Provenance holds the fields shared by every record kind
type Provenance struct {
	RecordID       string `json:"record_id,omitempty"`
	SourceName     string `json:"source_name,omitempty"`
	SourceURL      string `json:"source_url,omitempty"`
	Confidence     string `json:"confidence,omitempty"`
	OriginalText   string `json:"original_text,omitempty"`
	Notes          string `json:"notes,omitempty"`
	CollectedBy    string `json:"collected_by,omitempty"`
	CollectionDate Date   `json:"collection_date"`
}

// Observation is a measured value of one indicator at one date
type Observation struct {
	Provenance
	Pillar          Pillar   `json:"pillar,omitempty"`
	Indicator       string   `json:"indicator,omitempty"`
	IndicatorCode   string   `json:"indicator_code,omitempty"`
	Value           *float64 `json:"value_numeric,omitempty"` // nil when the cell is null or unparsable
	ObservationDate Date     `json:"observation_date"`
}

// Event is a contextual happening (policy, product launch, ...).
// Events are not pillar-scoped.
type Event struct {
	Provenance
	Category    string `json:"category,omitempty"`
	EventDate   Date   `json:"event_date"`
	EventName   string `json:"event_name,omitempty"`
	Description string `json:"description,omitempty"`
}

// ImpactLink asserts that an event moves an indicator.
// ParentID is a soft reference to an event's RecordID and is never checked.
type ImpactLink struct {
	Provenance
	ParentID         string   `json:"parent_id,omitempty"`
	Pillar           Pillar   `json:"pillar,omitempty"`
	RelatedIndicator string   `json:"related_indicator,omitempty"`
	ImpactDirection  string   `json:"impact_direction,omitempty"`
	ImpactMagnitude  *float64 `json:"impact_magnitude,omitempty"` // unit is per-record: percentage points or multiplier
	LagMonths        *int     `json:"lag_months,omitempty"`
	EvidenceBasis    string   `json:"evidence_basis,omitempty"`
}

func (Observation) Kind() Kind { return KindObservation }
func (Event) Kind() Kind       { return KindEvent }
func (ImpactLink) Kind() Kind  { return KindImpactLink }

func (o Observation) Meta() Provenance { return o.Provenance }
func (e Event) Meta() Provenance       { return e.Provenance }
func (l ImpactLink) Meta() Provenance  { return l.Provenance }

// Year returns the observation year, false when the date is the null sentinel
func (o Observation) Year() (int, bool) {
	if !o.ObservationDate.Valid {
		return 0, false
	}
	return o.ObservationDate.Time.Year(), true
}

// Float returns a pointer to v, for building nullable numeric fields
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v
func Int(v int) *int {
	return &v
}

package builder

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// Batch is the YAML authoring format for new records
type Batch struct {
	Observations []ObservationEntry `yaml:"observations"`
	Events       []EventEntry       `yaml:"events"`
	ImpactLinks  []ImpactLinkEntry  `yaml:"impact_links"`
}

// CommonEntry holds the optional provenance fields of a batch entry
type CommonEntry struct {
	RecordID       string `yaml:"record_id"`
	SourceName     string `yaml:"source_name"`
	SourceURL      string `yaml:"source_url"`
	Confidence     string `yaml:"confidence"`
	OriginalText   string `yaml:"original_text"`
	Notes          string `yaml:"notes"`
	CollectedBy    string `yaml:"collected_by"`
	CollectionDate string `yaml:"collection_date"`
}

// ObservationEntry is an observation as written in a batch file
type ObservationEntry struct {
	CommonEntry     `yaml:",inline"`
	Pillar          string  `yaml:"pillar"`
	Indicator       string  `yaml:"indicator"`
	IndicatorCode   string  `yaml:"indicator_code"`
	ValueNumeric    float64 `yaml:"value_numeric"`
	ObservationDate string  `yaml:"observation_date"`
}

// EventEntry is an event as written in a batch file
type EventEntry struct {
	CommonEntry `yaml:",inline"`
	Category    string `yaml:"category"`
	EventDate   string `yaml:"event_date"`
	EventName   string `yaml:"event_name"`
	Description string `yaml:"description"`
}

// ImpactLinkEntry is an impact link as written in a batch file
type ImpactLinkEntry struct {
	CommonEntry      `yaml:",inline"`
	ParentID         string  `yaml:"parent_id"`
	Pillar           string  `yaml:"pillar"`
	RelatedIndicator string  `yaml:"related_indicator"`
	ImpactDirection  string  `yaml:"impact_direction"`
	ImpactMagnitude  float64 `yaml:"impact_magnitude"`
	LagMonths        int     `yaml:"lag_months"`
	EvidenceBasis    string  `yaml:"evidence_basis"`
}

// ParseBatch decodes a batch document
func ParseBatch(r io.Reader) (*Batch, error) {
	var b Batch
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		if err == io.EOF {
			return &b, nil
		}
		return nil, fmt.Errorf("decode batch: %w", err)
	}
	return &b, nil
}

// ReadBatchFile decodes the batch file at path
func ReadBatchFile(path string) (*Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open batch: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ParseBatch(f)
}

// Len returns the number of entries in the batch
func (b *Batch) Len() int {
	return len(b.Observations) + len(b.Events) + len(b.ImpactLinks)
}

// Records builds the batch's records: observations, then events, then impact links
func (b *Batch) Records(bld *Builder) ([]model.Record, error) {
	records := make([]model.Record, 0, b.Len())

	for i, e := range b.Observations {
		date, err := model.ParseStrictDate(e.ObservationDate)
		if err != nil {
			return nil, fmt.Errorf("observations[%d]: observation_date %q: %w", i, e.ObservationDate, err)
		}
		opts, err := e.options()
		if err != nil {
			return nil, fmt.Errorf("observations[%d]: %w", i, err)
		}
		records = append(records, bld.Observation(ObservationFields{
			Pillar:          model.Pillar(e.Pillar),
			Indicator:       e.Indicator,
			IndicatorCode:   e.IndicatorCode,
			Value:           e.ValueNumeric,
			ObservationDate: date,
			Source:          Source{Name: e.SourceName, URL: e.SourceURL},
		}, opts...))
	}

	for i, e := range b.Events {
		date, err := model.ParseStrictDate(e.EventDate)
		if err != nil {
			return nil, fmt.Errorf("events[%d]: event_date %q: %w", i, e.EventDate, err)
		}
		opts, err := e.options()
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		records = append(records, bld.Event(EventFields{
			Category:    e.Category,
			EventDate:   date,
			EventName:   e.EventName,
			Description: e.Description,
			Source:      Source{Name: e.SourceName, URL: e.SourceURL},
		}, opts...))
	}

	for i, e := range b.ImpactLinks {
		opts, err := e.options()
		if err != nil {
			return nil, fmt.Errorf("impact_links[%d]: %w", i, err)
		}
		records = append(records, bld.ImpactLink(ImpactLinkFields{
			ParentID:         e.ParentID,
			Pillar:           model.Pillar(e.Pillar),
			RelatedIndicator: e.RelatedIndicator,
			ImpactDirection:  e.ImpactDirection,
			ImpactMagnitude:  e.ImpactMagnitude,
			LagMonths:        e.LagMonths,
			EvidenceBasis:    e.EvidenceBasis,
			Source:           Source{Name: e.SourceName, URL: e.SourceURL},
		}, opts...))
	}

	return records, nil
}

// options maps the provided optional fields onto record options; omitted
// fields keep the builder defaults
func (c CommonEntry) options() ([]RecordOption, error) {
	var opts []RecordOption
	if c.RecordID != "" {
		opts = append(opts, WithRecordID(c.RecordID))
	}
	if c.Confidence != "" {
		opts = append(opts, WithConfidence(c.Confidence))
	}
	if c.OriginalText != "" {
		opts = append(opts, WithOriginalText(c.OriginalText))
	}
	if c.Notes != "" {
		opts = append(opts, WithNotes(c.Notes))
	}
	if c.CollectedBy != "" {
		opts = append(opts, WithCollectedBy(c.CollectedBy))
	}
	if c.CollectionDate != "" {
		d, err := model.ParseStrictDate(c.CollectionDate)
		if err != nil {
			return nil, fmt.Errorf("collection_date %q: %w", c.CollectionDate, err)
		}
		opts = append(opts, WithCollectionDate(d))
	}
	return opts, nil
}

package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// Decoded is the typed content of a unified table
type Decoded struct {
	Records      []model.Record
	Issues       []*CellError // unparsable cells, each read as null
	Unrecognized []int        // rows whose record_type is none of the three kinds
}

// IsDateColumn reports whether a column holds dates: its name contains
// "date", case-insensitively
func IsDateColumn(name string) bool {
	return strings.Contains(strings.ToLower(name), "date")
}

// Encode flattens a record into a row of the unified schema. Fields that
// do not apply to the record's kind are absent (null).
func Encode(r model.Record) model.Row {
	row := model.Row{model.ColRecordType: model.Text(string(r.Kind()))}
	encodeProvenance(row, r.Meta())

	switch rec := r.(type) {
	case model.Observation:
		row[model.ColPillar] = text(string(rec.Pillar))
		row[model.ColIndicator] = text(rec.Indicator)
		row[model.ColIndicatorCode] = text(rec.IndicatorCode)
		row[model.ColValueNumeric] = number(rec.Value)
		row[model.ColObservationDate] = text(rec.ObservationDate.String())
	case model.Event:
		row[model.ColPillar] = model.Null
		row[model.ColCategory] = text(rec.Category)
		row[model.ColEventDate] = text(rec.EventDate.String())
		row[model.ColEventName] = text(rec.EventName)
		row[model.ColDescription] = text(rec.Description)
	case model.ImpactLink:
		row[model.ColParentID] = text(rec.ParentID)
		row[model.ColPillar] = text(string(rec.Pillar))
		row[model.ColRelatedIndicator] = text(rec.RelatedIndicator)
		row[model.ColImpactDirection] = text(rec.ImpactDirection)
		row[model.ColImpactMagnitude] = number(rec.ImpactMagnitude)
		row[model.ColLagMonths] = integer(rec.LagMonths)
		row[model.ColEvidenceBasis] = text(rec.EvidenceBasis)
	}
	return row
}

// EncodeAll flattens records in order
func EncodeAll(records []model.Record) []model.Row {
	rows := make([]model.Row, len(records))
	for i, r := range records {
		rows[i] = Encode(r)
	}
	return rows
}

// Decode reads every row of t into its typed record. This is the only place
// the record_type string is inspected.
func Decode(t *model.Table) Decoded {
	var out Decoded
	dateCols := dateColumns(t.Columns())

	for i := 0; i < t.Len(); i++ {
		d := rowDecoder{table: t, row: i}

		switch model.Kind(t.Cell(i, model.ColRecordType).Str) {
		case model.KindObservation:
			// every date-like column of an observation is coerced; bad cells are reported
			for _, c := range dateCols {
				d.date(c)
			}
			out.Records = append(out.Records, model.Observation{
				Provenance:      d.provenance(),
				Pillar:          model.Pillar(d.str(model.ColPillar)),
				Indicator:       d.str(model.ColIndicator),
				IndicatorCode:   d.str(model.ColIndicatorCode),
				Value:           d.floatValue(model.ColValueNumeric),
				ObservationDate: d.date(model.ColObservationDate),
			})
		case model.KindEvent:
			out.Records = append(out.Records, model.Event{
				Provenance:  d.provenance(),
				Category:    d.str(model.ColCategory),
				EventDate:   d.date(model.ColEventDate),
				EventName:   d.str(model.ColEventName),
				Description: d.str(model.ColDescription),
			})
		case model.KindImpactLink:
			out.Records = append(out.Records, model.ImpactLink{
				Provenance:       d.provenance(),
				ParentID:         d.str(model.ColParentID),
				Pillar:           model.Pillar(d.str(model.ColPillar)),
				RelatedIndicator: d.str(model.ColRelatedIndicator),
				ImpactDirection:  d.str(model.ColImpactDirection),
				ImpactMagnitude:  d.floatValue(model.ColImpactMagnitude),
				LagMonths:        d.intValue(model.ColLagMonths),
				EvidenceBasis:    d.str(model.ColEvidenceBasis),
			})
		default:
			out.Unrecognized = append(out.Unrecognized, i)
			continue
		}
		out.Issues = append(out.Issues, d.issues()...)
	}

	return out
}

func encodeProvenance(row model.Row, p model.Provenance) {
	row[model.ColRecordID] = text(p.RecordID)
	row[model.ColSourceName] = text(p.SourceName)
	row[model.ColSourceURL] = text(p.SourceURL)
	row[model.ColConfidence] = text(p.Confidence)
	row[model.ColOriginalText] = text(p.OriginalText)
	row[model.ColNotes] = text(p.Notes)
	row[model.ColCollectedBy] = text(p.CollectedBy)
	row[model.ColCollectionDate] = text(p.CollectionDate.String())
}

// text maps the empty string to null, as a flat file cannot tell them apart
func text(s string) model.Cell {
	if s == "" {
		return model.Null
	}
	return model.Text(s)
}

func number(v *float64) model.Cell {
	if v == nil {
		return model.Null
	}
	return model.Text(strconv.FormatFloat(*v, 'f', -1, 64))
}

func integer(v *int) model.Cell {
	if v == nil {
		return model.Null
	}
	return model.Text(strconv.Itoa(*v))
}

func dateColumns(columns []string) []string {
	var out []string
	for _, c := range columns {
		if IsDateColumn(c) {
			out = append(out, c)
		}
	}
	return out
}

// rowDecoder reads typed cells from one row and collects per-cell problems.
// Each column is parsed at most once.
type rowDecoder struct {
	table  *model.Table
	row    int
	dates  map[string]model.Date
	errs   []*CellError
	failed map[string]bool
}

func (d *rowDecoder) str(col string) string {
	return d.table.Cell(d.row, col).Str
}

func (d *rowDecoder) fail(col, value string, err error) {
	if d.failed == nil {
		d.failed = make(map[string]bool)
	}
	if d.failed[col] {
		return
	}
	d.failed[col] = true
	d.errs = append(d.errs, &CellError{Row: d.row, Column: col, Value: value, Err: err})
}

func (d *rowDecoder) date(col string) model.Date {
	if v, ok := d.dates[col]; ok {
		return v
	}
	raw := d.str(col)
	v, ok := model.ParseDate(raw)
	if !ok {
		d.fail(col, raw, ErrUnparsableDate)
	}
	if d.dates == nil {
		d.dates = make(map[string]model.Date)
	}
	d.dates[col] = v
	return v
}

func (d *rowDecoder) floatValue(col string) *float64 {
	raw := strings.TrimSpace(d.str(col))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		d.fail(col, raw, ErrUnparsableNumber)
		return nil
	}
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

func (d *rowDecoder) intValue(col string) *int {
	v := d.floatValue(col)
	if v == nil {
		return nil
	}
	// pandas writes integer columns holding nulls as floats ("6.0")
	n := int(*v)
	if float64(n) != *v {
		d.fail(col, d.str(col), ErrUnparsableNumber)
		return nil
	}
	return &n
}

func (d *rowDecoder) provenance() model.Provenance {
	return model.Provenance{
		RecordID:       d.str(model.ColRecordID),
		SourceName:     d.str(model.ColSourceName),
		SourceURL:      d.str(model.ColSourceURL),
		Confidence:     d.str(model.ColConfidence),
		OriginalText:   d.str(model.ColOriginalText),
		Notes:          d.str(model.ColNotes),
		CollectedBy:    d.str(model.ColCollectedBy),
		CollectionDate: d.date(model.ColCollectionDate),
	}
}

func (d *rowDecoder) issues() []*CellError {
	return d.errs
}

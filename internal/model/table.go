package model

// Column names of the unified schema
const (
	ColRecordType       = "record_type"
	ColRecordID         = "record_id"
	ColPillar           = "pillar"
	ColIndicator        = "indicator"
	ColIndicatorCode    = "indicator_code"
	ColValueNumeric     = "value_numeric"
	ColObservationDate  = "observation_date"
	ColCategory         = "category"
	ColEventDate        = "event_date"
	ColEventName        = "event_name"
	ColDescription      = "description"
	ColParentID         = "parent_id"
	ColRelatedIndicator = "related_indicator"
	ColImpactDirection  = "impact_direction"
	ColImpactMagnitude  = "impact_magnitude"
	ColLagMonths        = "lag_months"
	ColEvidenceBasis    = "evidence_basis"
	ColSourceName       = "source_name"
	ColSourceURL        = "source_url"
	ColConfidence       = "confidence"
	ColOriginalText     = "original_text"
	ColNotes            = "notes"
	ColCollectedBy      = "collected_by"
	ColCollectionDate   = "collection_date"
)

// UnifiedColumns is the required input header, in reference order
var UnifiedColumns = []string{
	ColRecordType, ColPillar, ColIndicator, ColIndicatorCode, ColValueNumeric,
	ColObservationDate, ColCategory, ColEventDate, ColEventName, ColDescription,
	ColParentID, ColRelatedIndicator, ColImpactDirection, ColImpactMagnitude,
	ColLagMonths, ColEvidenceBasis, ColSourceName, ColSourceURL, ColConfidence,
	ColOriginalText, ColNotes, ColCollectedBy, ColCollectionDate,
}

// Cell is one table value. An invalid cell is null.
type Cell struct {
	Str   string
	Valid bool
}

// Null is the null cell
var Null = Cell{}

// Text returns a valid cell holding s
func Text(s string) Cell {
	return Cell{Str: s, Valid: true}
}

// Row maps column names to cells. Missing keys are null.
type Row map[string]Cell

// Table is an immutable flat table with ordered columns.
// Every accessor hands out copies so callers cannot alias its storage.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]Cell
}

// NewTable builds a table. rows must be aligned with columns; short rows are
// padded with nulls and long rows truncated.
func NewTable(columns []string, rows [][]Cell) *Table {
	t := &Table{
		columns: append([]string(nil), columns...),
		index:   make(map[string]int, len(columns)),
		rows:    make([][]Cell, len(rows)),
	}
	for i, c := range t.columns {
		if _, dup := t.index[c]; !dup {
			t.index[c] = i
		}
	}
	for i, r := range rows {
		row := make([]Cell, len(columns))
		copy(row, r)
		t.rows[i] = row
	}
	return t
}

// Columns returns the column names in order
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// HasColumn reports whether the table has the named column
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Cell returns the value at row i, column name. Unknown columns are null.
func (t *Table) Cell(i int, name string) Cell {
	j, ok := t.index[name]
	if !ok {
		return Null
	}
	return t.rows[i][j]
}

// Row returns row i as a column map
func (t *Table) Row(i int) Row {
	row := make(Row, len(t.columns))
	for j, c := range t.columns {
		row[c] = t.rows[i][j]
	}
	return row
}

// Values returns a copy of row i aligned with Columns
func (t *Table) Values(i int) []Cell {
	return append([]Cell(nil), t.rows[i]...)
}

// Rows returns a copy of all rows aligned with Columns
func (t *Table) Rows() [][]Cell {
	out := make([][]Cell, len(t.rows))
	for i := range t.rows {
		out[i] = t.Values(i)
	}
	return out
}

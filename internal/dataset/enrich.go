package dataset

import (
	"sort"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// Enrich appends records to t and returns the combined table. An empty
// batch returns t itself. t is never modified.
func Enrich(t *model.Table, records []model.Record) *model.Table {
	if len(records) == 0 {
		return t
	}
	return EnrichRows(t, EncodeAll(records))
}

// EnrichRows appends raw rows to t. Columns of t missing from a row are null;
// columns of a row unknown to t are dropped. Rows keep their order after t's.
func EnrichRows(t *model.Table, rows []model.Row) *model.Table {
	if len(rows) == 0 {
		return t
	}

	columns := t.Columns()
	combined := make([][]model.Cell, 0, t.Len()+len(rows))
	combined = append(combined, t.Rows()...)

	for _, r := range rows {
		values := make([]model.Cell, len(columns))
		for j, c := range columns {
			values[j] = r[c] // zero Cell is null
		}
		combined = append(combined, values)
	}

	return model.NewTable(columns, combined)
}

// DroppedColumns lists, sorted, the row columns EnrichRows would discard
func DroppedColumns(t *model.Table, rows []model.Row) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		for c := range r {
			if !t.HasColumn(c) {
				seen[c] = true
			}
		}
	}
	dropped := make([]string, 0, len(seen))
	for c := range seen {
		dropped = append(dropped, c)
	}
	sort.Strings(dropped)
	return dropped
}

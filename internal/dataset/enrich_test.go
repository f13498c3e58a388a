package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/builder"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

const sampleCSV = `record_type,pillar,indicator,indicator_code,value_numeric,observation_date,category,event_date,event_name,description,parent_id,related_indicator,impact_direction,impact_magnitude,lag_months,evidence_basis,source_name,source_url,confidence,original_text,notes,collected_by,collection_date
observation,access,Account Ownership Rate,ACC_OWNERSHIP,46.0,2021-12-31,,,,,,,,,,,Global Findex,https://example.org/findex,high,,,Data Team,2025-01-01
event,,,,,,policy,2021-09-01,NFIS-II launch,National strategy,,,,,,,NBE,https://example.org/nbe,high,,,Data Team,2025-01-01
impact_link,access,,,,,,,,,EVT_NFIS,ACC_OWNERSHIP,positive,2.0,12,expert_estimate,NBE,https://example.org/nbe,medium,,,Data Team,2025-01-01
`

func sampleTable(t *testing.T) *model.Table {
	t.Helper()
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return tbl
}

func TestEnrich_EmptyBatchIsIdentity(t *testing.T) {
	tbl := sampleTable(t)

	got := Enrich(tbl, nil)
	assert.Same(t, tbl, got)

	got = EnrichRows(tbl, []model.Row{})
	assert.Same(t, tbl, got)
	assert.Equal(t, tbl.Columns(), got.Columns())
	if diff := cmp.Diff(tbl.Rows(), got.Rows()); diff != "" {
		t.Errorf("rows changed (-want +got):\n%s", diff)
	}
}

func TestEnrich_MissingColumnBecomesNull(t *testing.T) {
	tbl := sampleTable(t)

	got := EnrichRows(tbl, []model.Row{
		{model.ColRecordType: model.Text("observation"), model.ColIndicatorCode: model.Text("USG_DIGITAL")},
	})

	require.Equal(t, 4, got.Len())
	last := got.Len() - 1
	assert.Equal(t, "USG_DIGITAL", got.Cell(last, model.ColIndicatorCode).Str)
	assert.False(t, got.Cell(last, model.ColSourceName).Valid)
	assert.False(t, got.Cell(last, model.ColValueNumeric).Valid)
}

func TestEnrich_ExtraColumnDropped(t *testing.T) {
	tbl := sampleTable(t)
	rows := []model.Row{
		{model.ColRecordType: model.Text("event"), "unit": model.Text("percent")},
	}

	got := EnrichRows(tbl, rows)

	assert.False(t, got.HasColumn("unit"))
	assert.Equal(t, tbl.Columns(), got.Columns())
	assert.Equal(t, []string{"unit"}, DroppedColumns(tbl, rows))
}

func TestEnrich_Additive(t *testing.T) {
	tbl := sampleTable(t)
	b := builder.New()

	records := []model.Record{
		b.Observation(builder.ObservationFields{
			Pillar:          model.PillarAccess,
			Indicator:       "Account Ownership Rate",
			IndicatorCode:   "ACC_OWNERSHIP",
			Value:           49.0,
			ObservationDate: model.DateOf(2024, time.December, 31),
		}),
		b.Event(builder.EventFields{Category: "product_launch", EventName: "M-Pesa launch", EventDate: model.DateOf(2023, time.August, 15)}),
	}

	got := Enrich(tbl, records)

	assert.Equal(t, tbl.Len()+len(records), got.Len())
	// original rows keep their position
	for i := 0; i < tbl.Len(); i++ {
		assert.Equal(t, tbl.Values(i), got.Values(i))
	}
	assert.Equal(t, "observation", got.Cell(3, model.ColRecordType).Str)
	assert.Equal(t, "49", got.Cell(3, model.ColValueNumeric).Str)
	assert.Equal(t, "event", got.Cell(4, model.ColRecordType).Str)
	assert.False(t, got.Cell(4, model.ColPillar).Valid, "events carry no pillar")
	// record_id is not a column of the sample, so it is dropped
	assert.False(t, got.HasColumn(model.ColRecordID))
}

func TestEnrich_DoesNotMutateInput(t *testing.T) {
	tbl := sampleTable(t)
	before := tbl.Rows()

	got := EnrichRows(tbl, []model.Row{{model.ColRecordType: model.Text("event")}})
	require.Equal(t, tbl.Len()+1, got.Len())

	assert.Equal(t, 3, tbl.Len())
	if diff := cmp.Diff(before, tbl.Rows()); diff != "" {
		t.Errorf("input table mutated (-before +after):\n%s", diff)
	}
}

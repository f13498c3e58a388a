package view

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/dataset"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

const header = "record_type,record_id,pillar,indicator,indicator_code,value_numeric,observation_date,category,event_date,event_name,description,parent_id,related_indicator,impact_direction,impact_magnitude,lag_months,evidence_basis,source_name,source_url,confidence,original_text,notes,collected_by,collection_date\n"

const fixture = header +
	"observation,OBS1,access,Account Ownership Rate,ACC_OWNERSHIP,35,2017-12-31,,,,,,,,,,,Findex,https://example.org/findex,high,,,,\n" +
	"event,EVT_TELEBIRR,,,,,,product_launch,2021-05-11,Telebirr mobile money launch,,,,,,,,EthioTelecom,https://example.org/telebirr,high,,,,\n" +
	"observation,OBS2,access,Account Ownership Rate,ACC_OWNERSHIP,46,2021-12-31,,,,,,,,,,,Findex,https://example.org/findex,high,,,,\n" +
	"impact_link,IMP1,access,,,,,,,,,EVT_TELEBIRR,ACC_MM_ACCOUNT,positive,4.5,6,comparable_country,,,medium,,,,\n" +
	"observation,OBS3,usage,Digital payments made,USG_DIGITAL_PAYMENT,21,not a date,,,,,,,,,,,Findex,https://example.org/findex,high,,,,\n" +
	"observation,OBS4,access,Mobile Money account ownership,ACC_MM_ACCOUNT,9.45,2024-12-31,,,,,,,,,,,Findex,https://example.org/findex,medium,,,,\n" +
	"impact_link,IMP2,usage,,,,,,,,,EVT_MISSING,USG_DIGITAL_PAYMENT,negative,1,0,expert_estimate,,,low,,,,\n" +
	"forecast,,,,,,,,,,,,,,,,,,,,,,,\n"

func fixtureViews(t *testing.T) Views {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(fixture))
	require.NoError(t, err)
	return Partition(tbl)
}

func TestPartition_Complete(t *testing.T) {
	tbl, err := dataset.ReadCSV(strings.NewReader(fixture))
	require.NoError(t, err)

	v := Partition(tbl)

	assert.Len(t, v.Observations, 4)
	assert.Len(t, v.Events, 1)
	assert.Len(t, v.ImpactLinks, 2)
	assert.Equal(t, 1, v.Unrecognized)
	assert.Equal(t, tbl.Len(), v.Len()+v.Unrecognized)

	// table order is kept inside a partition
	assert.Equal(t, "OBS1", v.Observations[0].RecordID)
	assert.Equal(t, "OBS2", v.Observations[1].RecordID)
}

func TestPartition_BadDateIsNullSentinel(t *testing.T) {
	v := fixtureViews(t)

	var usage model.Observation
	for _, o := range v.Observations {
		if o.RecordID == "OBS3" {
			usage = o
		}
	}
	assert.False(t, usage.ObservationDate.Valid)
	require.Len(t, v.CellErrors, 1)
	assert.Equal(t, model.ColObservationDate, v.CellErrors[0].Column)
	assert.Equal(t, "not a date", v.CellErrors[0].Value)
}

func TestMatchIndicator_CodeSubstring(t *testing.T) {
	obs := []model.Observation{
		{IndicatorCode: "ACC_OWNERSHIP_2024", Value: model.Float(49)},
		{IndicatorCode: "USG_DIGITAL", Value: model.Float(21)},
	}

	got := MatchIndicator(obs, Query{Code: "ACC_OWNERSHIP"})

	require.Len(t, got, 1)
	assert.Equal(t, "ACC_OWNERSHIP_2024", got[0].IndicatorCode)
}

func TestMatchIndicator_Modes(t *testing.T) {
	obs := []model.Observation{
		{Indicator: "Account Ownership Rate", IndicatorCode: "X1"},
		{Indicator: "account ownership rate (adults)", IndicatorCode: "X2"},
		{Indicator: "Mobile Money account ownership", IndicatorCode: "X3"},
		{Indicator: "Something else", IndicatorCode: "acc_ownership_f"},
	}

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"exact label", Query{Label: "Account Ownership Rate", Mode: MatchExact}, []string{"X1"}},
		{"contains label", Query{Label: "ownership rate", Mode: MatchContains}, []string{"X1", "X2"}},
		{"code is case insensitive", Query{Code: "ACC_OWNERSHIP"}, []string{"acc_ownership_f"}},
		{"account ownership call site", AccountOwnership, []string{"X1", "acc_ownership_f"}},
		{"mobile money call site", MobileMoney, []string{"X3"}},
		{"empty query matches nothing", Query{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var codes []string
			for _, o := range MatchIndicator(obs, tt.query) {
				codes = append(codes, o.IndicatorCode)
			}
			assert.Equal(t, tt.want, codes)
		})
	}
}

func TestMatchIndicator_PillarFallback(t *testing.T) {
	v := fixtureViews(t)

	got := MatchIndicator(v.Observations, DigitalUsage)

	require.Len(t, got, 1)
	assert.Equal(t, "OBS3", got[0].RecordID)
}

func TestSortByDate_NullDatesLast(t *testing.T) {
	dated := func(id string, d model.Date) model.Observation {
		return model.Observation{Provenance: model.Provenance{RecordID: id}, ObservationDate: d}
	}
	obs := []model.Observation{
		dated("c", model.Date{}),
		dated("b", model.DateOf(2021, time.December, 31)),
		dated("a", model.DateOf(2014, time.December, 31)),
	}

	got := SortByDate(obs)

	assert.Equal(t, "a", got[0].RecordID)
	assert.Equal(t, "b", got[1].RecordID)
	assert.Equal(t, "c", got[2].RecordID)
	assert.Equal(t, "c", obs[0].RecordID, "input untouched")
}

func TestDateRangeAndWithin(t *testing.T) {
	v := fixtureViews(t)

	from, to, ok := DateRange(v.Observations)
	require.True(t, ok)
	assert.Equal(t, "2017-12-31", from.String())
	assert.Equal(t, "2024-12-31", to.String())

	got := WithinRange(v.Observations, model.DateOf(2018, time.January, 1), model.Date{})
	require.Len(t, got, 2)
	assert.Equal(t, "OBS2", got[0].RecordID)
	assert.Equal(t, "OBS4", got[1].RecordID)

	assert.Len(t, WithinRange(v.Observations, model.Date{}, model.Date{}), 4)
}

func TestIndicatorCodes(t *testing.T) {
	v := fixtureViews(t)
	assert.Equal(t, []string{"ACC_MM_ACCOUNT", "ACC_OWNERSHIP", "USG_DIGITAL_PAYMENT"}, IndicatorCodes(v.Observations))
}

func TestLinkedEvents(t *testing.T) {
	v := fixtureViews(t)

	all := LinkedEvents(v, "")
	require.Len(t, all, 2)
	require.NotNil(t, all[0].Event)
	assert.Equal(t, "Telebirr mobile money launch", all[0].Event.EventName)
	assert.Nil(t, all[1].Event, "EVT_MISSING is a dangling soft reference")

	mm := LinkedEvents(v, "mm_account")
	require.Len(t, mm, 1)
	assert.Equal(t, "IMP1", mm[0].Link.RecordID)
}

func TestShortName(t *testing.T) {
	ev := model.Event{EventName: "Telebirr mobile money launch"}
	assert.Equal(t, "Telebirr mobile mone", ShortName(ev, 20))
	assert.Equal(t, "Event", ShortName(model.Event{}, 20))
	assert.Equal(t, "Telebirr mobile money launch", ShortName(ev, 0))
}

func TestSourceURLs(t *testing.T) {
	v := fixtureViews(t)
	assert.Equal(t, []string{"https://example.org/findex", "https://example.org/telebirr"}, v.SourceURLs())
}

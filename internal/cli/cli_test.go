package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/dataset"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/metric"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

const unifiedCSV = "record_type,record_id,pillar,indicator,indicator_code,value_numeric,observation_date,category,event_date,event_name,description,parent_id,related_indicator,impact_direction,impact_magnitude,lag_months,evidence_basis,source_name,source_url,confidence,original_text,notes,collected_by,collection_date\n" +
	"observation,ACC2014,access,Account Ownership Rate,ACC_OWNERSHIP,22,2014-12-31,,,,,,,,,,,Findex,https://example.org/findex,high,,,,\n" +
	"observation,ACC2017,access,Account Ownership Rate,ACC_OWNERSHIP,35,2017-12-31,,,,,,,,,,,Findex,https://example.org/findex,high,,,,\n" +
	"observation,ACC2021,access,Account Ownership Rate,ACC_OWNERSHIP,46,2021-12-31,,,,,,,,,,,Findex,https://example.org/findex,high,,,,\n" +
	"observation,ACC2024,access,Account Ownership Rate,ACC_OWNERSHIP,49,2024-12-31,,,,,,,,,,,Findex,https://example.org/findex,high,,,,\n" +
	"event,EVT_TELEBIRR,,,,,,product_launch,2021-05-11,Telebirr mobile money launch,,,,,,,,EthioTelecom,https://example.org/telebirr,high,,,,\n"

const batchYAML = `observations:
  - record_id: MM2024
    pillar: access
    indicator: Mobile money account ownership
    indicator_code: ACC_MM_ACCOUNT
    value_numeric: 9.45
    observation_date: 2024-12-31
    source_name: Global Findex
`

type paths struct {
	dir       string
	raw       string
	enriched  string
	forecasts string
}

// setup isolates HOME, writes the unified table and resets command state
func setup(t *testing.T) paths {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("FIFORECAST_LLM_PROVIDER", "")

	p := paths{
		dir:       dir,
		raw:       filepath.Join(dir, "raw.csv"),
		enriched:  filepath.Join(dir, "enriched.csv"),
		forecasts: filepath.Join(dir, "forecasts.csv"),
	}
	require.NoError(t, os.WriteFile(p.raw, []byte(unifiedCSV), 0644))

	cfgFile, verbose, jsonOutput, jsonPath, mdPath = "", false, false, "", ""
	trendIndicators, trendFrom, trendTo = nil, "", ""
	forecastIndicators, forecastSave, forecastSavePath = nil, false, ""
	scenarioName, exportOut, enrichOut = "", "", ""
	return p
}

func run(t *testing.T, p paths, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	all := append([]string{"--enriched", p.enriched, "--raw", p.raw, "--forecasts", p.forecasts}, args...)
	rootCmd.SetArgs(all)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	p := setup(t)

	out, _, err := run(t, p, "version")

	require.NoError(t, err)
	assert.Equal(t, "fiforecast dev\n", out)
}

func TestOverview_JSON(t *testing.T) {
	p := setup(t)

	out, _, err := run(t, p, "overview", "--json")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, p.raw, report["source"])

	overview := report["overview"].(map[string]any)
	acc := overview["account_ownership"].(map[string]any)
	assert.Equal(t, 49.0, acc["value"])
	assert.Equal(t, 2024.0, acc["year"])
	assert.Equal(t, false, acc["fallback"])

	// no mobile money rows: configured default
	mm := overview["mobile_money"].(map[string]any)
	assert.Equal(t, 9.45, mm["value"])
	assert.Equal(t, true, mm["fallback"])
}

func TestOverview_Markdown(t *testing.T) {
	p := setup(t)
	md := filepath.Join(p.dir, "out", "overview.md")

	out, _, err := run(t, p, "overview", "--md", md)
	require.NoError(t, err)
	assert.Contains(t, out, "Account Ownership")

	data, err := os.ReadFile(md)
	require.NoError(t, err)
	assert.Contains(t, string(data), "| Metric | Value | Year | Growth |")
}

func TestOverview_JSONFile(t *testing.T) {
	p := setup(t)
	path := filepath.Join(p.dir, "out", "overview.json")

	out, _, err := run(t, p, "overview", "--json-out", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Account Ownership", "summary still printed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Contains(t, report, "overview")
}

func TestExport_FailedWriteLeavesNoFile(t *testing.T) {
	p := setup(t)
	_, _, err := run(t, p, "forecast", "--save")
	require.NoError(t, err)

	blocker := filepath.Join(p.dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))
	file := filepath.Join(blocker, "export.csv")

	_, _, err = run(t, p, "export", "--out", file)

	require.Error(t, err)
	assert.NoFileExists(t, file)
}

func TestMissingInput(t *testing.T) {
	p := setup(t)
	require.NoError(t, os.Remove(p.raw))

	_, _, err := run(t, p, "overview")

	var missing *dataset.MissingInputError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{p.enriched, p.raw}, missing.Tried)
}

func TestTrends_BadDate(t *testing.T) {
	p := setup(t)

	_, _, err := run(t, p, "trends", "--from", "2017/01/01")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--from")
}

func TestProject_UnknownScenario(t *testing.T) {
	p := setup(t)

	_, _, err := run(t, p, "project", "--scenario", "wishful")

	assert.True(t, errors.Is(err, metric.ErrUnknownScenario))
}

func TestProject_Scenario(t *testing.T) {
	p := setup(t)

	out, _, err := run(t, p, "project", "--scenario", "optimistic", "--json")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	projection := report["projection"].(map[string]any)
	assert.Equal(t, "Optimistic", projection["scenario"])
}

func TestForecastSaveThenExport(t *testing.T) {
	p := setup(t)

	_, stderr, err := run(t, p, "forecast", "--save")
	require.NoError(t, err)
	assert.Contains(t, stderr, "✓ Wrote forecasts: "+p.forecasts)

	out, _, err := run(t, p, "export", "--out", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, "year,indicator,scenario,forecast_value", lines[0])
	// three scenarios over three years
	assert.Len(t, lines, 1+9)

	file := filepath.Join(p.dir, "export.csv")
	_, _, err = run(t, p, "export", "--out", file)
	require.NoError(t, err)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))
}

func TestExport_MissingTableWarns(t *testing.T) {
	p := setup(t)
	file := filepath.Join(p.dir, "export.csv")

	_, stderr, err := run(t, p, "export", "--out", file)

	require.NoError(t, err)
	assert.Contains(t, stderr, "forecast data file not found")
	assert.NoFileExists(t, file)
}

func TestEnrich(t *testing.T) {
	p := setup(t)
	batch := filepath.Join(p.dir, "batch.yaml")
	require.NoError(t, os.WriteFile(batch, []byte(batchYAML), 0644))

	out, _, err := run(t, p, "enrich", batch)
	require.NoError(t, err)
	assert.Equal(t, "✓ Added 1 records to "+p.enriched+"\n", out)

	enriched, err := dataset.ReadCSVFile(p.enriched)
	require.NoError(t, err)
	assert.Equal(t, 6, enriched.Len())
	assert.Equal(t, "MM2024", enriched.Cell(5, model.ColRecordID).Str)
	assert.Equal(t, model.ConfidenceMedium, enriched.Cell(5, model.ColConfidence).Str)

	raw, err := dataset.ReadCSVFile(p.raw)
	require.NoError(t, err)
	assert.Equal(t, 5, raw.Len(), "raw table untouched")

	// the enriched table is now preferred
	out, _, err = run(t, p, "overview", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"source": "`+p.enriched+`"`)
}

func TestEnrich_BadBatch(t *testing.T) {
	p := setup(t)
	batch := filepath.Join(p.dir, "batch.yaml")
	require.NoError(t, os.WriteFile(batch, []byte("observations:\n  - observation_date: someday\n"), 0644))

	_, _, err := run(t, p, "enrich", batch)

	require.Error(t, err)
	assert.Contains(t, err.Error(), batch)
	assert.NoFileExists(t, p.enriched)
}

func TestBrief_RequiresProvider(t *testing.T) {
	p := setup(t)

	_, _, err := run(t, p, "brief")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no LLM provider configured")
}

func TestConfigInit(t *testing.T) {
	p := setup(t)

	out, _, err := run(t, p, "config", "init")
	require.NoError(t, err)

	path := filepath.Join(p.dir, ".fiforecast", "config.yaml")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "current_year: 2024")
	assert.Contains(t, string(data), "OPENAI_API_KEY")
	assert.NotContains(t, string(data), "api_key")

	_, _, err = run(t, p, "config", "init")
	assert.Error(t, err, "existing file is not overwritten")
}

func TestConfigShow(t *testing.T) {
	p := setup(t)

	out, _, err := run(t, p, "config", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Current Configuration")
	assert.Contains(t, out, "raw_path: "+p.raw)
	assert.Contains(t, out, "FIFORECAST_*")
}

func TestFlatten(t *testing.T) {
	got := map[string]any{}
	flatten("", map[string]any{
		"forecast": map[string]any{"target": 60.0},
		"top":      1,
	}, func(k string, v any) { got[k] = v })

	assert.Equal(t, map[string]any{"forecast.target": 60.0, "top": 1}, got)
}

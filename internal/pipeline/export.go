package pipeline

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/dataset"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/metric"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/session"
)

// ExportMIME is the media type of exported forecast files
const ExportMIME = "text/csv"

// Forecast table columns
const (
	ColYear          = "year"
	ColIndicator     = "indicator"
	ColScenario      = "scenario"
	ColForecastValue = "forecast_value"
)

// ForecastColumns is the header of the forecast table
var ForecastColumns = []string{ColYear, ColIndicator, ColScenario, ColForecastValue}

// ExportFileName names an exported forecast file
func ExportFileName(entity string, start, end int) string {
	return fmt.Sprintf("%s_forecasts_%d_%d.csv", entity, start, end)
}

// ExportForecasts copies the precomputed forecast table to w. Without one
// the error wraps dataset.ErrMissingOptionalInput.
func ExportForecasts(s *session.Session, w io.Writer) error {
	t, err := s.Forecasts()
	if err != nil {
		return err
	}
	if err := dataset.WriteCSV(w, t); err != nil {
		return fmt.Errorf("export forecasts: %w", err)
	}
	return nil
}

// ExportForecastsFile writes the precomputed forecast table to path. The
// file is replaced atomically, so a failed export leaves no partial CSV.
func ExportForecastsFile(s *session.Session, path string) error {
	t, err := s.Forecasts()
	if err != nil {
		return err
	}
	if err := dataset.WriteCSVFile(path, t); err != nil {
		return fmt.Errorf("export forecasts: %w", err)
	}
	return nil
}

// ForecastTable lays out available forecasts under every scenario, values
// rounded to two decimals
func ForecastTable(forecasts []model.IndicatorForecast) (*model.Table, error) {
	var rows [][]model.Cell
	for _, f := range forecasts {
		if !f.Available {
			continue
		}
		for _, s := range metric.Scenarios() {
			projected, err := metric.ProjectScenario(f.Forecast, s)
			if err != nil {
				return nil, err
			}
			for _, p := range projected {
				rows = append(rows, []model.Cell{
					model.Text(strconv.Itoa(p.Year)),
					model.Text(f.Indicator),
					model.Text(string(s)),
					model.Text(Round(p.Value, 2).String()),
				})
			}
		}
	}
	return model.NewTable(ForecastColumns, rows), nil
}

// Round rounds v half away from zero to places decimals
func Round(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

// SaveForecasts writes the forecast table of report to path
func SaveForecasts(path string, report *model.Report) error {
	t, err := ForecastTable(report.Forecasts)
	if err != nil {
		return err
	}
	if t.Len() == 0 {
		return fmt.Errorf("save forecasts: no indicator has a forecast")
	}
	return dataset.WriteCSVFile(path, t)
}

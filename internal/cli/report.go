package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/metric"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/pipeline"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/view"
)

var (
	trendIndicators    []string
	trendFrom          string
	trendTo            string
	forecastIndicators []string
	forecastSave       bool
	forecastSavePath   string
	scenarioName       string
)

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Key metrics: latest account ownership, mobile money, growth",
	Long: `Overview reports the latest account ownership rate with its growth
since the previous observation, the latest mobile money account rate, the
number of cataloged events and impact links, and the change between each
pair of consecutive account ownership observations.

Example:
  fiforecast overview
  fiforecast overview --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		_, err = a.run(cmd, pipeline.Request{Overview: true})
		return err
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends",
	Short: "Indicator trajectories, event timeline and impact links",
	Long: `Trends lists the account ownership, mobile money and digital payment
series plus the selected indicator codes, the event timeline and the impact
links that point at the selected indicators.

Example:
  fiforecast trends
  fiforecast trends --indicator ACC_OWNERSHIP --from 2017-01-01 --to 2024-12-31`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := optionalDate("from", trendFrom)
		if err != nil {
			return err
		}
		to, err := optionalDate("to", trendTo)
		if err != nil {
			return err
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		_, err = a.run(cmd, pipeline.Request{Trends: true, Indicators: trendIndicators, From: from, To: to})
		return err
	},
}

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Linear trend forecast over the horizon",
	Long: `Forecast fits a least-squares line through each indicator's history and
extends it over the forecast horizon (2025-2027 by default). Indicators with
fewer than two dated observations are reported as unavailable.

With --save the forecasts are written under every scenario to the forecast
table that 'fiforecast export' serves.

Example:
  fiforecast forecast
  fiforecast forecast --indicator ACC_OWNERSHIP --indicator ACC_MM_ACCOUNT
  fiforecast forecast --save`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		req := pipeline.Request{Forecast: true}
		for _, code := range forecastIndicators {
			req.Forecasts = append(req.Forecasts, view.ForCode(code))
		}
		report, err := a.run(cmd, req)
		if err != nil {
			return err
		}
		if !forecastSave {
			return nil
		}

		path := forecastSavePath
		if path == "" {
			path = a.config.Data.ForecastPath
		}
		if err := pipeline.SaveForecasts(path, report); err != nil {
			return err
		}
		a.session.Invalidate()
		logger.Info("Saved forecast table", zap.String("path", path))
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote forecasts: %s\n", path)
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Scenario projection and gap to the account ownership target",
	Long: `Project scales the account ownership forecast by the scenario multiplier
(Optimistic 1.15, Base 1.0, Pessimistic 0.85) and reports the projected
rate in the last horizon year against the target (60% by default).

Example:
  fiforecast project
  fiforecast project --scenario optimistic`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var scenario metric.Scenario
		if scenarioName != "" {
			s, err := metric.ParseScenario(scenarioName)
			if err != nil {
				return err
			}
			scenario = s
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		_, err = a.run(cmd, pipeline.Request{Projection: true, Scenario: scenario})
		return err
	},
}

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Full report with a narrative brief from a language model",
	Long: `Brief computes every section and asks the configured LLM provider for a
short narrative. The model may only cite the dataset's source URLs. The
numbers are computed before and independently of the brief.

Example:
  FIFORECAST_LLM_PROVIDER=openai OPENAI_API_KEY=sk-... fiforecast brief
  fiforecast brief --scenario pessimistic --md brief.md`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		if a.config.LLM.Provider == "" {
			return fmt.Errorf("no LLM provider configured (set llm.provider or FIFORECAST_LLM_PROVIDER)")
		}
		scenario := metric.Scenario("")
		if scenarioName != "" {
			if scenario, err = metric.ParseScenario(scenarioName); err != nil {
				return err
			}
		}
		_, err = a.run(cmd, pipeline.Request{
			Overview:   true,
			Trends:     true,
			Forecast:   true,
			Projection: true,
			Brief:      true,
			Scenario:   scenario,
		})
		return err
	},
}

func optionalDate(flag, value string) (model.Date, error) {
	if value == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseStrictDate(value)
	if err != nil {
		return model.Date{}, fmt.Errorf("--%s: %w", flag, err)
	}
	return d, nil
}

func init() {
	rootCmd.AddCommand(overviewCmd, trendsCmd, forecastCmd, projectCmd, briefCmd)

	trendsCmd.Flags().StringSliceVar(&trendIndicators, "indicator", nil, "indicator codes to show (default: first three codes)")
	trendsCmd.Flags().StringVar(&trendFrom, "from", "", "first date, YYYY-MM-DD")
	trendsCmd.Flags().StringVar(&trendTo, "to", "", "last date, YYYY-MM-DD")

	forecastCmd.Flags().StringSliceVar(&forecastIndicators, "indicator", nil, "indicator codes to forecast (default: account ownership)")
	forecastCmd.Flags().BoolVar(&forecastSave, "save", false, "write the forecast table")
	forecastCmd.Flags().StringVar(&forecastSavePath, "save-path", "", "forecast table path (default: data.forecast_path)")

	projectCmd.Flags().StringVar(&scenarioName, "scenario", "", "Optimistic, Base or Pessimistic (default: forecast.default_scenario)")
	briefCmd.Flags().StringVar(&scenarioName, "scenario", "", "scenario for the projection section")
}

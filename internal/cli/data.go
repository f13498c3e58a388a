package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/builder"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/dataset"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/pipeline"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/worker"
)

// batchWorkers bounds concurrent batch file reads
const batchWorkers = 4

var (
	exportOut string
	enrichOut string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the precomputed forecast table as CSV",
	Long: `Export copies the precomputed forecast table to a CSV file named after the
dataset and forecast horizon, or to stdout with --out -.

When no forecast table exists the command prints a warning and exits
successfully. Create one with 'fiforecast forecast --save'.

Example:
  fiforecast export
  fiforecast export --out - | head`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		out := exportOut
		if out == "" {
			h := a.pipeline.Horizon()
			out = pipeline.ExportFileName(a.config.Data.ExportEntity, h.First(), h.Last())
		}

		if out == "-" {
			return degradeExport(cmd, pipeline.ExportForecasts(a.session, cmd.OutOrStdout()))
		}
		if err := pipeline.ExportForecastsFile(a.session, out); err != nil {
			return degradeExport(cmd, err)
		}

		logger.Info("Exported forecasts", zap.String("path", out), zap.String("type", pipeline.ExportMIME))
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported forecasts: %s\n", out)
		return nil
	},
}

// degradeExport turns a missing forecast table into a warning
func degradeExport(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	if !errors.Is(err, dataset.ErrMissingOptionalInput) {
		return err
	}
	logger.Warn("Forecast export unavailable", zap.Error(err))
	fmt.Fprintf(cmd.ErrOrStderr(), "⚠ %v\n  Run 'fiforecast forecast --save' to create it.\n", err)
	return nil
}

var enrichCmd = &cobra.Command{
	Use:   "enrich <batch.yaml>...",
	Short: "Append authored records to the unified table",
	Long: `Enrich reads one or more YAML batch files of observations, events and
impact links, fills the schema defaults (confidence "medium", collected by
"Data Team", today's collection date, a generated record id) and writes the
unified table with the new rows appended.

The input table is never modified in place unless --out names it.

Example:
  fiforecast enrich new_records.yaml
  fiforecast enrich a.yaml b.yaml --out data/processed/enriched.csv

Batch format:
  observations:
    - pillar: access
      indicator: Account Ownership Rate
      indicator_code: ACC_OWNERSHIP
      value_numeric: 49
      observation_date: 2024-12-31
      source_name: Global Findex
  events:
    - category: product_launch
      event_name: Telebirr launch
      event_date: 2021-05-11
  impact_links:
    - parent_id: EVT_TELEBIRR
      related_indicator: ACC_MM_ACCOUNT
      impact_direction: positive
      impact_magnitude: 4.5
      lag_months: 6
      evidence_basis: comparable_country`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		table, source, err := a.session.Table()
		if err != nil {
			return err
		}

		readers := worker.NewPool(batchWorkers, func(ctx context.Context, path string) (*builder.Batch, error) {
			batch, err := builder.ReadBatchFile(path)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return batch, nil
		})
		batches, err := readers.Run(cmd.Context(), args)
		if err != nil {
			return err
		}

		bld := builder.New()
		var records []model.Record
		for i, batch := range batches {
			path := args[i]
			recs, err := batch.Records(bld)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Debug("Read batch", zap.String("path", path), zap.Int("records", len(recs)))
			records = append(records, recs...)
		}

		if dropped := dataset.DroppedColumns(table, dataset.EncodeAll(records)); len(dropped) > 0 {
			logger.Warn("Columns not in the unified table were dropped", zap.Strings("columns", dropped))
		}

		out := enrichOut
		if out == "" {
			out = a.config.Data.EnrichedPath
		}
		if err := dataset.WriteCSVFile(out, dataset.Enrich(table, records)); err != nil {
			return err
		}
		a.session.Invalidate()

		logger.Info("Enriched unified table",
			zap.String("source", source),
			zap.String("path", out),
			zap.Int("added", len(records)))
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %d records to %s\n", len(records), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd, enrichCmd)

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path, - for stdout (default: <entity>_forecasts_<start>_<end>.csv)")
	enrichCmd.Flags().StringVarP(&enrichOut, "out", "o", "", "output path (default: data.enriched_path)")
}

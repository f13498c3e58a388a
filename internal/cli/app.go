package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/dataset"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/pipeline"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/session"
)

// app is the wiring shared by every report command
type app struct {
	config   *model.Config
	session  *session.Session
	pipeline *pipeline.Pipeline
	renderer *pipeline.Renderer
}

func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	s := session.New(dataset.NewLoader(cfg.Data, logger), nil, logger)
	return &app{
		config:   cfg,
		session:  s,
		pipeline: pipeline.NewPipeline(cfg, s, logger),
		renderer: pipeline.NewRenderer(cfg.Output.IncludeFooter),
	}, nil
}

// emit writes the report to stdout as JSON or a summary, and to the
// --md and --json-out files when set
func (a *app) emit(cmd *cobra.Command, report *model.Report) error {
	if mdPath != "" {
		if err := a.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		logger.Info("Wrote Markdown", zap.String("path", mdPath))
	}
	if jsonPath != "" {
		if err := a.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render json: %w", err)
		}
		logger.Info("Wrote JSON", zap.String("path", jsonPath))
	}
	if jsonOutput {
		return a.renderer.WriteJSON(cmd.OutOrStdout(), report)
	}
	a.renderer.WriteSummary(cmd.OutOrStdout(), report)
	return nil
}

// run builds and emits one report
func (a *app) run(cmd *cobra.Command, req pipeline.Request) (*model.Report, error) {
	report, err := a.pipeline.Build(cmd.Context(), req)
	if err != nil {
		return nil, err
	}
	return report, a.emit(cmd, report)
}

package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// Loader reads the persisted flat files
type Loader struct {
	candidates   []string
	forecastPath string
	logger       *zap.Logger
}

// NewLoader creates a loader for the configured paths. The enriched table is
// tried before the raw one.
func NewLoader(cfg model.DataConfig, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	var candidates []string
	for _, p := range []string{cfg.EnrichedPath, cfg.RawPath} {
		if p != "" {
			candidates = append(candidates, p)
		}
	}
	return &Loader{
		candidates:   candidates,
		forecastPath: cfg.ForecastPath,
		logger:       logger,
	}
}

// Candidates returns the unified-table paths in the order they are tried
func (l *Loader) Candidates() []string {
	return append([]string(nil), l.candidates...)
}

// LoadTable reads the first candidate that exists and returns it with its
// path. When none exists the error is a *MissingInputError.
func (l *Loader) LoadTable() (*model.Table, string, error) {
	for _, path := range l.candidates {
		t, err := ReadCSVFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			l.logger.Debug("Candidate data file absent", zap.String("path", path))
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("load unified table: %w", err)
		}
		if err := RequireColumns(path, t, model.UnifiedColumns); err != nil {
			return nil, "", err
		}
		l.logger.Debug("Loaded unified table",
			zap.String("path", path),
			zap.Int("rows", t.Len()),
			zap.Int("columns", len(t.Columns())))
		return t, path, nil
	}
	return nil, "", &MissingInputError{Tried: l.Candidates()}
}

// LoadForecasts reads the precomputed forecast table. An absent file yields
// ErrMissingOptionalInput.
func (l *Loader) LoadForecasts() (*model.Table, error) {
	if l.forecastPath == "" {
		return nil, ErrMissingOptionalInput
	}
	if _, err := os.Stat(l.forecastPath); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingOptionalInput, l.forecastPath)
	}
	t, err := ReadCSVFile(l.forecastPath)
	if err != nil {
		return nil, fmt.Errorf("load forecasts: %w", err)
	}
	l.logger.Debug("Loaded forecast table", zap.String("path", l.forecastPath), zap.Int("rows", t.Len()))
	return t, nil
}

// ForecastPath returns the configured forecast file path
func (l *Loader) ForecastPath() string {
	return l.forecastPath
}

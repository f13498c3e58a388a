// Package session loads the unified table once and serves derived views
// from a cache owned by the session value.
package session

import (
	"strings"

	"go.uber.org/zap"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/cache"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/dataset"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/view"
)

// Session is the per-process data context
type Session struct {
	loader *dataset.Loader
	cache  cache.Cache
	logger *zap.Logger
}

type loadedTable struct {
	table  *model.Table
	source string
}

// New creates a session. A nil cache gets an in-memory one, a nil logger a
// no-op one.
func New(loader *dataset.Loader, c cache.Cache, logger *zap.Logger) *Session {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{loader: loader, cache: c, logger: logger}
}

func (s *Session) tableKey() string {
	return cache.CacheKey("table", strings.Join(s.loader.Candidates(), "|"))
}

// Table returns the unified table and the path it was read from. The file
// is read on the first call only.
func (s *Session) Table() (*model.Table, string, error) {
	lt, err := cache.Load(s.cache, s.tableKey(), func() (loadedTable, error) {
		t, src, err := s.loader.LoadTable()
		if err != nil {
			return loadedTable{}, err
		}
		s.logger.Info("Unified table loaded", zap.String("source", src), zap.Int("rows", t.Len()))
		return loadedTable{table: t, source: src}, nil
	})
	if err != nil {
		return nil, "", err
	}
	return lt.table, lt.source, nil
}

// Forecasts returns the precomputed forecast table, or an error wrapping
// dataset.ErrMissingOptionalInput when there is none
func (s *Session) Forecasts() (*model.Table, error) {
	return cache.Load(s.cache, cache.CacheKey("forecasts", s.loader.ForecastPath()), s.loader.LoadForecasts)
}

// Views returns the typed partitions of the unified table
func (s *Session) Views() (view.Views, error) {
	t, src, err := s.Table()
	if err != nil {
		return view.Views{}, err
	}
	return cache.Load(s.cache, cache.CacheKey("views", src), func() (view.Views, error) {
		v := view.Partition(t)
		for _, ce := range v.CellErrors {
			s.logger.Debug("Cell read as null",
				zap.Int("row", ce.Row),
				zap.String("column", ce.Column),
				zap.String("value", ce.Value),
				zap.Error(ce.Err))
		}
		if v.Unrecognized > 0 {
			s.logger.Warn("Rows with unknown record_type ignored", zap.Int("rows", v.Unrecognized))
		}
		return v, nil
	})
}

// Invalidate drops every cached value; the next call reloads from disk
func (s *Session) Invalidate() {
	s.cache.Clear()
}

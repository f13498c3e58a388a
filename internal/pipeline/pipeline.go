// Package pipeline assembles report sections from a session's data.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/llm"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/metric"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/session"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/validate"
	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/view"
)

// Subject names every report
const Subject = "financial inclusion in Ethiopia"

// timelineNameLen is the length event names are cut to on the timeline
const timelineNameLen = 20

// Request selects the sections of a report and their parameters
type Request struct {
	Overview   bool
	Trends     bool
	Forecast   bool
	Projection bool
	Brief      bool

	// Indicators are the codes shown on the trends page; empty picks the
	// first three codes in sorted order
	Indicators []string
	// From and To bound the trend series; invalid bounds are open
	From, To model.Date

	// Forecasts are the indicators to forecast; empty means account ownership
	Forecasts []view.Query
	// Scenario applies to the projection; empty means the configured default
	Scenario metric.Scenario
}

// Pipeline derives reports from a session
type Pipeline struct {
	session   *session.Session
	validator *validate.Validator
	briefer   *llm.Briefer
	config    *model.Config
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithBriefer replaces the briefer built from configuration
func WithBriefer(b *llm.Briefer) Option {
	return func(p *Pipeline) { p.briefer = b }
}

// WithClock sets the time source for GeneratedAt
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, s *session.Session, logger *zap.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		session:   s,
		validator: validate.New(cfg.Validation),
		config:    cfg,
		logger:    logger,
		now:       time.Now,
	}

	if cfg.LLM.Provider != "" {
		b, err := llm.NewBriefer(llm.ConfigFromModel(cfg.LLM), logger)
		if err != nil {
			logger.Warn("Failed to initialize LLM provider", zap.Error(err))
		} else {
			p.briefer = b
		}
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Horizon returns the configured forecast horizon
func (p *Pipeline) Horizon() metric.Horizon {
	h := metric.Horizon{Current: p.config.Forecast.CurrentYear, Years: p.config.Forecast.HorizonYears}
	if h.Current == 0 {
		h.Current = metric.DefaultHorizon.Current
	}
	if h.Years <= 0 {
		h.Years = metric.DefaultHorizon.Years
	}
	return h
}

// Build derives the requested sections. A section or series that lacks
// history or fails strict validation degrades to unavailable with a
// warning; the other sections are still built.
func (p *Pipeline) Build(ctx context.Context, req Request) (*model.Report, error) {
	v, err := p.session.Views()
	if err != nil {
		return nil, err
	}
	_, source, err := p.session.Table()
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Subject:     Subject,
		Source:      source,
		GeneratedAt: p.now().UTC(),
	}
	if n := len(v.CellErrors); n > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d unparsable cells were read as null", n))
	}
	if v.Unrecognized > 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d rows with an unknown record_type were ignored", v.Unrecognized))
	}

	if req.Overview {
		o, warns, err := p.overview(v)
		if err != nil {
			reason, ok := p.unavailable("overview", err)
			if !ok {
				return nil, fmt.Errorf("overview: %w", err)
			}
			warns = []string{reason}
		}
		report.Overview = o
		report.Warnings = append(report.Warnings, warns...)
	}

	if req.Trends {
		t, warns, err := p.trends(v, req)
		if err != nil {
			reason, ok := p.unavailable("trends", err)
			if !ok {
				return nil, fmt.Errorf("trends: %w", err)
			}
			warns = []string{reason}
		}
		report.Trends = t
		report.Warnings = append(report.Warnings, warns...)
	}

	if req.Forecast {
		queries := req.Forecasts
		if len(queries) == 0 {
			queries = []view.Query{view.AccountOwnership}
		}
		for _, q := range queries {
			f, warns, err := p.forecast(v, q)
			if err != nil {
				return nil, fmt.Errorf("forecast %s: %w", q.Name, err)
			}
			report.Forecasts = append(report.Forecasts, f)
			report.Warnings = append(report.Warnings, warns...)
		}
	}

	if req.Projection {
		proj, warns, err := p.projection(v, req.Scenario)
		if err != nil {
			return nil, fmt.Errorf("projection: %w", err)
		}
		report.Projection = proj
		report.Warnings = append(report.Warnings, warns...)
	}

	if req.Brief {
		p.attachBrief(ctx, report, v.SourceURLs())
	}

	return report, nil
}

// series selects, sorts and validates the observations matching q
func (p *Pipeline) series(v view.Views, q view.Query) ([]model.Observation, []string, error) {
	matched := view.SortByDate(view.MatchIndicator(v.Observations, q))
	kept, verrs, err := p.validator.Observations(matched)
	if err != nil {
		return nil, nil, err
	}
	return kept, p.dropWarnings(q.Name, verrs), nil
}

// unavailable turns a strict validation failure into the reason a section
// or series is missing. ok is false for any other error.
func (p *Pipeline) unavailable(name string, err error) (reason string, ok bool) {
	verrs := validate.Violations(err)
	if len(verrs) == 0 {
		return "", false
	}
	fields := validate.Fields(verrs)
	p.logger.Warn("Invalid rows, section unavailable",
		zap.String("section", name),
		zap.Int("violations", len(verrs)),
		zap.Strings("fields", fields))
	reason = fmt.Sprintf("%s unavailable: %d invalid value(s) in %s; first: %v",
		name, len(verrs), strings.Join(fields, ", "), verrs[0])
	return reason, true
}

func (p *Pipeline) dropWarnings(name string, verrs []*validate.ValidationError) []string {
	var warns []string
	for _, e := range verrs {
		p.logger.Warn("Invalid row dropped",
			zap.String("series", name),
			zap.String("record_id", e.RecordID),
			zap.String("field", e.Field),
			zap.String("value", e.Value))
		warns = append(warns, fmt.Sprintf("%s: dropped %v", name, e))
	}
	return warns
}

func (p *Pipeline) overview(v view.Views) (*model.Overview, []string, error) {
	acc, warns, err := p.series(v, view.AccountOwnership)
	if err != nil {
		return nil, nil, err
	}
	mm, mmWarns, err := p.series(v, view.MobileMoney)
	if err != nil {
		return nil, nil, err
	}
	warns = append(warns, mmWarns...)

	fb := p.config.Overview
	o := &model.Overview{
		AccountOwnership: headline(view.AccountOwnership.Name, acc, fb.FallbackAccountOwnership, fb.FallbackYear),
		MobileMoney:      headline(view.MobileMoney.Name, mm, fb.FallbackMobileMoney, 0),
		Observations:     len(v.Observations),
		Events:           len(v.Events),
		ImpactLinks:      len(v.ImpactLinks),
		Growth:           metric.PeriodChanges(acc),
	}
	for _, h := range []model.Headline{o.AccountOwnership, o.MobileMoney} {
		if h.Fallback {
			warns = append(warns, fmt.Sprintf("%s: no observations, showing default %.2f", h.Label, h.Value))
		}
	}
	return o, warns, nil
}

func headline(label string, sorted []model.Observation, fallback float64, fallbackYear int) model.Headline {
	s, ok := metric.LatestAndGrowth(sorted)
	if !ok {
		return model.Headline{Label: label, Value: fallback, Year: fallbackYear, GrowthDefined: true, Fallback: true}
	}
	h := model.Headline{
		Label:         label,
		Value:         s.Latest,
		GrowthRate:    s.GrowthRate,
		GrowthDefined: s.GrowthDefined,
	}
	if s.LatestDate.Valid {
		h.Year = s.LatestDate.Time.Year()
	}
	return h
}

func (p *Pipeline) trends(v view.Views, req Request) (*model.Trends, []string, error) {
	codes := req.Indicators
	if len(codes) == 0 {
		codes = view.IndicatorCodes(v.Observations)
		if len(codes) > 3 {
			codes = codes[:3]
		}
	}

	from, to := req.From, req.To
	if !from.Valid && !to.Valid {
		from, to, _ = view.DateRange(v.Observations)
	}

	t := &model.Trends{From: from, To: to, Indicators: codes}
	var warns []string

	queries := []view.Query{view.AccountOwnership, view.MobileMoney, view.DigitalUsage}
	for _, code := range codes {
		queries = append(queries, view.ForCode(code))
	}
	for _, q := range queries {
		sorted, w, err := p.series(v, q)
		if err != nil {
			reason, ok := p.unavailable(q.Name+" series", err)
			if !ok {
				return nil, nil, err
			}
			warns = append(warns, reason)
			t.Series = append(t.Series, model.Series{Name: q.Name, Reason: reason})
			continue
		}
		warns = append(warns, w...)
		t.Series = append(t.Series, model.Series{
			Name:   q.Name,
			Points: metric.Points(view.WithinRange(sorted, req.From, req.To)),
		})
	}

	for _, e := range view.Timeline(v.Events) {
		t.Timeline = append(t.Timeline, model.TimelineEntry{
			Date:     e.EventDate,
			Name:     view.ShortName(e, timelineNameLen),
			Category: e.Category,
		})
	}

	var selected []model.ImpactLink
	for _, l := range v.ImpactLinks {
		if relatesToAny(l.RelatedIndicator, codes) {
			selected = append(selected, l)
		}
	}
	links, verrs, err := p.validator.ImpactLinks(selected)
	if err != nil {
		reason, ok := p.unavailable("impact links", err)
		if !ok {
			return nil, nil, err
		}
		return t, append(warns, reason), nil
	}
	warns = append(warns, p.dropWarnings("impact links", verrs)...)

	linked := v
	linked.ImpactLinks = links
	for _, l := range view.LinkedEvents(linked, "") {
		entry := model.ImpactEntry{
			Indicator: l.Link.RelatedIndicator,
			ParentID:  l.Link.ParentID,
			Direction: l.Link.ImpactDirection,
			Magnitude: l.Link.ImpactMagnitude,
			LagMonths: l.Link.LagMonths,
			Evidence:  l.Link.EvidenceBasis,
		}
		if l.Event != nil {
			entry.Event = l.Event.EventName
			entry.Resolved = true
		} else {
			warns = append(warns, fmt.Sprintf("impact link %s: parent %q is not a known event", l.Link.RecordID, l.Link.ParentID))
		}
		t.Impacts = append(t.Impacts, entry)
	}

	return t, warns, nil
}

func relatesToAny(indicator string, codes []string) bool {
	indicator = strings.ToLower(indicator)
	for _, c := range codes {
		if c != "" && strings.Contains(indicator, strings.ToLower(c)) {
			return true
		}
	}
	return false
}

func (p *Pipeline) forecast(v view.Views, q view.Query) (model.IndicatorForecast, []string, error) {
	out := model.IndicatorForecast{Indicator: q.Name}
	sorted, warns, err := p.series(v, q)
	if err != nil {
		reason, ok := p.unavailable(q.Name+" forecast", err)
		if !ok {
			return model.IndicatorForecast{}, nil, err
		}
		out.Reason = reason
		return out, []string{reason}, nil
	}

	f, err := metric.NewForecast(metric.Points(sorted), p.Horizon())
	if errors.Is(err, metric.ErrInsufficientHistory) {
		out.Reason = err.Error()
		p.logger.Info("Forecast unavailable", zap.String("indicator", q.Name), zap.Error(err))
		return out, append(warns, fmt.Sprintf("%s forecast unavailable: %v", q.Name, err)), nil
	}
	if err != nil {
		return model.IndicatorForecast{}, nil, err
	}

	out.Available = true
	out.Slope = f.Trend.Slope
	out.Intercept = f.Trend.Intercept
	out.Historical = f.Historical
	out.Forecast = f.Future
	return out, warns, nil
}

func (p *Pipeline) scenario(s metric.Scenario) (metric.Scenario, error) {
	if s != "" {
		return metric.ParseScenario(string(s))
	}
	if p.config.Forecast.DefaultScenario == "" {
		return metric.Base, nil
	}
	return metric.ParseScenario(p.config.Forecast.DefaultScenario)
}

func (p *Pipeline) projection(v view.Views, s metric.Scenario) (*model.Projection, []string, error) {
	scenario, err := p.scenario(s)
	if err != nil {
		return nil, nil, err
	}

	target := p.config.Forecast.Target
	if target == 0 {
		target = metric.DefaultTarget
	}

	proj := &model.Projection{
		Indicator:  view.AccountOwnership.Name,
		Scenario:   string(scenario),
		Multiplier: scenario.Multiplier(),
		Target:     target,
	}

	sorted, warns, err := p.series(v, view.AccountOwnership)
	if err != nil {
		reason, ok := p.unavailable("projection", err)
		if !ok {
			return nil, nil, err
		}
		proj.Reason = reason
		return proj, []string{reason}, nil
	}
	if latest, ok := metric.LatestAndGrowth(sorted); ok {
		proj.Current = latest.Latest
	}

	f, err := metric.NewForecast(metric.Points(sorted), p.Horizon())
	if errors.Is(err, metric.ErrInsufficientHistory) {
		proj.Reason = err.Error()
		return proj, append(warns, fmt.Sprintf("projection unavailable: %v", err)), nil
	}
	if err != nil {
		return nil, nil, err
	}

	projected, err := metric.ProjectScenario(f.Future, scenario)
	if err != nil {
		return nil, nil, err
	}
	gap, ok := metric.TargetGap(projected, target)
	if !ok {
		proj.Reason = "empty forecast horizon"
		return proj, warns, nil
	}

	proj.Available = true
	proj.Forecast = projected
	proj.Projected = projected[len(projected)-1].Value
	proj.Gap = gap
	return proj, warns, nil
}

// attachBrief adds the narrative after every number is computed; failures
// only add a warning
func (p *Pipeline) attachBrief(ctx context.Context, report *model.Report, sources []string) {
	if !p.briefer.IsEnabled() {
		report.Warnings = append(report.Warnings, "brief skipped: no LLM provider configured")
		return
	}
	brief, err := p.briefer.Brief(ctx, *report, sources)
	if err != nil {
		p.logger.Warn("Brief generation failed", zap.Error(err))
		report.Warnings = append(report.Warnings, fmt.Sprintf("brief failed: %v", err))
		return
	}
	report.Brief = brief
}

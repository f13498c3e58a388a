package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

// Renderer writes reports as JSON, Markdown or a terminal summary
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// WriteJSON writes the report as indented JSON
func (r *Renderer) WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// RenderJSON writes the report as JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteJSON(w, report) })
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, func(w io.Writer) error { return r.WriteMarkdown(w, report) })
}

// writeFile writes next to path and renames into place
func writeFile(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".fiforecast-*"+filepath.Ext(path))
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// pct formats a percentage with one decimal
func pct(v float64) string {
	return Round(v, 1).StringFixed(1) + "%"
}

// signed formats a value with an explicit sign and one decimal
func signed(v float64) string {
	s := Round(v, 1).StringFixed(1)
	if !strings.HasPrefix(s, "-") {
		s = "+" + s
	}
	return s
}

func growth(h model.Headline) string {
	if !h.GrowthDefined {
		return "n/a"
	}
	return signed(h.GrowthRate) + "%"
}

func year(y int) string {
	if y == 0 {
		return "undated"
	}
	return fmt.Sprint(y)
}

// WriteMarkdown writes the report as a Markdown document
func (r *Renderer) WriteMarkdown(w io.Writer, report *model.Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Report: %s\n\n", report.Subject)
	fmt.Fprintf(&b, "- Source: `%s`\n", report.Source)
	fmt.Fprintf(&b, "- Generated: %s\n\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"))

	if o := report.Overview; o != nil {
		b.WriteString("## Overview\n\n")
		b.WriteString("| Metric | Value | Year | Growth |\n|---|---|---|---|\n")
		for _, h := range []model.Headline{o.AccountOwnership, o.MobileMoney} {
			label := h.Label
			if h.Fallback {
				label += " (default)"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", label, pct(h.Value), year(h.Year), growth(h))
		}
		fmt.Fprintf(&b, "\nObservations: %d, events: %d, impact links: %d\n\n", o.Observations, o.Events, o.ImpactLinks)

		if len(o.Growth) > 0 {
			b.WriteString("### Growth Rate Highlights\n\n")
			b.WriteString("| Period | Change (pp) | Previous | Current |\n|---|---|---|---|\n")
			for _, g := range o.Growth {
				fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", g.Period, signed(g.ChangePP), pct(g.Previous), pct(g.Current))
			}
			b.WriteString("\n")
		}
	}

	if t := report.Trends; t != nil {
		fmt.Fprintf(&b, "## Trends (%s to %s)\n\n", t.From, t.To)
		if len(t.Indicators) > 0 {
			fmt.Fprintf(&b, "Selected indicators: %s\n\n", strings.Join(t.Indicators, ", "))
		}
		for _, s := range t.Series {
			fmt.Fprintf(&b, "### %s\n\n", s.Name)
			if s.Reason != "" {
				fmt.Fprintf(&b, "_%s_\n\n", s.Reason)
				continue
			}
			if len(s.Points) == 0 {
				b.WriteString("_No observations in range._\n\n")
				continue
			}
			b.WriteString("| Year | Value |\n|---|---|\n")
			for _, p := range s.Points {
				fmt.Fprintf(&b, "| %d | %s |\n", p.Year, pct(p.Value))
			}
			b.WriteString("\n")
		}
		if len(t.Timeline) > 0 {
			b.WriteString("### Events\n\n")
			for _, e := range t.Timeline {
				date := e.Date.String()
				if date == "" {
					date = "undated"
				}
				fmt.Fprintf(&b, "- %s: %s", date, e.Name)
				if e.Category != "" {
					fmt.Fprintf(&b, " (%s)", e.Category)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		if len(t.Impacts) > 0 {
			b.WriteString("### Impact Links\n\n")
			b.WriteString("| Indicator | Event | Direction | Magnitude | Lag (months) |\n|---|---|---|---|---|\n")
			for _, i := range t.Impacts {
				event := i.Event
				if !i.Resolved {
					event = i.ParentID + " (unresolved)"
				}
				fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", i.Indicator, event, i.Direction, optFloat(i.Magnitude), optInt(i.LagMonths))
			}
			b.WriteString("\n")
		}
	}

	if len(report.Forecasts) > 0 {
		b.WriteString("## Forecasts\n\n")
		for _, f := range report.Forecasts {
			fmt.Fprintf(&b, "### %s\n\n", f.Indicator)
			if !f.Available {
				fmt.Fprintf(&b, "_Unavailable: %s._\n\n", f.Reason)
				continue
			}
			fmt.Fprintf(&b, "Trend: %s pp per year\n\n", signed(f.Slope))
			b.WriteString("| Year | Forecast |\n|---|---|\n")
			for _, p := range f.Forecast {
				fmt.Fprintf(&b, "| %d | %s |\n", p.Year, pct(p.Value))
			}
			b.WriteString("\n")
		}
	}

	if p := report.Projection; p != nil {
		fmt.Fprintf(&b, "## Projection: %s scenario\n\n", p.Scenario)
		if !p.Available {
			fmt.Fprintf(&b, "_Unavailable: %s._\n\n", p.Reason)
		} else {
			fmt.Fprintf(&b, "- Current rate: %s\n", pct(p.Current))
			last := p.Forecast[len(p.Forecast)-1].Year
			fmt.Fprintf(&b, "- Projected rate (%d): %s\n", last, pct(p.Projected))
			fmt.Fprintf(&b, "- Gap to %s target: %s pp\n\n", pct(p.Target), signed(p.Gap))
		}
	}

	if br := report.Brief; br != nil {
		fmt.Fprintf(&b, "## Brief (%s/%s)\n\n%s\n\n", br.Provider, br.Model, br.Markdown)
	}

	if len(report.Warnings) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, warn := range report.Warnings {
			fmt.Fprintf(&b, "- %s\n", warn)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n_Forecasts are linear extrapolations of observed values; scenarios scale the baseline by fixed multipliers._\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func title(s string) string {
	if s == "" {
		return "Report"
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func optFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return Round(*v, 2).String()
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(*v)
}

// WriteSummary prints a short terminal summary of the report
func (r *Renderer) WriteSummary(w io.Writer, report *model.Report) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "  %s\n", title(report.Subject))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Source: %s\n\n", report.Source)

	if o := report.Overview; o != nil {
		for _, h := range []model.Headline{o.AccountOwnership, o.MobileMoney} {
			note := ""
			if h.Fallback {
				note = " (default)"
			}
			fmt.Fprintf(w, "%-24s %8s  %s  growth %s%s\n", h.Label+":", pct(h.Value), year(h.Year), growth(h), note)
		}
		fmt.Fprintf(w, "%-24s %8d\n", "Events cataloged:", o.Events)
		fmt.Fprintf(w, "%-24s %8d\n", "Impact links:", o.ImpactLinks)
		fmt.Fprintln(w)
	}

	if t := report.Trends; t != nil {
		fmt.Fprintf(w, "Trends %s to %s\n", t.From, t.To)
		for _, s := range t.Series {
			fmt.Fprintf(w, "  %-28s %d points\n", s.Name, len(s.Points))
		}
		fmt.Fprintf(w, "  %-28s %d\n", "Events on timeline", len(t.Timeline))
		fmt.Fprintln(w)
	}

	for _, f := range report.Forecasts {
		if !f.Available {
			fmt.Fprintf(w, "Forecast %s: unavailable (%s)\n", f.Indicator, f.Reason)
			continue
		}
		fmt.Fprintf(w, "Forecast %s:", f.Indicator)
		for _, p := range f.Forecast {
			fmt.Fprintf(w, "  %d %s", p.Year, pct(p.Value))
		}
		fmt.Fprintln(w)
	}

	if p := report.Projection; p != nil {
		if p.Available {
			fmt.Fprintf(w, "Projection (%s): %s, %s pp to %s target\n", p.Scenario, pct(p.Projected), signed(p.Gap), pct(p.Target))
		} else {
			fmt.Fprintf(w, "Projection (%s): unavailable (%s)\n", p.Scenario, p.Reason)
		}
	}

	if report.Brief != nil {
		fmt.Fprintf(w, "\n%s\n", report.Brief.Markdown)
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "\n⚠  %d warning(s)\n", len(report.Warnings))
		for _, warn := range report.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}
	fmt.Fprintln(w, rule)
}

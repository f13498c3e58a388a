package model

import "time"

// Report is the complete derived view of one dataset snapshot.
// Sections are nil when they were not requested.
type Report struct {
	Subject     string    `json:"subject"`
	Source      string    `json:"source"` // path the unified table was loaded from
	GeneratedAt time.Time `json:"generated_at"`

	Overview   *Overview           `json:"overview,omitempty"`
	Trends     *Trends             `json:"trends,omitempty"`
	Forecasts  []IndicatorForecast `json:"forecasts,omitempty"`
	Projection *Projection         `json:"projection,omitempty"`

	Warnings []string `json:"warnings,omitempty"` // degraded sections, dropped rows, bad dates
	Brief    *Brief   `json:"brief,omitempty"`    // optional, never feeds back into the numbers
}

// YearValue is one (year, value) pair of a series
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// LatestSummary describes the newest value of a sorted series
type LatestSummary struct {
	Latest        float64 `json:"latest"`
	LatestDate    Date    `json:"latest_date"`
	Previous      float64 `json:"previous,omitempty"`
	HasPrevious   bool    `json:"has_previous"`
	GrowthRate    float64 `json:"growth_rate"`    // percent
	GrowthDefined bool    `json:"growth_defined"` // false on a zero or null baseline
}

// PeriodChange is the change between two consecutive observations
type PeriodChange struct {
	Period   string  `json:"period"` // "<prevYear>-<currYear>"
	ChangePP float64 `json:"change_pp"`
	Previous float64 `json:"previous"`
	Current  float64 `json:"current"`
}

// Headline is a single overview metric card
type Headline struct {
	Label         string  `json:"label"`
	Value         float64 `json:"value"`
	Year          int     `json:"year,omitempty"`
	GrowthRate    float64 `json:"growth_rate"`
	GrowthDefined bool    `json:"growth_defined"`
	Fallback      bool    `json:"fallback"` // value is the configured default, not data
}

// Overview is the key-metrics page
type Overview struct {
	AccountOwnership Headline       `json:"account_ownership"`
	MobileMoney      Headline       `json:"mobile_money"`
	Observations     int            `json:"observations"`
	Events           int            `json:"events"`
	ImpactLinks      int            `json:"impact_links"`
	Growth           []PeriodChange `json:"growth,omitempty"`
}

// Series is the dated trajectory of one indicator query
type Series struct {
	Name   string      `json:"name"`
	Points []YearValue `json:"points"`
	Reason string      `json:"reason,omitempty"` // set when the series could not be derived
}

// TimelineEntry is one event marker on the trends page
type TimelineEntry struct {
	Date     Date   `json:"date"`
	Name     string `json:"name"`
	Category string `json:"category,omitempty"`
}

// ImpactEntry is an impact link joined to its parent event
type ImpactEntry struct {
	Indicator string   `json:"indicator"`
	Event     string   `json:"event,omitempty"` // empty when the parent is unresolved
	ParentID  string   `json:"parent_id"`
	Resolved  bool     `json:"resolved"`
	Direction string   `json:"direction,omitempty"`
	Magnitude *float64 `json:"magnitude,omitempty"`
	LagMonths *int     `json:"lag_months,omitempty"`
	Evidence  string   `json:"evidence_basis,omitempty"`
}

// Trends is the trajectory page
type Trends struct {
	From       Date            `json:"from"`
	To         Date            `json:"to"`
	Indicators []string        `json:"indicators"` // selected codes
	Series     []Series        `json:"series"`
	Timeline   []TimelineEntry `json:"timeline,omitempty"`
	Impacts    []ImpactEntry   `json:"impacts,omitempty"`
}

// FittedPoint compares an actual historical value with the trend line
type FittedPoint struct {
	Year   int     `json:"year"`
	Actual float64 `json:"actual"`
	Fitted float64 `json:"fitted"`
}

// IndicatorForecast is one indicator's linear forecast, or the reason it
// is unavailable
type IndicatorForecast struct {
	Indicator  string        `json:"indicator"`
	Available  bool          `json:"available"`
	Reason     string        `json:"reason,omitempty"`
	Slope      float64       `json:"slope,omitempty"`
	Intercept  float64       `json:"intercept,omitempty"`
	Historical []FittedPoint `json:"historical,omitempty"`
	Forecast   []YearValue   `json:"forecast,omitempty"`
}

// Projection is a scenario-multiplied forecast with its gap to target
type Projection struct {
	Indicator  string      `json:"indicator"`
	Scenario   string      `json:"scenario"`
	Multiplier float64     `json:"multiplier"`
	Available  bool        `json:"available"`
	Reason     string      `json:"reason,omitempty"`
	Current    float64     `json:"current"`
	Forecast   []YearValue `json:"forecast,omitempty"`
	Projected  float64     `json:"projected"` // last horizon year
	Target     float64     `json:"target"`
	Gap        float64     `json:"gap"` // projected - target
}

// Brief is an optional narrative written by a language model
type Brief struct {
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	Markdown  string   `json:"markdown"`
	CitedURLs []string `json:"cited_urls,omitempty"`
}

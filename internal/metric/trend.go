package metric

import (
	"errors"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// ErrInsufficientHistory is returned when a series has fewer than two points
var ErrInsufficientHistory = errors.New("insufficient history: need at least 2 points")

// MinPoints is the smallest series a trend is fitted on
const MinPoints = 2

// Trend is the least-squares line value = Slope*year + Intercept
type Trend struct {
	Slope     float64
	Intercept float64
	N         int // points the line was fitted on
}

// FitTrend fits an ordinary least-squares line through points. ok is false
// below MinPoints. When every point has the same year the slope is zero and
// the intercept is the mean value.
func FitTrend(points []model.YearValue) (Trend, bool) {
	n := len(points)
	if n < MinPoints {
		return Trend{}, false
	}

	// centred on the means
	var sumX, sumY float64
	for _, p := range points {
		sumX += float64(p.Year)
		sumY += p.Value
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxy, sxx float64
	for _, p := range points {
		dx := float64(p.Year) - meanX
		sxy += dx * (p.Value - meanY)
		sxx += dx * dx
	}

	t := Trend{N: n}
	if sxx != 0 {
		t.Slope = sxy / sxx
	}
	t.Intercept = meanY - t.Slope*meanX
	return t, true
}

// Predict evaluates the line at year
func (t Trend) Predict(year int) float64 {
	return t.Slope*float64(year) + t.Intercept
}

// Horizon names the forecast years Current+1 through Current+Years
type Horizon struct {
	Current int
	Years   int
}

// DefaultHorizon covers 2025 to 2027
var DefaultHorizon = Horizon{Current: 2024, Years: 3}

// FutureYears lists the horizon years in ascending order
func (h Horizon) FutureYears() []int {
	if h.Years <= 0 {
		return nil
	}
	years := make([]int, h.Years)
	for i := range years {
		years[i] = h.Current + 1 + i
	}
	return years
}

// First returns the first horizon year
func (h Horizon) First() int { return h.Current + 1 }

// Last returns the last horizon year
func (h Horizon) Last() int { return h.Current + h.Years }

// Forecast is a fitted trend with its in-sample and horizon values
type Forecast struct {
	Trend      Trend
	Historical []model.FittedPoint
	Future     []model.YearValue
}

// NewForecast fits points and evaluates the line at every historical and
// horizon year
func NewForecast(points []model.YearValue, h Horizon) (Forecast, error) {
	trend, ok := FitTrend(points)
	if !ok {
		return Forecast{}, ErrInsufficientHistory
	}

	f := Forecast{Trend: trend}
	for _, p := range points {
		f.Historical = append(f.Historical, model.FittedPoint{
			Year:   p.Year,
			Actual: p.Value,
			Fitted: trend.Predict(p.Year),
		})
	}
	for _, year := range h.FutureYears() {
		f.Future = append(f.Future, model.YearValue{Year: year, Value: trend.Predict(year)})
	}
	return f, nil
}

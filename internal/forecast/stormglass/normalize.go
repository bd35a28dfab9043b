package stormglass

import (
	"math"

	"github.com/i474232898/surf-forecast/internal/forecast"
)

// DefaultSource is the data source used when none is configured.
const DefaultSource = "noaa"

// Sources maps a data source name to the value it reports for one metric.
type Sources map[string]float64

// Point is one hour of raw StormGlass data.
type Point struct {
	Time           string  `json:"time"`
	WaveHeight     Sources `json:"waveHeight"`
	WaveDirection  Sources `json:"waveDirection"`
	SwellDirection Sources `json:"swellDirection"`
	SwellHeight    Sources `json:"swellHeight"`
	SwellPeriod    Sources `json:"swellPeriod"`
	WindDirection  Sources `json:"windDirection"`
	WindSpeed      Sources `json:"windSpeed"`
}

// ForecastResponse is the body of the weather/point endpoint.
// Hours is nil when the key is missing or null.
type ForecastResponse struct {
	Hours *[]Point `json:"hours"`
}

// Normalizer turns raw points into forecast points using a single preferred source.
type Normalizer struct {
	source string
}

func NewNormalizer(source string) *Normalizer {
	if source == "" {
		source = DefaultSource
	}
	return &Normalizer{source: source}
}

// Source returns the preferred source name.
func (n *Normalizer) Source() string {
	return n.source
}

// IsValidPoint reports whether the point has a time and a non-zero value from the
// preferred source for every metric.
func (n *Normalizer) IsValidPoint(p Point) bool {
	if p.Time == "" {
		return false
	}
	for _, m := range []Sources{
		p.SwellDirection,
		p.SwellHeight,
		p.SwellPeriod,
		p.WaveDirection,
		p.WaveHeight,
		p.WindDirection,
		p.WindSpeed,
	} {
		if !n.hasValue(m) {
			return false
		}
	}
	return true
}

func (n *Normalizer) hasValue(m Sources) bool {
	v, ok := m[n.source]
	return ok && v != 0 && !math.IsNaN(v)
}

// Normalize drops incomplete points and projects the rest, preserving order.
func (n *Normalizer) Normalize(points []Point) []forecast.ForecastPoint {
	out := make([]forecast.ForecastPoint, 0, len(points))
	for _, p := range points {
		if !n.IsValidPoint(p) {
			continue
		}
		out = append(out, forecast.ForecastPoint{
			Time:           p.Time,
			SwellDirection: p.SwellDirection[n.source],
			SwellHeight:    p.SwellHeight[n.source],
			SwellPeriod:    p.SwellPeriod[n.source],
			WaveDirection:  p.WaveDirection[n.source],
			WaveHeight:     p.WaveHeight[n.source],
			WindDirection:  p.WindDirection[n.source],
			WindSpeed:      p.WindSpeed[n.source],
		})
	}
	return out
}

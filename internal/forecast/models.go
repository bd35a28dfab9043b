package forecast

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BeachPosition is the direction a beach faces.
type BeachPosition string

const (
	PositionNorth BeachPosition = "N"
	PositionSouth BeachPosition = "S"
	PositionEast  BeachPosition = "E"
	PositionWest  BeachPosition = "W"
)

// ForecastPoint is one normalized hour of provider data.
type ForecastPoint struct {
	Time           string  `json:"time"`
	WaveHeight     float64 `json:"waveHeight"`
	WaveDirection  float64 `json:"waveDirection"`
	SwellDirection float64 `json:"swellDirection"`
	SwellHeight    float64 `json:"swellHeight"`
	SwellPeriod    float64 `json:"swellPeriod"`
	WindDirection  float64 `json:"windDirection"`
	WindSpeed      float64 `json:"windSpeed"`
}

// Beach is a named location we forecast for.
type Beach struct {
	Name     string        `json:"name" mapstructure:"name" validate:"required"`
	Position BeachPosition `json:"position" mapstructure:"position" validate:"required,oneof=N S E W"`
	Lat      float64       `json:"lat" mapstructure:"lat" validate:"gte=-90,lte=90"`
	Lng      float64       `json:"lng" mapstructure:"lng" validate:"gte=-180,lte=180"`
	User     string        `json:"user,omitempty" mapstructure:"user"`
}

// Validate checks the beach metadata.
func (b Beach) Validate() error {
	return validate.Struct(b)
}

// BeachForecast is a forecast point enriched with the metadata of its beach.
// The owner of the beach is not carried over.
type BeachForecast struct {
	ForecastPoint
	Lat      float64       `json:"lat"`
	Lng      float64       `json:"lng"`
	Name     string        `json:"name"`
	Position BeachPosition `json:"position"`
	Rating   int           `json:"rating"`
}

// TimeForecast groups the forecasts of every beach sharing the same time.
type TimeForecast struct {
	Time     string          `json:"time"`
	Forecast []BeachForecast `json:"forecast"`
}

// Run records the outcome of one aggregation pass. Only metadata is kept.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"` // always UTC
	FinishedAt time.Time `json:"finishedAt"`
	Beaches    int       `json:"beaches"`
	TimeSlots  int       `json:"timeSlots"`
	Points     int       `json:"points"`
	Error      string    `json:"error,omitempty"`
}

// Failed reports whether the run ended with an error.
func (r Run) Failed() bool {
	return r.Error != ""
}

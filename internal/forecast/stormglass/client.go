package stormglass

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/i474232898/surf-forecast/internal/forecast"
	"github.com/i474232898/surf-forecast/internal/request"
)

// apiParams is the list of metrics requested from StormGlass.
const apiParams = "swellDirection,swellHeight,swellPeriod,waveDirection,waveHeight,windDirection,windSpeed"

var errMissingHours = errors.New("response body has no hours")

// Getter performs a single GET request.
type Getter interface {
	Get(ctx context.Context, url string, headers map[string]string) (*request.Response, error)
}

// Client implements forecast.PointFetcher for StormGlass.
type Client struct {
	baseURL    string
	token      string
	request    Getter
	normalizer *Normalizer
	logger     *zap.Logger
}

func NewClient(req Getter, baseURL, token, source string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    baseURL,
		token:      token,
		request:    req,
		normalizer: NewNormalizer(source),
		logger:     logger.Named("stormglass"),
	}
}

var _ forecast.PointFetcher = (*Client)(nil)

// FetchPoints retrieves the hourly forecast for a coordinate and normalizes it.
func (c *Client) FetchPoints(ctx context.Context, lat, lng float64) ([]forecast.ForecastPoint, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	values.Set("params", apiParams)
	values.Set("source", c.normalizer.Source())

	u := fmt.Sprintf("%s/weather/point?%s", c.baseURL, values.Encode())

	resp, err := c.request.Get(ctx, u, map[string]string{"Authorization": c.token})
	if err != nil {
		return nil, classify(err)
	}

	var payload ForecastResponse
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, &Error{Kind: KindTransport, Message: err.Error(), Err: err}
	}
	if payload.Hours == nil {
		return nil, &Error{Kind: KindTransport, Message: errMissingHours.Error(), Err: errMissingHours}
	}

	hours := *payload.Hours
	points := c.normalizer.Normalize(hours)
	if dropped := len(hours) - len(points); dropped > 0 {
		c.logger.Debug("dropped incomplete points",
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
			zap.Int("dropped", dropped))
	}

	return points, nil
}

func classify(err error) *Error {
	if request.IsRequestError(err) {
		var re *request.ResponseError
		errors.As(err, &re)
		return &Error{
			Kind:    KindService,
			Status:  re.Status,
			Message: fmt.Sprintf("Error: %s Code: %d", serializeBody(re.Data), re.Status),
			Err:     err,
		}
	}
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

// serializeBody renders an error body as compact JSON. Non-JSON bodies become a JSON string.
func serializeBody(data []byte) string {
	if json.Valid(data) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err == nil {
			return buf.String()
		}
	}
	quoted, _ := json.Marshal(string(data))
	return string(quoted)
}

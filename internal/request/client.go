package request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Config bundles the HTTP client and the resilience settings for one upstream.
type Config struct {
	Name    string
	Timeout time.Duration

	// RateLimit is the number of requests per second allowed towards the upstream.
	// Zero disables client-side limiting.
	RateLimit float64
	Burst     int
}

// Response is a successful upstream answer.
type Response struct {
	Data   []byte
	Status int
}

// ResponseError is returned when the upstream answered with a non-2xx status.
type ResponseError struct {
	Status int
	Data   []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("request failed with status code %d", e.Status)
}

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
	errRateLimit    = errors.New("rate limit wait canceled")
)

// IsRequestError reports whether err carries an upstream response, as opposed to a
// failure that happened before any response was received.
func IsRequestError(err error) bool {
	var re *ResponseError
	return errors.As(err, &re)
}

// Client performs single GET requests guarded by a circuit breaker and a rate limiter.
// It never retries.
type Client struct {
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: cfg.Timeout}, cfg)
}

// NewClientWithHTTP is like NewClient but uses the given http.Client.
func NewClientWithHTTP(httpClient *http.Client, cfg Config) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// A 4xx is the upstream answering; only transport failures and 5xx trip the breaker.
		IsSuccessful: func(err error) bool {
			var re *ResponseError
			if errors.As(err, &re) {
				return re.Status < 500
			}
			return err == nil
		},
	})

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		httpClient: httpClient,
		circuit:    cb,
		limiter:    limiter,
	}
}

// Get issues one GET to url with the given headers.
// A non-2xx answer is returned as *ResponseError.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*Response, error) {
	if c.httpClient == nil {
		return nil, errNoHTTPClient
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", errRateLimit, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	result, err := c.circuit.Execute(func() (interface{}, error) {
		resp, execErr := c.httpClient.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read response body: %w", readErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &ResponseError{Status: resp.StatusCode, Data: body}
		}

		return &Response{Data: body, Status: resp.StatusCode}, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}

package request

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestGetReturnsBodyAndStatus(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.Header.Get("Authorization"), "token")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hours":[]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "test", Timeout: time.Second})
	resp, err := c.Get(context.Background(), srv.URL, map[string]string{"Authorization": "token"})
	is.NoErr(err)
	is.Equal(resp.Status, http.StatusOK)
	is.Equal(string(resp.Data), `{"hours":[]}`)
}

func TestGetNon2xxIsRequestError(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors":["Rate Limit reached"]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "test", Timeout: time.Second})
	_, err := c.Get(context.Background(), srv.URL, nil)
	is.True(err != nil)
	is.True(IsRequestError(err))

	re := err.(*ResponseError)
	is.Equal(re.Status, http.StatusTooManyRequests)
	is.Equal(string(re.Data), `{"errors":["Rate Limit reached"]}`)
}

func TestGetTransportFailureIsNotRequestError(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(Config{Name: "test", Timeout: time.Second})
	_, err := c.Get(context.Background(), url, nil)
	is.True(err != nil)
	is.True(!IsRequestError(err))
}

func TestGetCanceledWhileRateLimited(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "test", Timeout: time.Second, RateLimit: 0.001, Burst: 1})

	_, err := c.Get(context.Background(), srv.URL, nil)
	is.NoErr(err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Get(ctx, srv.URL, nil)
	is.True(err != nil)
	is.True(!IsRequestError(err))
}

func TestClientErrorsDoNotOpenCircuit(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "test", Timeout: time.Second})
	for i := 0; i < 10; i++ {
		_, err := c.Get(context.Background(), srv.URL, nil)
		is.True(IsRequestError(err))
	}
}

func TestServerErrorsOpenCircuit(t *testing.T) {
	is := is.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{Name: "test", Timeout: time.Second})
	for i := 0; i < 6; i++ {
		_, err := c.Get(context.Background(), srv.URL, nil)
		is.True(IsRequestError(err))
	}

	_, err := c.Get(context.Background(), srv.URL, nil)
	is.True(errors.Is(err, errCircuitOpen))
	is.True(!IsRequestError(err))
}

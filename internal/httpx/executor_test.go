package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olive-green/api-scheduler/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	e := New(10*time.Second, 5*time.Second)
	out := e.Execute(context.Background(), Request{URL: srv.URL, Method: models.MethodGET})

	assert.Equal(t, models.RunSuccess, out.Status)
	require.NotNil(t, out.StatusCode)
	assert.Equal(t, 200, *out.StatusCode)
	require.NotNil(t, out.ResponseBody)
	assert.Equal(t, "pong", *out.ResponseBody)
	assert.GreaterOrEqual(t, out.LatencyMS, 0.0)
}

func TestExecutor_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := New(10*time.Second, 5*time.Second)
	out := e.Execute(context.Background(), Request{URL: srv.URL, Method: models.MethodGET})

	assert.Equal(t, models.RunFailed, out.Status)
	require.NotNil(t, out.StatusCode)
	assert.Equal(t, 503, *out.StatusCode)
	require.NotNil(t, out.ErrorType)
	assert.Equal(t, models.ErrorHTTP5xx, *out.ErrorType)
}

func TestExecutor_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	e := New(10*time.Second, 5*time.Second)
	out := e.Execute(context.Background(), Request{URL: srv.URL, Method: models.MethodGET})

	assert.Equal(t, models.RunFailed, out.Status)
	require.NotNil(t, out.ErrorType)
	assert.Equal(t, models.ErrorHTTP4xx, *out.ErrorType)
}

func TestExecutor_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(10*time.Second, 50*time.Millisecond)
	out := e.Execute(context.Background(), Request{URL: srv.URL, Method: models.MethodGET})

	assert.Equal(t, models.RunTimeout, out.Status)
	require.NotNil(t, out.ErrorType)
	assert.Equal(t, models.ErrorTimeout, *out.ErrorType)
	assert.Nil(t, out.StatusCode)
}

func TestExecutor_DNSError(t *testing.T) {
	e := New(2*time.Second, 3*time.Second)
	out := e.Execute(context.Background(), Request{URL: "http://no.such.host.invalid/", Method: models.MethodGET})

	assert.Equal(t, models.RunDNSError, out.Status)
	require.NotNil(t, out.ErrorType)
	assert.Equal(t, models.ErrorDNS, *out.ErrorType)
}

func TestExecutor_JSONBodyGetsContentType(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(10*time.Second, 5*time.Second)
	body := `{"key":"value"}`
	e.Execute(context.Background(), Request{URL: srv.URL, Method: models.MethodPOST, Body: &body})

	assert.Equal(t, "application/json", gotContentType)
}

func TestExecutor_NonJSONBodyNoContentType(t *testing.T) {
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := New(10*time.Second, 5*time.Second)
	body := "plain text, not json"
	e.Execute(context.Background(), Request{URL: srv.URL, Method: models.MethodPOST, Body: &body})

	assert.Empty(t, gotContentType)
}

// Package httpx issues the single outbound request a schedule firing makes
// and classifies its outcome.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/olive-green/api-scheduler/internal/database/models"
)

const (
	maxOpenConns = 100
	maxIdleConns = 20
)

// Request is everything the Executor needs to fire one HTTP call.
type Request struct {
	URL     string
	Method  models.HTTPMethod
	Headers models.Headers
	Body    *string
}

// Outcome is the classified result of one Execute call, shaped to drop
// directly into a Run's terminal fields.
type Outcome struct {
	Status            models.RunStatus
	LatencyMS         float64
	StatusCode        *int
	ErrorMessage      *string
	ErrorType         *models.ErrorType
	ResponseHeaders   models.Headers
	ResponseBody      *string
	ResponseSizeBytes *int64
}

// Executor holds the single shared HTTP client every firing executes
// through; a long-lived client amortizes TLS and TCP handshakes across
// firings instead of paying them on every request.
type Executor struct {
	client *resty.Client
}

// New builds an Executor with connect timeout connectTimeout and total
// request timeout totalTimeout, backed by a pool capped
// (100 open, 20 idle).
func New(connectTimeout, totalTimeout time.Duration) *Executor {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		MaxConnsPerHost:     maxOpenConns,
		MaxIdleConns:        maxOpenConns,
		MaxIdleConnsPerHost: maxIdleConns,
		IdleConnTimeout:     90 * time.Second,
	}

	client := resty.New().
		SetTransport(transport).
		SetTimeout(totalTimeout).
		SetRetryCount(0)

	return &Executor{client: client}
}

// Execute performs req and classifies the outcome. It never returns an
// error: every failure mode is folded into the returned Outcome, per
// firing errors are never propagated as exceptions.
func (e *Executor) Execute(ctx context.Context, req Request) Outcome {
	start := time.Now()

	r := e.client.R().SetContext(ctx)
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}

	if req.Body != nil && req.Method.HasBody() {
		applyBody(r, req.Headers, *req.Body)
	}

	resp, err := r.Execute(string(req.Method), req.URL)
	latency := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		return classifyError(err, latency)
	}
	return classifyResponse(resp, latency)
}

// applyBody attempts to parse body as JSON: valid
// JSON goes out as a JSON payload with an implicit content-type (unless the
// caller already set one); anything else goes out as a raw byte body with
// no content-type injected.
func applyBody(r *resty.Request, headers models.Headers, body string) {
	var parsed interface{}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		r.SetBody(body)
		return
	}

	if !hasContentType(headers) {
		r.SetHeader("Content-Type", "application/json")
	}
	r.SetBody(body)
}

func hasContentType(headers models.Headers) bool {
	for k := range headers {
		if strings.EqualFold(k, "Content-Type") {
			return true
		}
	}
	return false
}

func classifyResponse(resp *resty.Response, latencyMS float64) Outcome {
	code := resp.StatusCode()
	headers := models.Headers{}
	for k := range resp.Header() {
		headers[k] = resp.Header().Get(k)
	}
	body := resp.String()
	size := int64(len(resp.Body()))
	truncated := body
	if len(truncated) > models.MaxResponseBodyBytes {
		truncated = truncated[:models.MaxResponseBodyBytes]
	}

	out := Outcome{
		LatencyMS:         latencyMS,
		StatusCode:        &code,
		ResponseHeaders:   headers,
		ResponseBody:      &truncated,
		ResponseSizeBytes: &size,
	}

	switch {
	case code >= 200 && code < 300:
		out.Status = models.RunSuccess
	case code >= 500:
		out.Status = models.RunFailed
		out.ErrorType = errType(models.ErrorHTTP5xx)
		out.ErrorMessage = msg("server error: %d", code)
	case code >= 400:
		out.Status = models.RunFailed
		out.ErrorType = errType(models.ErrorHTTP4xx)
		out.ErrorMessage = msg("client error: %d", code)
	default:
		out.Status = models.RunFailed
		out.ErrorType = errType(models.ErrorHTTPUnexpect)
		out.ErrorMessage = msg("unexpected status: %d", code)
	}
	return out
}

func classifyError(err error, latencyMS float64) Outcome {
	text := err.Error()
	lower := strings.ToLower(text)

	out := Outcome{LatencyMS: latencyMS}

	var netErr net.Error
	var dnsErr *net.DNSError

	switch {
	case errors.As(err, &dnsErr):
		out.Status = models.RunDNSError
		out.ErrorType = errType(models.ErrorDNS)
	case strings.Contains(lower, "name or service not known"),
		strings.Contains(lower, "nodename nor servname provided"),
		strings.Contains(lower, "no such host"):
		out.Status = models.RunDNSError
		out.ErrorType = errType(models.ErrorDNS)
	case errors.As(err, &netErr) && netErr.Timeout(),
		strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "client.timeout exceeded"):
		out.Status = models.RunTimeout
		out.ErrorType = errType(models.ErrorTimeout)
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "network is unreachable"),
		strings.Contains(lower, "no route to host"):
		out.Status = models.RunConnectionError
		out.ErrorType = errType(models.ErrorConnection)
	default:
		out.Status = models.RunFailed
		out.ErrorType = errType(models.ErrorUnknown)
	}

	out.ErrorMessage = &text
	return out
}

func errType(t models.ErrorType) *models.ErrorType { return &t }

func msg(format string, args ...interface{}) *string {
	s := fmt.Sprintf(format, args...)
	return &s
}

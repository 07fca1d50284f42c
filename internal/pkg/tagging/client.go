package tagging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ds124wfegd/autotagger/internal/entity"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultPath       = "/predict_tags"
	DefaultTimeout    = 30 * time.Second
	DefaultRetryDelay = 500 * time.Millisecond

	maxResponseBytes = 4 << 20
)

var (
	errMalformedBody = errors.New("malformed response body")
	errMissingBody   = errors.New(`response has no "body" object`)
)

type Client interface {
	FetchTags(ctx context.Context, payload entity.EncodedPayload) (*entity.TagResult, error)
}

type Config struct {
	BaseURL    string
	Path       string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	// RateLimit is requests per second towards the service, 0 disables it.
	RateLimit float64
	Burst     int
}

type httpClient struct {
	endpoint   string
	timeout    time.Duration
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
	http       *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config, hc *http.Client) (Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid tagging service URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("unsupported tagging service URL scheme: %q", base.Scheme)
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	endpoint := base.JoinPath(path).String()

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = DefaultRetryDelay
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if hc == nil {
		hc = &http.Client{}
	}

	c := &httpClient{
		endpoint:   endpoint,
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.RetryDelay,
		maxDelay:   cfg.RetryDelay * 16,
		http:       hc,
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// FetchTags posts the payload to the tagging service. Only transport
// failures are retried; a non-200 answer is final.
func (c *httpClient) FetchTags(ctx context.Context, payload entity.EncodedPayload) (*entity.TagResult, error) {
	body, err := json.Marshal(entity.TagRequest{Image: payload.Data})
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff(attempt)
			logrus.WithFields(logrus.Fields{
				"endpoint": c.endpoint,
				"attempt":  attempt,
				"delay":    delay,
			}).Warnf("retrying tagging request: %v", lastErr)

			select {
			case <-ctx.Done():
				return nil, &entity.TransportError{Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		result, err := c.post(ctx, body)
		if err == nil {
			return result, nil
		}

		var transportErr *entity.TransportError
		if !errors.As(err, &transportErr) {
			return nil, err
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

func (c *httpClient) post(ctx context.Context, body []byte) (*entity.TagResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &entity.TransportError{Err: err}
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &entity.TransportError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &entity.TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil, &entity.ServiceError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &entity.TransportError{Err: err}
	}
	return decodeResponse(raw)
}

// decodeResponse extracts the "body" member. Some deployments send it as a
// JSON encoded string instead of an object, both are accepted.
func decodeResponse(raw []byte) (*entity.TagResult, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &entity.ServiceError{StatusCode: http.StatusOK, Err: errMalformedBody}
	}

	body := gjson.GetBytes(raw, "body")
	doc := body.Raw
	if body.Type == gjson.String {
		doc = body.String()
		if !gjson.Valid(doc) {
			return nil, &entity.ServiceError{StatusCode: http.StatusOK, Err: errMalformedBody}
		}
		body = gjson.Parse(doc)
	}
	if !body.IsObject() {
		return nil, &entity.ServiceError{StatusCode: http.StatusOK, Err: errMissingBody}
	}

	var result entity.TagResult
	if err := json.NewDecoder(strings.NewReader(doc)).Decode(&result); err != nil {
		return nil, &entity.ServiceError{StatusCode: http.StatusOK, Err: fmt.Errorf("%w: %v", errMalformedBody, err)}
	}
	return &result, nil
}

// backoff is base * 2^(attempt-1) with +-25% jitter, capped at 16x base.
func (c *httpClient) backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return c.baseDelay
	}
	delay := c.baseDelay * time.Duration(1<<(attempt-1))
	if quarter := int64(delay / 4); quarter > 0 {
		delay += time.Duration(rand.Int63n(2*quarter+1) - quarter)
	}
	if delay > c.maxDelay {
		delay = c.maxDelay
	}
	return delay
}

package submitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/rankpilot/rankpilot/internal/config"
	"github.com/rankpilot/rankpilot/internal/models"
)

const defaultRetryAfter = 60 * time.Second

// ValidationError reports a malformed submission request. It is returned
// synchronously, before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid submission request: %s %s", e.Field, e.Reason)
}

// Client submits URL batches to the configured index endpoints with
// batching, per-engine rate limiting and bounded retry.
type Client struct {
	cfg      config.SubmitterConfig
	client   *http.Client
	limiters map[string]*rate.Limiter
	logger   *zap.Logger
}

// NewClient creates a Client. Each engine gets its own rate limiter so
// one engine's spacing never delays another. Endpoints shared by more
// than one configured engine are flagged, not deduplicated: whether the
// aliasing is intentional redundancy is for the operator to decide.
func NewClient(cfg config.SubmitterConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	limiters := make(map[string]*rate.Limiter, len(cfg.Engines))
	seen := make(map[string]string, len(cfg.Engines))
	for _, engine := range cfg.Engines {
		limiters[engine.Name] = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RateLimit)), 1)
		if prev, ok := seen[engine.Endpoint]; ok {
			logger.Warn("engines share a submission endpoint",
				zap.String("endpoint", engine.Endpoint),
				zap.String("engine", engine.Name),
				zap.String("also_used_by", prev),
			)
		}
		seen[engine.Endpoint] = engine.Name
	}

	return &Client{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		limiters: limiters,
		logger:   logger,
	}
}

// SubmitToAllEngines splits urls into batches and submits every batch to
// every configured engine, returning one result per (batch, engine)
// pair. Engines are fanned out in parallel; batches destined for the
// same engine are submitted in order. Cancelling ctx aborts in-flight
// work but retains results already produced.
func (c *Client) SubmitToAllEngines(ctx context.Context, urls []string, host, key string) ([]models.SubmissionResult, error) {
	if err := validateRequest(urls, host, key); err != nil {
		return nil, err
	}

	batches := Batch(urls, c.cfg.BatchSize)
	c.logger.Info("submitting urls",
		zap.Int("urls", len(urls)),
		zap.Int("batches", len(batches)),
		zap.Int("engines", len(c.cfg.Engines)),
	)

	perEngine := make([][]models.SubmissionResult, len(c.cfg.Engines))
	g, gctx := errgroup.WithContext(ctx)
	for i, engine := range c.cfg.Engines {
		i, engine := i, engine
		g.Go(func() error {
			perEngine[i] = c.submitEngine(gctx, engine, batches, host, key)
			return nil
		})
	}
	// Workers never return errors; failures are recorded per result.
	_ = g.Wait()

	var results []models.SubmissionResult
	for _, rs := range perEngine {
		results = append(results, rs...)
	}
	return results, nil
}

// submitEngine submits each batch to one engine sequentially, pacing
// requests through the engine's limiter.
func (c *Client) submitEngine(ctx context.Context, engine config.Engine, batches [][]string, host, key string) []models.SubmissionResult {
	results := make([]models.SubmissionResult, 0, len(batches))
	for _, urls := range batches {
		batch := models.SubmissionBatch{
			URLs:   urls,
			Engine: engine.Name,
			Payload: models.SubmissionPayload{
				Host:        host,
				Key:         key,
				KeyLocation: fmt.Sprintf("https://%s/%s.txt", host, key),
				URLList:     urls,
			},
		}
		results = append(results, c.submitBatch(ctx, engine, batch))
		if ctx.Err() != nil {
			break
		}
	}
	return results
}

// submitBatch runs the bounded retry loop for one batch against one
// engine. 429 honors Retry-After, 5xx/408 and network errors back off
// incrementally, any other non-2xx status fails immediately.
func (c *Client) submitBatch(ctx context.Context, engine config.Engine, batch models.SubmissionBatch) models.SubmissionResult {
	result := models.SubmissionResult{Engine: engine.Name}

	for attempt := 0; ; attempt++ {
		if err := c.limiters[engine.Name].Wait(ctx); err != nil {
			result.Timestamp = time.Now()
			return result
		}

		start := time.Now()
		statusCode, retryAfter, err := c.post(ctx, engine.Endpoint, batch.Payload)
		result.StatusCode = statusCode
		result.ResponseTimeMs = time.Since(start).Milliseconds()
		result.Timestamp = time.Now()

		outcome, wait := c.classify(statusCode, retryAfter, err, attempt)
		switch outcome {
		case outcomeSuccess:
			result.Success = true
			result.URLsSubmitted = len(batch.URLs)
			c.logger.Debug("batch submitted",
				zap.String("engine", engine.Name),
				zap.Int("urls", len(batch.URLs)),
				zap.Int64("response_ms", result.ResponseTimeMs),
			)
			return result
		case outcomeFail:
			c.logger.Warn("batch submission failed",
				zap.String("engine", engine.Name),
				zap.Int("status_code", statusCode),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return result
		case outcomeRetry:
			if attempt >= c.cfg.MaxRetries {
				c.logger.Warn("batch submission exhausted retries",
					zap.String("engine", engine.Name),
					zap.Int("status_code", statusCode),
					zap.Int("retries", attempt),
				)
				return result
			}
			c.logger.Debug("retrying batch submission",
				zap.String("engine", engine.Name),
				zap.Int("status_code", statusCode),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
			if !sleep(ctx, wait) {
				return result
			}
		}
	}
}

type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRetry
	outcomeFail
)

// classify maps a response (or transport error) onto the retry state
// machine and computes the wait before the next attempt.
func (c *Client) classify(statusCode int, retryAfter time.Duration, err error, attempt int) (outcome, time.Duration) {
	switch {
	case err != nil:
		// Timeouts and connection failures back off like server errors.
		return outcomeRetry, c.cfg.RetryDelay * time.Duration(attempt+1)
	case statusCode >= 200 && statusCode < 300:
		return outcomeSuccess, 0
	case statusCode == http.StatusTooManyRequests:
		return outcomeRetry, retryAfter
	case statusCode >= 500 || statusCode == http.StatusRequestTimeout:
		return outcomeRetry, c.cfg.RetryDelay * time.Duration(attempt+1)
	default:
		return outcomeFail, 0
	}
}

// post issues one submission request and returns the HTTP status code
// plus the Retry-After wait when the engine answered 429. A non-nil
// error means the request never produced a response.
func (c *Client) post(ctx context.Context, endpoint string, payload models.SubmissionPayload) (int, time.Duration, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var retryAfter time.Duration
	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	}
	return resp.StatusCode, retryAfter, nil
}

// parseRetryAfter reads a Retry-After header in seconds, defaulting to
// 60s when absent or malformed.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return defaultRetryAfter
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return defaultRetryAfter
	}
	return time.Duration(seconds) * time.Second
}

// Batch splits urls into chunks of at most size, preserving order.
// Concatenating the chunks reconstructs the input.
func Batch(urls []string, size int) [][]string {
	if size <= 0 {
		size = 1
	}
	var batches [][]string
	for start := 0; start < len(urls); start += size {
		end := start + size
		if end > len(urls) {
			end = len(urls)
		}
		batches = append(batches, urls[start:end])
	}
	return batches
}

// validateRequest rejects empty or malformed batches before any network
// call is made.
func validateRequest(urls []string, host, key string) error {
	if len(urls) == 0 {
		return &ValidationError{Field: "urls", Reason: "must not be empty"}
	}
	if host == "" {
		return &ValidationError{Field: "host", Reason: "must not be empty"}
	}
	if key == "" {
		return &ValidationError{Field: "key", Reason: "must not be empty"}
	}
	for _, u := range urls {
		parsed, err := url.Parse(u)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return &ValidationError{Field: "urls", Reason: fmt.Sprintf("contains malformed URL %q", u)}
		}
	}
	return nil
}

// sleep waits for d or until ctx is cancelled, reporting whether the
// full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

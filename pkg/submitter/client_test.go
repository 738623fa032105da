package submitter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankpilot/rankpilot/internal/config"
	"github.com/rankpilot/rankpilot/internal/models"
)

func testConfig(endpoint string) config.SubmitterConfig {
	return config.SubmitterConfig{
		Engines:    []config.Engine{{Name: "indexnow", Endpoint: endpoint}},
		MaxRetries: 3,
		RetryDelay: 10 * time.Millisecond,
		Timeout:    2 * time.Second,
		BatchSize:  100,
		RateLimit:  6000, // 10ms spacing keeps tests fast
		UserAgent:  "RankPilot/test",
	}
}

func urlList(n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = "https://example.com/page"
	}
	return urls
}

func TestBatch(t *testing.T) {
	tests := []struct {
		name      string
		urls      int
		size      int
		wantSizes []int
	}{
		{name: "exact multiple", urls: 200, size: 100, wantSizes: []int{100, 100}},
		{name: "remainder batch", urls: 250, size: 100, wantSizes: []int{100, 100, 50}},
		{name: "single short batch", urls: 7, size: 100, wantSizes: []int{7}},
		{name: "empty input", urls: 0, size: 100, wantSizes: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			urls := make([]string, tt.urls)
			for i := range urls {
				urls[i] = string(rune('a'+i%26)) + "x"
			}

			batches := Batch(urls, tt.size)
			require.Len(t, batches, len(tt.wantSizes))

			rejoined := []string{}
			for i, batch := range batches {
				assert.Len(t, batch, tt.wantSizes[i])
				assert.LessOrEqual(t, len(batch), tt.size)
				rejoined = append(rejoined, batch...)
			}
			assert.Equal(t, urls, rejoined)
		})
	}
}

func TestValidation(t *testing.T) {
	client := NewClient(testConfig("http://unused.invalid"), nil)

	tests := []struct {
		name string
		urls []string
		host string
		key  string
	}{
		{name: "empty urls", urls: nil, host: "example.com", key: "k"},
		{name: "empty host", urls: []string{"https://example.com/"}, host: "", key: "k"},
		{name: "empty key", urls: []string{"https://example.com/"}, host: "example.com", key: ""},
		{name: "malformed url", urls: []string{"not a url"}, host: "example.com", key: "k"},
		{name: "relative url", urls: []string{"/just/a/path"}, host: "example.com", key: "k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := client.SubmitToAllEngines(context.Background(), tt.urls, tt.host, tt.key)
			require.Error(t, err)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
			assert.Nil(t, results)
		})
	}
}

func TestSubmitSuccess(t *testing.T) {
	var mu sync.Mutex
	var payloads []models.SubmissionPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p models.SubmissionPayload
		require.NoError(t, jsonDecode(r, &p))
		mu.Lock()
		payloads = append(payloads, p)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.BatchSize = 100
	client := NewClient(cfg, nil)

	urls := urlList(250)
	results, err := client.SubmitToAllEngines(context.Background(), urls, "example.com", "key123")
	require.NoError(t, err)
	require.Len(t, results, 3)

	total := 0
	for _, r := range results {
		assert.True(t, r.Success)
		assert.Equal(t, http.StatusOK, r.StatusCode)
		assert.Equal(t, "indexnow", r.Engine)
		total += r.URLsSubmitted
	}
	assert.Equal(t, 250, total)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, payloads, 3)
	assert.Equal(t, "example.com", payloads[0].Host)
	assert.Equal(t, "key123", payloads[0].Key)
	assert.Equal(t, "https://example.com/key123.txt", payloads[0].KeyLocation)
	assert.Len(t, payloads[0].URLList, 100)
	assert.Len(t, payloads[2].URLList, 50)
}

func TestRetryOn5xx(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	results, err := client.SubmitToAllEngines(context.Background(), urlList(1), "example.com", "k")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.True(t, results[0].Success)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 1, results[0].URLsSubmitted)
}

func TestRetryExhaustion(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRetries = 2
	client := NewClient(cfg, nil)

	results, err := client.SubmitToAllEngines(context.Background(), urlList(1), "example.com", "k")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Success)
	assert.Equal(t, 0, results[0].URLsSubmitted)
	// maxRetries retries on top of the initial attempt
	assert.Equal(t, 3, attempts)
}

func TestNoRetryOnClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	results, err := client.SubmitToAllEngines(context.Background(), urlList(1), "example.com", "k")
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.False(t, results[0].Success)
	assert.Equal(t, http.StatusForbidden, results[0].StatusCode)
	assert.Equal(t, 1, attempts)
}

func TestRetryAfterHonored(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)

	start := time.Now()
	results, err := client.SubmitToAllEngines(context.Background(), urlList(1), "example.com", "k")
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	assert.GreaterOrEqual(t, elapsed, 900*time.Millisecond)
}

func TestRateLimitSpacing(t *testing.T) {
	var mu sync.Mutex
	var requestTimes []time.Time

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requestTimes = append(requestTimes, time.Now())
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.BatchSize = 1
	cfg.RateLimit = 600 // 100ms spacing
	client := NewClient(cfg, nil)

	_, err := client.SubmitToAllEngines(context.Background(), urlList(3), "example.com", "k")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requestTimes, 3)
	for i := 1; i < len(requestTimes); i++ {
		gap := requestTimes[i].Sub(requestTimes[i-1])
		assert.GreaterOrEqual(t, gap, 80*time.Millisecond)
	}
}

func TestResubmissionIdempotent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), nil)
	urls := urlList(5)

	for run := 0; run < 3; run++ {
		results, err := client.SubmitToAllEngines(context.Background(), urls, "example.com", "k")
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.True(t, results[0].Success)
		assert.Equal(t, 5, results[0].URLsSubmitted)
	}
}

func TestCancellationRetainsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.BatchSize = 1
	cfg.RateLimit = 60 // 1s spacing, so later batches block on the limiter
	client := NewClient(cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	results, err := client.SubmitToAllEngines(ctx, urlList(5), "example.com", "k")
	require.NoError(t, err)

	// The first batch goes out immediately and succeeds; cancellation
	// aborts the rest without discarding it.
	require.NotEmpty(t, results)
	assert.True(t, results[0].Success)
	assert.Less(t, len(results), 5)
}

func TestGenerateReport(t *testing.T) {
	now := time.Now()
	results := []models.SubmissionResult{
		{Engine: "indexnow", Success: true, URLsSubmitted: 100, ResponseTimeMs: 40, Timestamp: now},
		{Engine: "indexnow", Success: true, URLsSubmitted: 50, ResponseTimeMs: 60, Timestamp: now},
		{Engine: "yandex", Success: false, ResponseTimeMs: 200, Timestamp: now},
	}

	report := GenerateReport(results)

	assert.Equal(t, 3, report.TotalBatches)
	assert.Equal(t, 2, report.Successful)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 150, report.URLsSubmitted)
	assert.Equal(t, int64(100), report.AvgResponseTimeMs)

	assert.Equal(t, 2, report.ByEngine["indexnow"].Batches)
	assert.Equal(t, 150, report.ByEngine["indexnow"].URLsSubmitted)
	assert.Equal(t, 0, report.ByEngine["yandex"].Successful)
}

func jsonDecode(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

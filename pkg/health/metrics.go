package health

import (
	"context"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/rankpilot/rankpilot/internal/models"
)

// MetricsSource collects the technical metric readings for a site.
// Implementations are best-effort: a source that cannot reach the site
// returns zeroed metrics rather than failing.
type MetricsSource interface {
	Collect(ctx context.Context, baseURL string) models.HealthMetrics
}

// EstimatedMetrics derives metric readings from a single probe of the
// base page: response latency and page weight drive the speed scores,
// markup signals drive the rest. It stands in for an external
// performance API when none is configured.
type EstimatedMetrics struct {
	probes *prober
}

// Collect probes baseURL once and estimates the metric set.
func (e *EstimatedMetrics) Collect(ctx context.Context, baseURL string) models.HealthMetrics {
	body, status, elapsed, err := e.probes.fetch(ctx, baseURL)
	if err != nil || status < 200 || status >= 300 {
		return models.HealthMetrics{}
	}

	metrics := models.HealthMetrics{
		PageSpeed:     speedScore(elapsed, len(body)),
		DesktopScore:  speedScore(elapsed, len(body)),
		BestPractices: 70,
	}

	root, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return metrics
	}
	audit := auditPage(root)

	metrics.MobileScore = 60
	if audit.hasViewport {
		metrics.MobileScore = 90
	}

	metrics.Accessibility = 100
	if audit.totalImages > 0 {
		covered := audit.totalImages - audit.imagesWithoutAlt
		metrics.Accessibility = 40 + 60*covered/audit.totalImages
	}

	seo := 0
	if audit.hasTitle {
		seo += 30
	}
	if audit.hasDescription {
		seo += 30
	}
	if audit.hasCanonical {
		seo += 20
	}
	if audit.h1Count == 1 {
		seo += 20
	}
	metrics.SEO = seo

	if strings.HasPrefix(strings.ToLower(baseURL), "https://") {
		metrics.BestPractices += 30
	}

	return metrics
}

// speedScore tiers latency and page weight into a 0-100 reading.
func speedScore(elapsed time.Duration, size int) int {
	score := 100
	switch {
	case elapsed > 3*time.Second:
		score -= 50
	case elapsed > 1500*time.Millisecond:
		score -= 30
	case elapsed > 500*time.Millisecond:
		score -= 10
	}
	switch {
	case size > 2<<20:
		score -= 30
	case size > 1<<20:
		score -= 15
	}
	if score < 0 {
		score = 0
	}
	return score
}

// StaticMetrics is a MetricsSource returning a fixed reading, used when
// metrics come from an external collaborator and in tests.
type StaticMetrics struct {
	Metrics models.HealthMetrics
}

// Collect returns the fixed reading.
func (s StaticMetrics) Collect(context.Context, string) models.HealthMetrics {
	return s.Metrics
}

package health

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rankpilot/rankpilot/internal/config"
	"github.com/rankpilot/rankpilot/internal/models"
)

// maxPenalty caps the score deduction from detected issues.
const maxPenalty = 30

// Monitor audits a site's indexing and technical health. Probe failures
// are recorded as inconclusive checks; nothing a probe does can fail the
// overall health check.
type Monitor struct {
	cfg      config.MonitorConfig
	engines  []config.Engine
	probes   *prober
	metrics  MetricsSource
	notifier Notifier
	fixer    AutoFixer
	logger   *zap.Logger
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithNotifier sets the alert notifier fired when the overall score
// falls below the configured threshold.
func WithNotifier(n Notifier) Option {
	return func(m *Monitor) { m.notifier = n }
}

// WithAutoFixer sets the remediation hook for auto-fixable issues.
func WithAutoFixer(f AutoFixer) Option {
	return func(m *Monitor) { m.fixer = f }
}

// WithMetricsSource replaces the default heuristic metrics estimator.
func WithMetricsSource(s MetricsSource) Option {
	return func(m *Monitor) { m.metrics = s }
}

// NewMonitor creates a Monitor over the configured engines. A nil
// logger disables logging.
func NewMonitor(cfg config.MonitorConfig, engines []config.Engine, logger *zap.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		cfg:      cfg,
		engines:  engines,
		probes:   newProber(cfg.ProbeTimeout, logger),
		notifier: NopNotifier{},
		fixer:    nil,
		logger:   logger,
	}
	m.metrics = &EstimatedMetrics{probes: m.probes}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// PerformHealthCheck runs the full site audit against baseURL and
// returns the health report. It always completes; failing probes lower
// the score or are skipped as inconclusive.
func (m *Monitor) PerformHealthCheck(ctx context.Context, baseURL string) models.SEOHealthReport {
	report := models.SEOHealthReport{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
	}

	report.Metrics = m.metrics.Collect(ctx, baseURL)
	report.EngineStatuses = m.checkEngines(ctx)
	report.Issues = m.detectIssues(ctx, baseURL)
	report.Recommendations = m.recommendations(report.Metrics)
	report.IndexingStats = indexingStats(report.EngineStatuses)

	report.OverallScore = m.overallScore(report)
	report.Status = models.HealthStatusForScore(report.OverallScore)

	if m.cfg.AutoFix && m.fixer != nil {
		m.dispatchAutoFixes(ctx, report.Issues)
	}

	if report.OverallScore < m.cfg.AlertThreshold {
		if err := m.notifier.Notify(ctx, report); err != nil {
			m.logger.Warn("health alert delivery failed", zap.Error(err))
		}
	}

	m.logger.Info("health check complete",
		zap.String("base_url", baseURL),
		zap.Int("overall_score", report.OverallScore),
		zap.String("status", string(report.Status)),
		zap.Int("issues", len(report.Issues)),
	)
	return report
}

// Run re-checks the site every checkInterval until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context, baseURL string) {
	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	m.PerformHealthCheck(ctx, baseURL)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.PerformHealthCheck(ctx, baseURL)
		}
	}
}

// overallScore combines the weighted metric score, the engine health
// ratio and the issue penalty:
// clamp(0,100, 0.7*metricsScore + 0.3*enginesScore - penalty).
func (m *Monitor) overallScore(report models.SEOHealthReport) int {
	metrics := report.Metrics
	metricsScore := 0.25*float64(metrics.PageSpeed) +
		0.25*float64(metrics.SEO) +
		0.20*float64(metrics.MobileScore) +
		0.15*float64(metrics.Accessibility) +
		0.15*float64(metrics.BestPractices)

	enginesScore := 0.0
	if len(report.EngineStatuses) > 0 {
		healthy := 0
		for _, es := range report.EngineStatuses {
			if es.Status == "healthy" {
				healthy++
			}
		}
		enginesScore = 100 * float64(healthy) / float64(len(report.EngineStatuses))
	}

	penalty := issuePenalty(report.Issues)

	score := 0.7*metricsScore + 0.3*enginesScore - float64(penalty)
	score = math.Round(score)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// issuePenalty charges 10 per critical, 5 per high and 2 per medium
// issue, capped at maxPenalty.
func issuePenalty(issues []models.SEOIssue) int {
	penalty := 0
	for _, issue := range issues {
		switch issue.Severity {
		case models.SeverityCritical:
			penalty += 10
		case models.SeverityHigh:
			penalty += 5
		case models.SeverityMedium:
			penalty += 2
		}
	}
	if penalty > maxPenalty {
		penalty = maxPenalty
	}
	return penalty
}

// dispatchAutoFixes hands auto-fixable issues to the remediation hook.
// Fix failures are logged and never fail the report.
func (m *Monitor) dispatchAutoFixes(ctx context.Context, issues []models.SEOIssue) {
	for _, issue := range issues {
		if !issue.AutoFixable {
			continue
		}
		if err := m.fixer.Fix(ctx, issue); err != nil {
			m.logger.Warn("auto-fix failed",
				zap.String("category", issue.Category),
				zap.String("description", issue.Description),
				zap.Error(err),
			)
		}
	}
}

func indexingStats(statuses []models.EngineStatus) models.IndexingStats {
	stats := models.IndexingStats{}
	for _, es := range statuses {
		stats.Indexed += es.Indexed
	}
	return stats
}

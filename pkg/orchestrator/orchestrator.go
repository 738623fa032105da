package orchestrator

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rankpilot/rankpilot/internal/config"
	"github.com/rankpilot/rankpilot/internal/models"
	"github.com/rankpilot/rankpilot/pkg/keywords"
	"github.com/rankpilot/rankpilot/pkg/optimizer"
	"github.com/rankpilot/rankpilot/pkg/submitter"
)

// criticalScoreThreshold is the page score below which a page's
// improvements feed the report's critical-issue list.
const criticalScoreThreshold = 70

// Orchestrator drives the full optimization run: it scores every
// configured page, submits all discovered URLs to the index endpoints
// and aggregates the results into one report. No per-page or per-engine
// failure aborts a run.
type Orchestrator struct {
	cfg       config.OrchestratorConfig
	site      config.SiteConfig
	optimizer *optimizer.Optimizer
	client    *submitter.Client
	catalog   keywords.Catalog
	pages     []models.Page
	estimator RankEstimator
	logger    *zap.Logger
}

// New creates an Orchestrator over the configured page list. A nil
// logger disables logging.
func New(cfg config.OrchestratorConfig, site config.SiteConfig, opt *optimizer.Optimizer, client *submitter.Client, catalog keywords.Catalog, pages []models.Page, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		cfg:       cfg,
		site:      site,
		optimizer: opt,
		client:    client,
		catalog:   catalog,
		pages:     pages,
		estimator: TableEstimator{},
		logger:    logger,
	}
}

// SetRankEstimator replaces the ranking heuristic.
func (o *Orchestrator) SetRankEstimator(e RankEstimator) {
	o.estimator = e
}

// OptimizePage scores a single page, filling its target keywords from
// the catalog when none are assigned.
func (o *Orchestrator) OptimizePage(ctx context.Context, pageURL, pageType, location string) models.PageOptimizationResult {
	page := models.Page{
		URL:      pageURL,
		PageType: pageType,
		Location: location,
	}
	page.TargetKeywords = o.catalog.ForPageType(pageType)
	return o.optimizer.Optimize(ctx, page)
}

// OptimizeAllPages scores every page, preserving input order in the
// results. Pages are independent: with more than one worker they run in
// parallel, otherwise sequentially with the configured pacing delay.
func (o *Orchestrator) OptimizeAllPages(ctx context.Context, pages []models.Page) []models.PageOptimizationResult {
	results := make([]models.PageOptimizationResult, len(pages))

	if o.cfg.Workers <= 1 {
		for i, page := range pages {
			results[i] = o.optimizePage(ctx, page)
			if o.cfg.PageDelay > 0 && i < len(pages)-1 {
				select {
				case <-ctx.Done():
					return results
				case <-time.After(o.cfg.PageDelay):
				}
			}
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			results[i] = o.optimizePage(gctx, page)
			return nil
		})
	}
	// Page failures degrade their own result, never the run.
	_ = g.Wait()
	return results
}

func (o *Orchestrator) optimizePage(ctx context.Context, page models.Page) models.PageOptimizationResult {
	if len(page.TargetKeywords) == 0 {
		page.TargetKeywords = o.catalog.ForPageType(page.PageType)
	}
	return o.optimizer.Optimize(ctx, page)
}

// GenerateOrchestrationReport runs the whole pipeline over the
// configured page list and emits the aggregate report. It always
// completes; failures surface as counts, not errors.
func (o *Orchestrator) GenerateOrchestrationReport(ctx context.Context) models.OrchestrationReport {
	report := models.OrchestrationReport{
		ID:           uuid.NewString(),
		Timestamp:    time.Now(),
		TotalPages:   len(o.pages),
		StatusCounts: make(map[models.OptimizationStatus]int),
	}

	results := o.OptimizeAllPages(ctx, o.pages)

	totalScore, totalEAT := 0, 0
	for _, r := range results {
		report.StatusCounts[r.Status]++
		totalScore += r.Score
		totalEAT += r.EATScore
	}
	if len(results) > 0 {
		report.AverageScore = int(math.Round(float64(totalScore) / float64(len(results))))
		report.EATScore = int(math.Round(float64(totalEAT) / float64(len(results))))
	}

	report.TopPerformingPages = topPages(results, 5)
	report.CriticalIssues = criticalIssues(results)
	report.IndexingStatus = o.submitAll(ctx, results)
	report.EstimatedRanking = o.estimateRankings(report.AverageScore)

	o.logger.Info("orchestration run complete",
		zap.String("report_id", report.ID),
		zap.Int("pages", report.TotalPages),
		zap.Int("average_score", report.AverageScore),
		zap.Int("submitted", report.IndexingStatus.Submitted),
	)
	return report
}

// submitAll pushes every page URL to all engines and reduces the
// outcome to indexing stats. Submitted counts URLs accepted by at least
// one engine; indexing confirmation arrives later, so indexed stays 0.
func (o *Orchestrator) submitAll(ctx context.Context, results []models.PageOptimizationResult) models.IndexingStats {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		urls = append(urls, r.URL)
	}

	submissions, err := o.client.SubmitToAllEngines(ctx, urls, o.site.Host, o.site.IndexKey)
	if err != nil {
		o.logger.Warn("url submission rejected", zap.Error(err))
		return models.IndexingStats{Pending: len(urls)}
	}

	subReport := submitter.GenerateReport(submissions)
	submitted := 0
	for _, breakdown := range subReport.ByEngine {
		if breakdown.URLsSubmitted > submitted {
			submitted = breakdown.URLsSubmitted
		}
	}

	return models.IndexingStats{
		Submitted: submitted,
		Pending:   len(urls) - submitted,
	}
}

// topPages returns the URLs of the n highest-scoring pages.
func topPages(results []models.PageOptimizationResult, n int) []string {
	sorted := make([]models.PageOptimizationResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	top := make([]string, 0, n)
	for _, r := range sorted[:n] {
		top = append(top, r.URL)
	}
	return top
}

// criticalIssues flattens the first two improvements of every page
// scoring below the critical threshold, de-duplicated in order.
func criticalIssues(results []models.PageOptimizationResult) []string {
	seen := make(map[string]bool)
	var issues []string
	for _, r := range results {
		if r.Score >= criticalScoreThreshold {
			continue
		}
		for i, improvement := range r.Improvements {
			if i >= 2 {
				break
			}
			if seen[improvement] {
				continue
			}
			seen[improvement] = true
			issues = append(issues, improvement)
		}
	}
	return issues
}

// estimateRankings applies the heuristic position table to every
// tracked keyword.
func (o *Orchestrator) estimateRankings(averageScore int) map[string]models.RankEstimate {
	estimates := make(map[string]models.RankEstimate)
	for _, kw := range o.catalog.Tracked() {
		estimates[kw.Text] = o.estimator.Estimate(averageScore, kw)
	}
	return estimates
}

package optimizer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/rankpilot/rankpilot/internal/models"
	"github.com/rankpilot/rankpilot/pkg/content"
	"github.com/rankpilot/rankpilot/pkg/metadata"
	"github.com/rankpilot/rankpilot/pkg/trust"
)

// Fetcher retrieves a page's rendered markup. Fetch failures degrade the
// page's score, they never abort optimization.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// HTTPFetcher fetches page markup over HTTP with a bounded timeout.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Fetch retrieves the markup at pageURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read page body: %w", err)
	}
	return string(body), nil
}

// Optimizer composes the content scorer, trust scorer and metadata
// builder into a per-page optimization result.
type Optimizer struct {
	scorer  *content.Scorer
	trust   *trust.Scorer
	builder *metadata.Builder
	fetcher Fetcher
	signals trust.Signals
	logger  *zap.Logger
}

// New creates an Optimizer. signals is the site-level E-A-T bundle used
// for every page. A nil logger disables logging.
func New(scorer *content.Scorer, trustScorer *trust.Scorer, builder *metadata.Builder, fetcher Fetcher, signals trust.Signals, logger *zap.Logger) *Optimizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Optimizer{
		scorer:  scorer,
		trust:   trustScorer,
		builder: builder,
		fetcher: fetcher,
		signals: signals,
		logger:  logger,
	}
}

// Optimize produces the optimization result for one page. Sub-step
// failures lower the score instead of aborting.
func (o *Optimizer) Optimize(ctx context.Context, page models.Page) models.PageOptimizationResult {
	eat := o.trust.Score(o.signals)

	var analysis models.ContentAnalysis
	var internalLinks []string
	rawHTML, err := o.fetcher.Fetch(ctx, page.URL)
	if err != nil {
		o.logger.Warn("page fetch failed, scoring without content",
			zap.String("url", page.URL),
			zap.Error(err),
		)
	} else {
		analysis, internalLinks = o.scorer.Analyze(rawHTML, page.URL, page.TargetKeywords)
	}

	meta := o.builder.Build(page)

	score := o.score(page, analysis, meta, eat, len(internalLinks))
	result := models.PageOptimizationResult{
		URL:           page.URL,
		Score:         score,
		Status:        models.StatusForScore(score),
		Schemas:       meta.Schemas,
		MetaTags:      meta.MetaTags,
		InternalLinks: internalLinks,
		Keywords:      keywordTexts(page.TargetKeywords),
		EATScore:      eat.Overall,
	}
	result.Improvements = o.improvements(result, analysis)

	o.logger.Debug("page optimized",
		zap.String("url", page.URL),
		zap.Int("score", score),
		zap.String("status", string(result.Status)),
	)
	return result
}

// score applies the composition weighting: 15 for targeted keywords,
// 20 for generated metadata, 15 for schemas, 20 for trust content,
// 10 for trust signals, 15 scaled by the E-A-T score and up to 5 for
// internal links, clamped to 100.
func (o *Optimizer) score(page models.Page, _ models.ContentAnalysis, meta metadata.Result, eat models.TrustScore, internalLinks int) int {
	score := 0.0

	if len(page.TargetKeywords) > 0 {
		score += 15
	}
	if meta.MetaTags.Title != "" && meta.MetaTags.Description != "" {
		score += 20
	}
	if len(meta.Schemas) > 0 {
		score += 15
	}
	if o.hasTrustContent() {
		score += 20
	}
	if o.hasTrustSignals() {
		score += 10
	}
	score += 15 * float64(eat.Overall) / 100

	links := internalLinks
	if links > 5 {
		links = 5
	}
	score += float64(links)

	if score > 100 {
		score = 100
	}
	return int(score + 0.5)
}

// hasTrustContent reports whether any expertise-group content signal is
// present on the site.
func (o *Optimizer) hasTrustContent() bool {
	s := o.signals
	return s.AuthorBylines || s.AuthorCredentials || s.ExpertReview || s.OriginalResearch
}

// hasTrustSignals reports whether any trust-group site signal is present.
func (o *Optimizer) hasTrustSignals() bool {
	s := o.signals
	return s.HTTPS || s.PrivacyPolicy || s.ContactInfo || s.SecurePayment
}

// improvements lists follow-up work when the page falls short of the
// excellent band.
func (o *Optimizer) improvements(result models.PageOptimizationResult, analysis models.ContentAnalysis) []string {
	var improvements []string

	if result.Score < 90 {
		improvements = append(improvements, analysis.Recommendations...)
		if len(result.Keywords) == 0 {
			improvements = append(improvements, "No target keywords assigned: map this page to a keyword set")
		}
	}
	if result.EATScore < 90 {
		improvements = append(improvements, "Strengthen E-A-T: add author credentials, earn citations and surface trust markers")
	}
	if len(result.InternalLinks) < 5 {
		improvements = append(improvements, fmt.Sprintf("Only %d internal links found: add links to related pages (aim for 5+)", len(result.InternalLinks)))
	}

	return improvements
}

func keywordTexts(keywords []models.Keyword) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		out = append(out, kw.Text)
	}
	return out
}

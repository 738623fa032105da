package models

import "time"

// Difficulty classifies how contested a keyword is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Intent classifies the searcher's goal behind a keyword.
type Intent string

const (
	IntentInformational Intent = "informational"
	IntentNavigational  Intent = "navigational"
	IntentTransactional Intent = "transactional"
	IntentCommercial    Intent = "commercial"
)

// Keyword is a target search term with its market signals.
type Keyword struct {
	Text         string     `json:"text"`
	SearchVolume int        `json:"search_volume"`
	Difficulty   Difficulty `json:"difficulty"`
	Intent       Intent     `json:"intent"`
}

// Page describes one page of the site to be optimized.
type Page struct {
	URL            string    `json:"url"`
	PageType       string    `json:"page_type"`
	TargetKeywords []Keyword `json:"target_keywords"`
	Location       string    `json:"location,omitempty"`
}

// HeadingCounts holds per-level heading tag counts.
type HeadingCounts struct {
	H1 int `json:"h1"`
	H2 int `json:"h2"`
	H3 int `json:"h3"`
}

// ContentAnalysis is the result of scoring a page's rendered content
// against its target keywords. Scores are always clamped to [0,100].
type ContentAnalysis struct {
	WordCount        int           `json:"word_count"`
	KeywordDensity   float64       `json:"keyword_density"`
	HeadingCounts    HeadingCounts `json:"heading_counts"`
	InternalLinks    int           `json:"internal_links"`
	ExternalLinks    int           `json:"external_links"`
	ContentScore     int           `json:"content_score"`
	ReadabilityScore int           `json:"readability_score"`
	Recommendations  []string      `json:"recommendations"`
}

// TrustScore is the E-A-T composite. Overall is always
// round(0.35*Expertise + 0.35*Authority + 0.30*Trust).
type TrustScore struct {
	Expertise int `json:"expertise"`
	Authority int `json:"authority"`
	Trust     int `json:"trust"`
	Overall   int `json:"overall"`
}

// OptimizationStatus buckets a page score.
type OptimizationStatus string

const (
	StatusExcellent        OptimizationStatus = "excellent"
	StatusGood             OptimizationStatus = "good"
	StatusNeedsImprovement OptimizationStatus = "needs_improvement"
	StatusPoor             OptimizationStatus = "poor"
)

// StatusForScore maps a page score onto its bucket.
func StatusForScore(score int) OptimizationStatus {
	switch {
	case score >= 90:
		return StatusExcellent
	case score >= 75:
		return StatusGood
	case score >= 50:
		return StatusNeedsImprovement
	default:
		return StatusPoor
	}
}

// MetaTags is the generated head metadata for a page.
type MetaTags struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Canonical   string `json:"canonical,omitempty"`
	Robots      string `json:"robots,omitempty"`
}

// Schema is one structured-data object destined for a JSON-LD block.
type Schema map[string]interface{}

// PageOptimizationResult is the per-page output of the optimizer.
type PageOptimizationResult struct {
	URL           string             `json:"url"`
	Score         int                `json:"score"`
	Status        OptimizationStatus `json:"status"`
	Improvements  []string           `json:"improvements"`
	Schemas       []Schema           `json:"schemas"`
	MetaTags      MetaTags           `json:"meta_tags"`
	InternalLinks []string           `json:"internal_links"`
	Keywords      []string           `json:"keywords"`
	EATScore      int                `json:"eat_score"`
}

// SubmissionBatch is one chunk of URLs bound for one engine.
type SubmissionBatch struct {
	URLs    []string          `json:"urls"`
	Engine  string            `json:"engine"`
	Payload SubmissionPayload `json:"payload"`
}

// SubmissionPayload is the wire body posted to an index endpoint.
type SubmissionPayload struct {
	Host        string   `json:"host"`
	Key         string   `json:"key"`
	KeyLocation string   `json:"keyLocation"`
	URLList     []string `json:"urlList"`
}

// SubmissionResult records the outcome of one batch against one engine.
type SubmissionResult struct {
	Engine         string    `json:"engine"`
	Success        bool      `json:"success"`
	StatusCode     int       `json:"status_code,omitempty"`
	URLsSubmitted  int       `json:"urls_submitted"`
	ResponseTimeMs int64     `json:"response_time_ms"`
	Timestamp      time.Time `json:"timestamp"`
}

// SubmissionReport aggregates a run's submission results.
type SubmissionReport struct {
	TotalBatches      int                        `json:"total_batches"`
	Successful        int                        `json:"successful"`
	Failed            int                        `json:"failed"`
	URLsSubmitted     int                        `json:"urls_submitted"`
	AvgResponseTimeMs int64                      `json:"avg_response_time_ms"`
	ByEngine          map[string]EngineBreakdown `json:"by_engine"`
}

// EngineBreakdown is the per-engine slice of a SubmissionReport.
type EngineBreakdown struct {
	Batches       int `json:"batches"`
	Successful    int `json:"successful"`
	URLsSubmitted int `json:"urls_submitted"`
}

// Severity ranks how damaging an issue is.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SEOIssue is a detected technical or content defect.
type SEOIssue struct {
	Severity      Severity `json:"severity"`
	Category      string   `json:"category"`
	Description   string   `json:"description"`
	AffectedPages []string `json:"affected_pages"`
	AutoFixable   bool     `json:"auto_fixable"`
	Solution      string   `json:"solution,omitempty"`
}

// Priority ranks a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// SEORecommendation is an actionable improvement suggestion.
type SEORecommendation struct {
	Priority       Priority `json:"priority"`
	Category       string   `json:"category"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	ExpectedImpact string   `json:"expected_impact"`
	Implementation string   `json:"implementation"`
}

// HealthStatus buckets an overall health score.
type HealthStatus string

const (
	HealthExcellent HealthStatus = "excellent"
	HealthGood      HealthStatus = "good"
	HealthFair      HealthStatus = "fair"
	HealthPoor      HealthStatus = "poor"
)

// HealthStatusForScore maps an overall health score onto its bucket.
func HealthStatusForScore(score int) HealthStatus {
	switch {
	case score >= 90:
		return HealthExcellent
	case score >= 70:
		return HealthGood
	case score >= 50:
		return HealthFair
	default:
		return HealthPoor
	}
}

// HealthMetrics are the best-effort technical metric readings.
type HealthMetrics struct {
	PageSpeed     int `json:"page_speed"`
	MobileScore   int `json:"mobile_score"`
	DesktopScore  int `json:"desktop_score"`
	Accessibility int `json:"accessibility"`
	BestPractices int `json:"best_practices"`
	SEO           int `json:"seo"`
}

// EngineStatus is the indexing health of one search engine.
type EngineStatus struct {
	Engine      string `json:"engine"`
	Indexed     int    `json:"indexed"`
	CrawlErrors int    `json:"crawl_errors"`
	Status      string `json:"status"`
}

// IndexingStats summarizes submitted-versus-indexed counts.
type IndexingStats struct {
	Submitted int `json:"submitted"`
	Indexed   int `json:"indexed"`
	Pending   int `json:"pending"`
}

// SEOHealthReport is the site-level health check output.
type SEOHealthReport struct {
	ID              string              `json:"id"`
	Timestamp       time.Time           `json:"timestamp"`
	OverallScore    int                 `json:"overall_score"`
	Status          HealthStatus        `json:"status"`
	Metrics         HealthMetrics       `json:"metrics"`
	EngineStatuses  []EngineStatus      `json:"engine_statuses"`
	Issues          []SEOIssue          `json:"issues"`
	Recommendations []SEORecommendation `json:"recommendations"`
	IndexingStats   IndexingStats       `json:"indexing_stats"`
}

// RankEstimate is a heuristic position guess for one tracked keyword.
type RankEstimate struct {
	EstimatedPosition  int    `json:"estimated_position"`
	CompetitorStrength string `json:"competitor_strength"`
}

// OrchestrationReport is the top-level output of a full optimization run.
type OrchestrationReport struct {
	ID                 string                     `json:"id"`
	Timestamp          time.Time                  `json:"timestamp"`
	TotalPages         int                        `json:"total_pages"`
	AverageScore       int                        `json:"average_score"`
	StatusCounts       map[OptimizationStatus]int `json:"status_counts"`
	TopPerformingPages []string                   `json:"top_performing_pages"`
	CriticalIssues     []string                   `json:"critical_issues"`
	IndexingStatus     IndexingStats              `json:"indexing_status"`
	EATScore           int                        `json:"eat_score"`
	EstimatedRanking   map[string]RankEstimate    `json:"estimated_ranking"`
}
